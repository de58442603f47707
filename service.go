package guidebook

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/guidebook/internal/idgen"
	"github.com/viant/guidebook/internal/logx"
	"github.com/viant/guidebook/internal/signals"
	"github.com/viant/guidebook/model"
	"github.com/viant/guidebook/model/graph"
	"github.com/viant/guidebook/policy"
	"github.com/viant/guidebook/progress"
	"github.com/viant/guidebook/service/choice"
	"github.com/viant/guidebook/service/dao"
	pfs "github.com/viant/guidebook/service/dao/profile/fs"
	pmemory "github.com/viant/guidebook/service/dao/profile/memory"
	"github.com/viant/guidebook/service/guide"
	bookloader "github.com/viant/guidebook/service/guidebook"
	"github.com/viant/guidebook/service/memo"
	"github.com/viant/guidebook/service/meta"
	"github.com/viant/guidebook/service/optimizer"
	"github.com/viant/guidebook/service/profile"
	"github.com/viant/guidebook/service/prompt"
	"github.com/viant/guidebook/service/shell"
	"github.com/viant/guidebook/tracing"
	"go.uber.org/zap"
)

// Version is reported to the tracer.
const Version = "0.1.0"

// CleanExit releases everything a session spawned. Calls after the first
// wait for it and return its result.
type CleanExit func(ctx context.Context, sig os.Signal) error

// Result describes a finished session.
type Result struct {
	guide.Result
	// CleanExit is the session's clean exit function; it is a no-op once
	// the session cleaned up after itself.
	CleanExit CleanExit `json:"-"`
}

type Service struct {
	config        *Config
	metaService   *meta.Service
	metaBaseURL   string
	metaFsOptions []storage.Option
	loader        *bookloader.Service
	profileDAO    dao.Service[string, model.Profile]
	prompter      prompt.Provider
	shellFactory  shell.Factory
	writer        io.Writer
	logger        *zap.Logger
	veto          optimizer.Veto
	assertions    map[string]string
	acceptPrior   bool
	policy        *policy.Policy
	onBeforeRun   func(cleanExit CleanExit)
	trapSignals   bool
	clean         bool
	runName       string
}

func (s *Service) init(ctx context.Context, options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.writer == nil {
		s.writer = os.Stdout
	}
	if s.logger == nil {
		logger, err := logx.New(s.config.Log, os.Stderr)
		if err != nil {
			return err
		}
		s.logger = logger
	}
	if s.config.Tracing.Enabled {
		if err := tracing.Init("guidebook", Version, s.config.Tracing.Output); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL, s.metaFsOptions...)
	}
	s.loader = bookloader.New(bookloader.WithMetaService(s.metaService))
	if s.prompter == nil {
		s.prompter = prompt.New()
	}
	if s.shellFactory == nil {
		s.shellFactory = shell.LocalFactory
	}
	if s.policy == nil && s.config.Policy != nil {
		s.policy = policy.FromConfig(s.config.Policy)
	}
	if s.policy != nil && s.policy.Mode == policy.ModeAsk && s.policy.Ask == nil {
		s.policy.Ask = s.confirm
	}
	if s.profileDAO == nil {
		if s.config.Profile.Disabled {
			s.profileDAO = pmemory.New()
			return nil
		}
		profiles, err := pfs.New(ctx, s.config.Profile.URL)
		if err != nil {
			return err
		}
		s.profileDAO = profiles
	}
	return nil
}

func (s *Service) confirm(ctx context.Context, leaf *graph.Leaf, p *policy.Policy) (bool, error) {
	fmt.Fprintf(s.writer, "%s\n", leaf.Body)
	return s.prompter.Confirm(ctx, "Run this?")
}

// Config returns the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Load loads and validates a guidebook without running it.
func (s *Service) Load(ctx context.Context, location string) (*model.Guidebook, error) {
	return s.loader.Load(ctx, location)
}

func (s *Service) profileManager() *profile.Manager {
	return profile.New(s.profileDAO, s.config.Profile.Name,
		profile.WithDebounce(s.config.Profile.Debounce),
		profile.WithBump(s.config.Profile.Bump && !s.config.Log.Quiet),
		profile.WithVerbose(s.config.Log.Verbose))
}

// Guide loads the guidebook at location, prunes what is already done and
// walks the rest in mode. A deliberate stop is reported as an error
// matching types.ErrEarlyExit.
func (s *Service) Guide(ctx context.Context, location string, mode guide.Mode) (result *Result, err error) {
	runID := idgen.NewRunID()
	logger := s.logger.With(zap.String("run", runID))
	ctx = logx.WithLogger(ctx, logger)
	ctx, _ = progress.WithNewTracker(ctx, runID, location, nil)
	ctx, span := tracing.StartSpan(ctx, "guidebook.session")
	span.WithAttributes(map[string]string{"run": runID, "location": location, "mode": string(mode)})
	defer func() { tracing.EndSpan(span, err) }()

	manager := s.profileManager()
	choices, suggestions, err := manager.Init(ctx, s.assertions, mode == guide.ModeGuide)
	if err != nil {
		return nil, err
	}
	defer manager.Close()

	book, err := s.loader.Load(ctx, location)
	if err != nil {
		return nil, err
	}

	quiet := s.config.Log.Quiet
	memoizer := memo.New()
	shellService := shell.New(memoizer,
		shell.WithFactory(s.shellFactory),
		shell.WithTimeoutMs(s.config.Shell.TimeoutMs),
		shell.WithWriter(s.writer),
		shell.WithQuiet(quiet))
	if book.Graph, err = s.optimize(ctx, book, mode, shellService, suggestions); err != nil {
		return nil, err
	}
	if graph.IsEmpty(book.Graph) {
		logger.Info("nothing to do", zap.String("guidebook", book.Name))
		return &Result{Result: guide.Result{Title: book.Title, Description: book.Description, Env: memoizer.Env()}, CleanExit: noopCleanExit}, manager.Cleanup(ctx)
	}

	engine := guide.New(mode, book, choices, suggestions, memoizer,
		guide.WithExecutor(shellService),
		guide.WithPrompter(s.prompter),
		guide.WithAcceptPrior(s.acceptPrior),
		guide.WithPolicy(s.policy),
		guide.WithWriter(s.writer),
		guide.WithQuiet(quiet))
	cleanExit := s.cleanExit(memoizer, engine)
	if s.onBeforeRun != nil {
		s.onBeforeRun(cleanExit)
	}
	if s.trapSignals {
		stop := signals.Trap(func(sig os.Signal) {
			_ = cleanExit(context.WithoutCancel(ctx), sig)
		})
		defer stop()
	}

	out, err := engine.Run(ctx)
	if cErr := manager.Cleanup(context.WithoutCancel(ctx)); cErr != nil {
		logger.Warn("failed to save profile", zap.Error(cErr))
	}
	if s.clean {
		if cErr := cleanExit(context.WithoutCancel(ctx), nil); cErr != nil {
			logger.Warn("failed to clean up", zap.Error(cErr))
		}
	}
	if err != nil {
		return nil, err
	}
	return &Result{Result: *out, CleanExit: cleanExit}, nil
}

func (s *Service) optimize(ctx context.Context, book *model.Guidebook, mode guide.Mode, validator optimizer.Validator, suggestions *choice.State) (graph.Node, error) {
	options := optimizer.NewOptions(
		optimizer.WithOptimization(&s.config.Optimize),
		optimizer.WithVeto(s.veto),
		optimizer.WithValidator(validator),
		optimizer.WithQuiet(s.config.Log.Quiet))
	var made *choice.State
	if mode == guide.ModeRun {
		made = suggestions
	}
	return optimizer.Optimize(ctx, book.Graph, options, made)
}

// cleanExit returns the session's memoized clean exit. The stop intent
// reaches the engine before subprocesses are closed so that their failures
// unwind the walk as an interrupt.
func (s *Service) cleanExit(memoizer *memo.Memoizer, engine *guide.Service) CleanExit {
	var once sync.Once
	var result error
	return func(ctx context.Context, sig os.Signal) error {
		once.Do(func() {
			if sig != nil {
				engine.OnExitSignalFromUser(ctx, sig)
			}
			if !memoizer.CurrentlyNeedsCleanup() {
				return
			}
			if !s.config.Log.Quiet {
				fmt.Fprintf(s.writer, "⚠️  %s\n", s.exitMessage())
			}
			if result = memoizer.Cleanup(ctx, sig); result != nil {
				logx.FromContext(ctx).Warn("clean exit", zap.Error(result))
			}
		})
		return result
	}
}

func (s *Service) exitMessage() string {
	name := ""
	if s.runName != "" {
		name = " (" + s.runName + ")"
	}
	return fmt.Sprintf("Exiting%s now, please wait for us to gracefully clean things up", name)
}

func noopCleanExit(context.Context, os.Signal) error { return nil }

// ParseAssertions parses key=value pairs.
func ParseAssertions(pairs []string) (map[string]string, error) {
	ret := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assertion %q, expected key=value", pair)
		}
		ret[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return ret, nil
}

// New creates a Service. ctx is used to set up the profile store.
func New(ctx context.Context, options ...Option) (*Service, error) {
	ret := &Service{clean: true}
	if err := ret.init(ctx, options); err != nil {
		return nil, err
	}
	return ret, nil
}
