package guidebook

import (
	"io"

	"github.com/viant/afs/storage"
	"github.com/viant/guidebook/model"
	"github.com/viant/guidebook/policy"
	"github.com/viant/guidebook/service/dao"
	"github.com/viant/guidebook/service/meta"
	"github.com/viant/guidebook/service/optimizer"
	"github.com/viant/guidebook/service/prompt"
	"github.com/viant/guidebook/service/shell"
	"go.uber.org/zap"
)

// Option configures the Service.
type Option func(s *Service)

// WithConfig replaces the default configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithMetaService sets the meta service guidebooks are read with.
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) { s.metaService = service }
}

// WithMetaBaseURL sets the location relative guidebook URLs resolve against.
func WithMetaBaseURL(url string) Option {
	return func(s *Service) { s.metaBaseURL = url }
}

// WithMetaFsOptions with meta file system options
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) { s.metaFsOptions = options }
}

// WithProfileDAO sets where profiles are stored, overriding Config.Profile.URL.
func WithProfileDAO(service dao.Service[string, model.Profile]) Option {
	return func(s *Service) { s.profileDAO = service }
}

func WithPrompter(prompter prompt.Provider) Option {
	return func(s *Service) { s.prompter = prompter }
}

// WithShellFactory overrides how shell sessions are opened.
func WithShellFactory(factory shell.Factory) Option {
	return func(s *Service) { s.shellFactory = factory }
}

// WithWriter sets where guidebook output goes.
func WithWriter(w io.Writer) Option {
	return func(s *Service) { s.writer = w }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithVeto keeps vetoed imports in the graph even when validated.
func WithVeto(veto optimizer.Veto) Option {
	return func(s *Service) { s.veto = veto }
}

// WithAssertions pre-answers questions, keyed by group.
func WithAssertions(assertions map[string]string) Option {
	return func(s *Service) { s.assertions = assertions }
}

// WithAcceptPrior skips questions already answered in the profile.
func WithAcceptPrior(accept bool) Option {
	return func(s *Service) { s.acceptPrior = accept }
}

// WithPolicy gates code block execution, overriding Config.Policy.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithOnBeforeRun registers a hook receiving the session's clean exit
// function before the graph walk starts.
func WithOnBeforeRun(fn func(cleanExit CleanExit)) Option {
	return func(s *Service) { s.onBeforeRun = fn }
}

// WithSignalTrap traps SIGINT and SIGTERM for the duration of a session.
func WithSignalTrap(trap bool) Option {
	return func(s *Service) { s.trapSignals = trap }
}

// WithClean controls whether live subprocesses are cleaned up when a
// session returns. When disabled the caller owns Result.CleanExit.
func WithClean(clean bool) Option {
	return func(s *Service) { s.clean = clean }
}

// WithRunName names the run in exit messages.
func WithRunName(name string) Option {
	return func(s *Service) { s.runName = name }
}
