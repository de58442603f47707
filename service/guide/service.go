// Package guide walks an optimized guidebook graph: it runs sequences in
// order and parallel branches concurrently, resolves choices by asking the
// user or by replaying prior answers, and executes code blocks.
package guide

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/viant/guidebook/internal/logx"
	"github.com/viant/guidebook/model"
	"github.com/viant/guidebook/model/graph"
	"github.com/viant/guidebook/model/types"
	"github.com/viant/guidebook/policy"
	"github.com/viant/guidebook/progress"
	"github.com/viant/guidebook/service/choice"
	"github.com/viant/guidebook/service/memo"
	"github.com/viant/guidebook/service/prompt"
	"github.com/viant/guidebook/service/shell"
	"github.com/viant/guidebook/tracing"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Mode selects how choices are resolved.
type Mode string

const (
	// ModeRun answers every question from the suggestions.
	ModeRun Mode = "run"
	// ModeGuide asks the user.
	ModeGuide Mode = "guide"
)

// Executor runs a code block.
type Executor interface {
	Exec(ctx context.Context, leaf *graph.Leaf) error
}

// Result summarises a completed walk.
type Result struct {
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
}

type Service struct {
	mode        Mode
	book        *model.Guidebook
	choices     *choice.State
	suggestions *choice.State
	memoizer    *memo.Memoizer
	executor    Executor
	prompter    prompt.Provider
	policy      *policy.Policy
	acceptPrior bool
	writer      io.Writer
	quiet       bool
	stopping    atomic.Bool
}

// New creates a guide over book. choices receives guide mode answers;
// suggestions hold the prior answers.
func New(mode Mode, book *model.Guidebook, choices, suggestions *choice.State, memoizer *memo.Memoizer, opts ...Option) *Service {
	ret := &Service{
		mode:        mode,
		book:        book,
		choices:     choices,
		suggestions: suggestions,
		memoizer:    memoizer,
		writer:      os.Stdout,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.memoizer == nil {
		ret.memoizer = memo.New()
	}
	if ret.choices == nil {
		ret.choices = choice.New(nil)
	}
	if ret.suggestions == nil {
		ret.suggestions = choice.New(nil)
	}
	if ret.executor == nil {
		ret.executor = shell.New(ret.memoizer, shell.WithQuiet(ret.quiet), shell.WithWriter(ret.writer))
	}
	if ret.prompter == nil {
		ret.prompter = prompt.New()
	}
	return ret
}

// Run walks the graph to completion.
func (s *Service) Run(ctx context.Context) (result *Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "guide.run")
	span.WithAttributes(map[string]string{"guidebook": s.book.Name, "mode": string(s.mode)})
	defer func() { tracing.EndSpan(span, err) }()

	if err = s.walk(ctx, s.book.Graph, &scope{}); err != nil {
		if _, ok := types.IsEarlyExit(err); !ok && s.stopping.Load() {
			err = types.EarlyExit(types.ExitInterrupted)
		}
		return nil, err
	}
	return &Result{Title: s.book.Title, Description: s.book.Description, Env: s.memoizer.Env()}, nil
}

// OnExitSignalFromUser records the intent to stop. The walk unwinds at the
// next node boundary; a pending prompt is left to resolve on its own.
func (s *Service) OnExitSignalFromUser(ctx context.Context, sig os.Signal) {
	if s.stopping.CompareAndSwap(false, true) && sig != nil {
		logx.FromContext(ctx).Debug("stop requested", zap.Stringer("signal", sig))
	}
}

// CurrentlyNeedsCleanup reports whether any subprocess is still live.
func (s *Service) CurrentlyNeedsCleanup() bool {
	return s.memoizer.CurrentlyNeedsCleanup()
}

// scope carries the display titles enclosing a node.
type scope struct {
	titles []string
}

func (s *scope) push(title string) *scope {
	if title == "" {
		return s
	}
	return &scope{titles: append(append([]string(nil), s.titles...), title)}
}

func (s *scope) String() string {
	return strings.Join(s.titles, " › ")
}

func (s *Service) walk(ctx context.Context, node graph.Node, sc *scope) error {
	if s.stopping.Load() {
		return types.EarlyExit(types.ExitInterrupted)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if graph.IsEmpty(node) {
		return nil
	}
	switch actual := node.(type) {
	case *graph.Sequence:
		for _, child := range actual.Children {
			if err := s.walk(ctx, child, sc); err != nil {
				return err
			}
		}
		return nil
	case *graph.Parallel:
		group := errgroup.Group{}
		for _, child := range actual.Children {
			group.Go(func() error { return s.walk(ctx, child, sc) })
		}
		return group.Wait()
	case *graph.Choice:
		nested, err := s.resolve(ctx, actual)
		if err != nil {
			return err
		}
		return s.walk(ctx, nested, sc.push(actual.Title))
	case *graph.TitledSteps:
		stepsScope := sc.push(actual.Title)
		for i, step := range actual.Steps {
			if !s.quiet {
				fmt.Fprintf(s.writer, "\n%d. %s\n", i+1, step.Title)
			}
			if err := s.walk(ctx, step.Graph, stepsScope.push(step.Title)); err != nil {
				return err
			}
		}
		return nil
	case *graph.SubTask:
		return s.walk(ctx, actual.Graph, (&scope{}).push(actual.Title))
	case *graph.Leaf:
		return s.exec(ctx, actual, sc)
	}
	return fmt.Errorf("unsupported node kind: %v", node.Kind())
}

// resolve answers a choice and returns the graph to descend into.
func (s *Service) resolve(ctx context.Context, c *graph.Choice) (graph.Node, error) {
	if c.IsForm() {
		return nil, s.resolveForm(ctx, c)
	}
	answer, err := s.answer(ctx, c)
	if err != nil {
		return nil, err
	}
	option := c.Option(answer)
	if option == nil {
		return nil, types.NewUnknownOptionError(c.GroupContext, answer)
	}
	if s.mode == ModeGuide {
		s.choices.Set(c, answer)
	}
	progress.UpdateCtx(ctx, progress.Delta{Answered: 1})
	logx.FromContext(ctx).Debug("answered", zap.String("group", c.GroupContext), zap.String("answer", answer))
	return option.Graph, nil
}

func (s *Service) answer(ctx context.Context, c *graph.Choice) (string, error) {
	if s.mode == ModeRun {
		answer, ok := s.suggestions.Get(c)
		if !ok {
			return "", types.NewUnansweredError(c.GroupContext, c.Title)
		}
		return answer, nil
	}
	if s.acceptPrior {
		if answer, ok := s.choices.Get(c); ok && c.Option(answer) != nil {
			return answer, nil
		}
	}
	question := &prompt.Question{Title: titleOr(c.Title, c.GroupContext), Options: c.Titles()}
	if suggestion, ok := s.suggestions.Get(c); ok && c.Option(suggestion) != nil {
		question.Suggestions = []string{suggestion}
	}
	return s.prompter.Select(ctx, question)
}

// resolveForm collects form values and exports them to the environment.
func (s *Service) resolveForm(ctx context.Context, c *graph.Choice) error {
	var values map[string]string
	switch {
	case s.mode == ModeRun:
		if values = s.suggestions.Form(c); values == nil {
			return types.NewUnansweredError(c.GroupContext, c.Title)
		}
	case s.acceptPrior && s.choices.Form(c) != nil:
		values = s.choices.Form(c)
	default:
		var err error
		if values, err = s.prompter.Form(ctx, titleOr(c.Title, c.GroupContext), c.Form.Fields, s.suggestions.Form(c)); err != nil {
			return err
		}
		if _, err = s.choices.FormComplete(c, values); err != nil {
			return err
		}
	}
	s.memoizer.MergeEnv(values)
	progress.UpdateCtx(ctx, progress.Delta{Answered: 1})
	return nil
}

func (s *Service) exec(ctx context.Context, leaf *graph.Leaf, sc *scope) (err error) {
	p := s.policy
	if p == nil {
		p = policy.FromContext(ctx)
	}
	approved, err := p.Approve(ctx, leaf)
	if err != nil {
		return err
	}
	if !approved {
		if !s.quiet {
			fmt.Fprintf(s.writer, "%s\n", leaf.Body)
		}
		progress.UpdateCtx(ctx, progress.Delta{Skipped: 1})
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "guide.leaf")
	span.WithAttributes(map[string]string{"scope": sc.String(), "key": leaf.Key})
	defer func() { tracing.EndSpan(span, err) }()

	progress.UpdateCtx(ctx, progress.Delta{Running: 1})
	err = s.executor.Exec(ctx, leaf)
	progress.UpdateCtx(ctx, progress.Delta{Running: -1})
	if err == nil {
		progress.UpdateCtx(ctx, progress.Delta{Executed: 1})
		return nil
	}
	if s.stopping.Load() {
		return types.EarlyExit(types.ExitInterrupted)
	}
	if leaf.Optional {
		logx.FromContext(ctx).Warn("optional step failed", zap.String("scope", sc.String()), zap.Error(err))
		progress.UpdateCtx(ctx, progress.Delta{Skipped: 1})
		return nil
	}
	progress.UpdateCtx(ctx, progress.Delta{Failed: 1})
	return fmt.Errorf("failed to run %v: %w", titleOr(titleOr(leaf.Title, sc.String()), firstLine(leaf.Body)), err)
}

func titleOr(title, fallback string) string {
	if title != "" {
		return title
	}
	return fallback
}

func firstLine(body string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(body), "\n")
	return line
}
