package guide

import (
	"io"

	"github.com/viant/guidebook/policy"
	"github.com/viant/guidebook/service/prompt"
)

type Option func(s *Service)

// WithExecutor sets how code blocks run.
func WithExecutor(executor Executor) Option {
	return func(s *Service) { s.executor = executor }
}

// WithPrompter sets the question provider used in guide mode.
func WithPrompter(prompter prompt.Provider) Option {
	return func(s *Service) { s.prompter = prompter }
}

// WithAcceptPrior answers a question without prompting when the live
// choice store already holds a valid answer.
func WithAcceptPrior(accept bool) Option {
	return func(s *Service) { s.acceptPrior = accept }
}

// WithPolicy gates code block execution.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithWriter sets where step titles and dry-run bodies are printed.
func WithWriter(w io.Writer) Option {
	return func(s *Service) { s.writer = w }
}

func WithQuiet(quiet bool) Option {
	return func(s *Service) { s.quiet = quiet }
}
