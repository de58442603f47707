package shell

import "io"

type Option func(s *Service)

// WithFactory overrides how sessions are opened.
func WithFactory(factory Factory) Option {
	return func(s *Service) { s.factory = factory }
}

// WithTimeoutMs sets the per command timeout.
func WithTimeoutMs(timeoutMs int) Option {
	return func(s *Service) { s.timeoutMs = timeoutMs }
}

// WithWriter sets where leaf output is echoed.
func WithWriter(w io.Writer) Option {
	return func(s *Service) { s.writer = w }
}

// WithQuiet suppresses echoing leaf output.
func WithQuiet(quiet bool) Option {
	return func(s *Service) { s.quiet = quiet }
}
