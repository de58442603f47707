package shell

import (
	"context"

	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
)

// Session is a stateful shell: directory changes and exports persist
// between Run calls.
type Session interface {
	Run(ctx context.Context, command string, options ...runner.Option) (string, int, error)
	Close() error
}

// Factory opens a session with the supplied environment.
type Factory func(ctx context.Context, env map[string]string) (Session, error)

// LocalFactory opens local gosh sessions.
func LocalFactory(ctx context.Context, env map[string]string) (Session, error) {
	var options []runner.Option
	if len(env) > 0 {
		options = append(options, runner.WithEnvironment(env))
	}
	return gosh.New(ctx, local.New(options...))
}
