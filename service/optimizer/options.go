package optimizer

import (
	"context"

	"github.com/viant/guidebook/model/graph"
)

// Pass names an optimization pass.
type Pass string

const (
	PassValidate Pass = "validate"
	PassChoices  Pass = "choices"
)

// Optimization switches passes on and off.
type Optimization struct {
	Off      bool          `json:"off,omitempty" yaml:"off,omitempty"`
	Disabled map[Pass]bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// Enabled reports whether pass should run.
func (o *Optimization) Enabled(pass Pass) bool {
	if o == nil {
		return true
	}
	return !o.Off && !o.Disabled[pass]
}

// Validator runs a validate command and reports its outcome.
type Validator interface {
	Validate(ctx context.Context, command string) (graph.Status, error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, command string) (graph.Status, error)

func (f ValidatorFunc) Validate(ctx context.Context, command string) (graph.Status, error) {
	return f(ctx, command)
}

// Options configures a pass run.
type Options struct {
	Optimization *Optimization
	Veto         Veto
	StatusMemo   *StatusMemo
	Validator    Validator
	Quiet        bool
}

// Option mutates Options.
type Option func(*Options)

func WithOptimization(optimization *Optimization) Option {
	return func(o *Options) { o.Optimization = optimization }
}

func WithVeto(veto Veto) Option {
	return func(o *Options) { o.Veto = veto }
}

func WithStatusMemo(memo *StatusMemo) Option {
	return func(o *Options) { o.StatusMemo = memo }
}

func WithValidator(validator Validator) Option {
	return func(o *Options) { o.Validator = validator }
}

func WithQuiet(quiet bool) Option {
	return func(o *Options) { o.Quiet = quiet }
}

// NewOptions returns options with an empty status memo.
func NewOptions(opts ...Option) *Options {
	ret := &Options{StatusMemo: NewStatusMemo()}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.StatusMemo == nil {
		ret.StatusMemo = NewStatusMemo()
	}
	return ret
}

func (o *Options) vetoed(node graph.Node) bool {
	if o.Veto == nil || !graph.HasProvenance(node) {
		return false
	}
	for _, provenance := range node.Metadata().Provenance {
		if o.Veto.Has(provenance) {
			return true
		}
	}
	return false
}
