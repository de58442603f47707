package policy

import (
	"context"
	"strings"

	"github.com/viant/guidebook/model/graph"
)

// Execution modes.
const (
	ModeAsk  = "ask"  // confirm before every code block
	ModeAuto = "auto" // execute automatically (default)
	ModeDeny = "deny" // dry run: print but never execute
)

// AskFunc is invoked when Mode==ask. Returning true approves the block.
// Implementations may switch p to ModeAuto after an approval.
type AskFunc func(ctx context.Context, leaf *graph.Leaf, p *Policy) (bool, error)

// Policy gates code block execution. A nil *Policy executes everything.
//
// AllowList and BlockList match leaf keys, case-insensitively, regardless
// of Mode.
type Policy struct {
	Mode      string
	AllowList []string
	BlockList []string
	Ask       AskFunc
}

// Config is the serialisable part of a Policy.
type Config struct {
	Mode      string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowList []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList []string `json:"block,omitempty" yaml:"block,omitempty"`
}

func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{
		Mode:      p.Mode,
		AllowList: append([]string(nil), p.AllowList...),
		BlockList: append([]string(nil), p.BlockList...),
	}
}

func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{
		Mode:      c.Mode,
		AllowList: append([]string(nil), c.AllowList...),
		BlockList: append([]string(nil), c.BlockList...),
	}
}

// IsAllowed evaluates the block and allow lists for a leaf key. Leaves
// without a key are only subject to a non-empty allow list.
func (p *Policy) IsAllowed(key string) bool {
	if p == nil {
		return true
	}
	for _, b := range p.BlockList {
		if strings.EqualFold(key, b) {
			return false
		}
	}
	if len(p.AllowList) == 0 {
		return true
	}
	for _, a := range p.AllowList {
		if strings.EqualFold(key, a) {
			return true
		}
	}
	return false
}

// Approve reports whether leaf may run now.
func (p *Policy) Approve(ctx context.Context, leaf *graph.Leaf) (bool, error) {
	if p == nil {
		return true, nil
	}
	if !p.IsAllowed(leaf.Key) {
		return false, nil
	}
	switch p.Mode {
	case ModeDeny:
		return false, nil
	case ModeAsk:
		if p.Ask == nil {
			return true, nil
		}
		return p.Ask(ctx, leaf, p)
	}
	return true, nil
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext returns the context policy or nil.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
