// Package progress keeps aggregated counters for a single guide or run
// session: validations performed, nodes pruned, questions answered and
// leaves executed. The tracker lives in the context so that the optimizer
// and the guide can update it without a global registry.
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/viant/guidebook/internal/clock"
)

// Delta represents an incremental counter change.
type Delta struct {
	Validated int
	Pruned    int
	Answered  int
	Executed  int
	Failed    int
	Skipped   int
	Running   int
}

// Progress keeps aggregated counters. It is safe for concurrent use.
type Progress struct {
	RunID     string
	Guidebook string
	StartedAt time.Time

	Validated int
	Pruned    int
	Answered  int
	Executed  int
	Failed    int
	Skipped   int
	Running   int

	sync.Mutex
	onChange func(Progress)
}

// Update applies the supplied delta. The onChange callback, if any, is
// invoked with a copy outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.Lock()
	p.Validated += d.Validated
	p.Pruned += d.Pruned
	p.Answered += d.Answered
	p.Executed += d.Executed
	p.Failed += d.Failed
	p.Skipped += d.Skipped
	p.Running += d.Running
	snapshot := p.copy()
	cb := p.onChange
	p.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copy()
}

// OnChange registers a callback invoked after every Update; nil disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

func (p *Progress) copy() Progress {
	return Progress{
		RunID:     p.RunID,
		Guidebook: p.Guidebook,
		StartedAt: p.StartedAt,
		Validated: p.Validated,
		Pruned:    p.Pruned,
		Answered:  p.Answered,
		Executed:  p.Executed,
		Failed:    p.Failed,
		Skipped:   p.Skipped,
		Running:   p.Running,
	}
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a tracker, embeds it in a derived context and
// returns both.
func WithNewTracker(ctx context.Context, runID, guidebook string, onChange func(Progress)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Progress{
		RunID:     runID,
		Guidebook: guidebook,
		StartedAt: clock.Now(),
		onChange:  onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// UpdateCtx applies d to the context tracker, if any.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
