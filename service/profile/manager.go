// Package profile binds a session's choice state to a stored profile. The
// manager loads the profile, seeds the choice and suggestion stores from it
// and writes every change back, debounced.
package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/viant/guidebook/internal/clock"
	"github.com/viant/guidebook/internal/logx"
	"github.com/viant/guidebook/model"
	"github.com/viant/guidebook/service/choice"
	"github.com/viant/guidebook/service/dao"
	"github.com/viant/guidebook/service/event"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manager is safe for concurrent use.
type Manager struct {
	dao      dao.Service[string, model.Profile]
	name     string
	debounce time.Duration
	bump     bool
	verbose  bool

	ctx         context.Context
	choices     *choice.State
	suggestions *choice.State
	unsubscribe func()

	mux      sync.Mutex
	timer    *time.Timer
	inflight chan struct{}
	profile  *model.Profile

	persistMux sync.Mutex
}

// New creates a manager for the named profile.
func New(service dao.Service[string, model.Profile], name string, opts ...Option) *Manager {
	ret := &Manager{dao: service, name: name, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Init loads (or creates) the profile and returns the live choice store
// and the suggestions snapshot. Guided sessions get a fresh store seeded
// from the profile; run sessions answer from a view of the suggestions.
// assertions are applied to the live store and persisted like any other
// answer.
func (m *Manager) Init(ctx context.Context, assertions map[string]string, guided bool) (*choice.State, *choice.State, error) {
	m.ctx = context.WithoutCancel(ctx)
	profile, err := m.dao.Load(ctx, m.name)
	switch {
	case errors.Is(err, dao.ErrNotFound):
		profile = model.NewProfile(m.name, clock.UnixMilli())
	case err != nil:
		return nil, nil, fmt.Errorf("failed to load profile %v: %w", m.name, err)
	}
	m.mux.Lock()
	m.profile = profile.Clone()
	m.mux.Unlock()

	m.suggestions = choice.New(profile.Choices)
	if guided {
		m.choices = choice.New(profile.Choices)
	} else {
		m.choices = m.suggestions.Clone()
	}
	m.unsubscribe = m.choices.Subscribe(func(*event.Event[choice.Change]) { m.schedule() })
	for key, value := range assertions {
		m.choices.SetKey(key, value)
	}
	if m.bump {
		m.mux.Lock()
		m.profile.LastUsedTime = clock.UnixMilli()
		m.mux.Unlock()
		if err := m.Persist(ctx); err != nil {
			logx.FromContext(ctx).Warn("failed to update profile", zap.String("profile", m.name), zap.Error(err))
		}
	}
	return m.choices, m.suggestions, nil
}

// Profile returns a copy of the last persisted profile.
func (m *Manager) Profile() *model.Profile {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.profile == nil {
		return nil
	}
	return m.profile.Clone()
}

// schedule replaces any pending write with one due after the debounce
// window.
func (m *Manager) schedule() {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.timer != nil {
		m.timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(m.debounce, func() {
		m.mux.Lock()
		if m.timer != timer {
			m.mux.Unlock()
			return
		}
		m.timer = nil
		done := make(chan struct{})
		m.inflight = done
		m.mux.Unlock()

		if err := m.Persist(m.ctx); err != nil {
			logx.FromContext(m.ctx).Warn("failed to persist profile", zap.String("profile", m.name), zap.Error(err))
		}

		m.mux.Lock()
		if m.inflight == done {
			m.inflight = nil
		}
		m.mux.Unlock()
		close(done)
	})
	m.timer = timer
}

// Persist writes the current choices to the profile store.
func (m *Manager) Persist(ctx context.Context) error {
	if m.choices == nil {
		return nil
	}
	m.persistMux.Lock()
	defer m.persistMux.Unlock()

	m.mux.Lock()
	previous := m.profile.Clone()
	m.mux.Unlock()
	next := previous.Clone()
	next.Choices = m.choices.Entries()
	if err := m.dao.Save(ctx, next); err != nil {
		return err
	}
	if m.verbose {
		if diff := Diff(previous, next); diff != "" {
			logx.FromContext(ctx).Debug("profile updated", zap.String("profile", m.name), zap.String("diff", diff))
		}
	}
	m.mux.Lock()
	m.profile = next
	m.mux.Unlock()
	return nil
}

// Cleanup flushes pending state before exit: it awaits an in-flight write
// and turns a pending one into an immediate write. It is idempotent.
func (m *Manager) Cleanup(ctx context.Context) error {
	m.mux.Lock()
	pending := m.timer != nil
	if pending {
		m.timer.Stop()
	}
	m.timer = nil
	inflight := m.inflight
	m.mux.Unlock()

	if inflight != nil {
		select {
		case <-inflight:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if !pending {
		return nil
	}
	if err := m.Persist(ctx); err != nil {
		logx.FromContext(ctx).Warn("failed to persist profile", zap.String("profile", m.name), zap.Error(err))
		return err
	}
	return nil
}

// Close stops listening to choice changes.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Diff returns a unified diff of two profiles' YAML form.
func Diff(previous, next *model.Profile) string {
	a, err := yaml.Marshal(previous)
	if err != nil {
		return ""
	}
	b, err := yaml.Marshal(next)
	if err != nil {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: "previous",
		ToFile:   "current",
		Context:  1,
	})
	if err != nil {
		return ""
	}
	return diff
}
