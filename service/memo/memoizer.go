// Package memo tracks the live subprocess handles and cached command
// results of a guidebook session, together with the environment that
// executed code blocks export.
package memo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/viant/guidebook/internal/logx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Handle is a live resource that must be released before exit.
type Handle interface {
	Close() error
}

type tracked struct {
	name   string
	handle Handle
}

// Memoizer is safe for concurrent use.
type Memoizer struct {
	mux     sync.Mutex
	seq     uint64
	handles map[uint64]*tracked
	results map[string]string
	env     map[string]string
	flight  singleflight.Group
}

func New() *Memoizer {
	return &Memoizer{
		handles: map[uint64]*tracked{},
		results: map[string]string{},
		env:     map[string]string{},
	}
}

// Track registers a live handle and returns a function that forgets it
// once the caller has released it normally.
func (m *Memoizer) Track(name string, handle Handle) func() {
	m.mux.Lock()
	m.seq++
	id := m.seq
	m.handles[id] = &tracked{name: name, handle: handle}
	m.mux.Unlock()
	return func() {
		m.mux.Lock()
		delete(m.handles, id)
		m.mux.Unlock()
	}
}

// CurrentlyNeedsCleanup reports whether any handle is still live.
func (m *Memoizer) CurrentlyNeedsCleanup() bool {
	m.mux.Lock()
	defer m.mux.Unlock()
	return len(m.handles) > 0
}

// Memo returns the cached result of key or computes it with fn. Only
// successful results are cached; concurrent callers share one call.
func (m *Memoizer) Memo(ctx context.Context, key string, fn func(ctx context.Context) (string, error)) (string, error) {
	if result, ok := m.result(key); ok {
		return result, nil
	}
	value, err, _ := m.flight.Do(key, func() (interface{}, error) {
		if result, ok := m.result(key); ok {
			return result, nil
		}
		result, err := fn(ctx)
		if err != nil {
			return "", err
		}
		m.mux.Lock()
		m.results[key] = result
		m.mux.Unlock()
		return result, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

func (m *Memoizer) result(key string) (string, bool) {
	m.mux.Lock()
	defer m.mux.Unlock()
	result, ok := m.results[key]
	return result, ok
}

// Env returns a copy of the accumulated environment.
func (m *Memoizer) Env() map[string]string {
	m.mux.Lock()
	defer m.mux.Unlock()
	ret := make(map[string]string, len(m.env))
	for k, v := range m.env {
		ret[k] = v
	}
	return ret
}

func (m *Memoizer) SetEnv(name, value string) {
	m.mux.Lock()
	m.env[name] = value
	m.mux.Unlock()
}

// MergeEnv adds every entry of env.
func (m *Memoizer) MergeEnv(env map[string]string) {
	m.mux.Lock()
	for k, v := range env {
		m.env[k] = v
	}
	m.mux.Unlock()
}

// Cleanup closes every live handle concurrently. It is best effort: a
// failing handle is logged and reported, the others are still closed, and
// the wait is bounded by ctx. Calls after all handles are reaped are no-ops.
func (m *Memoizer) Cleanup(ctx context.Context, sig os.Signal) error {
	m.mux.Lock()
	handles := m.handles
	m.handles = map[uint64]*tracked{}
	m.mux.Unlock()
	if len(handles) == 0 {
		return nil
	}

	logger := logx.FromContext(ctx)
	if sig != nil {
		logger.Debug("cleaning up", zap.Stringer("signal", sig), zap.Int("handles", len(handles)))
	}
	errs := make(chan error, len(handles))
	for _, item := range handles {
		go func(item *tracked) {
			err := item.handle.Close()
			if err != nil {
				logger.Warn("failed to release", zap.String("handle", item.name), zap.Error(err))
				err = fmt.Errorf("failed to release %v: %w", item.name, err)
			}
			errs <- err
		}(item)
	}

	var result []error
	for range handles {
		select {
		case err := <-errs:
			if err != nil {
				result = append(result, err)
			}
		case <-ctx.Done():
			return errors.Join(append(result, ctx.Err())...)
		}
	}
	return errors.Join(result...)
}
