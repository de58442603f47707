package store

import (
	"context"
	"sort"
	"sync"

	"github.com/viant/guidebook/service/dao"
)

// MemoryStore is a generic in-memory dao.Service. Entities are copied with
// the supplied clone function on the way in and out, so callers never
// share state with the store.
type MemoryStore[K comparable, T any] struct {
	mu          sync.RWMutex
	records     map[K]*T
	keySelector func(*T) K
	clone       func(*T) *T
}

// NewMemoryStore creates a store. clone may be nil, in which case pointers
// are stored as given.
func NewMemoryStore[K comparable, T any](keySelector func(*T) K, clone func(*T) *T) *MemoryStore[K, T] {
	if clone == nil {
		clone = func(v *T) *T { return v }
	}
	return &MemoryStore[K, T]{
		records:     make(map[K]*T),
		keySelector: keySelector,
		clone:       clone,
	}
}

func (s *MemoryStore[K, T]) Save(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	var zero K
	if key == zero {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = s.clone(v)
	return nil
}

func (s *MemoryStore[K, T]) Load(_ context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return s.clone(v), nil
}

func (s *MemoryStore[K, T]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		return dao.ErrNotFound
	}
	delete(s.records, key)
	return nil
}

// List returns all records ordered by their key's string form.
func (s *MemoryStore[K, T]) List(_ context.Context) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.records))
	for _, v := range s.records {
		out = append(out, s.clone(v))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(s.keySelector(out[i]), s.keySelector(out[j]))
	})
	return out, nil
}

func less[K comparable](a, b K) bool {
	switch x := any(a).(type) {
	case string:
		return x < any(b).(string)
	case int:
		return x < any(b).(int)
	}
	return false
}
