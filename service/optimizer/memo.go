package optimizer

import (
	"sync"

	"github.com/viant/guidebook/model/graph"
)

// StatusMemo caches validation outcomes for the lifetime of a session,
// keyed by node key or validate expression. Writes are last-write-wins.
type StatusMemo struct {
	mux    sync.RWMutex
	status map[string]graph.Status
}

func NewStatusMemo() *StatusMemo {
	return &StatusMemo{status: map[string]graph.Status{}}
}

func (m *StatusMemo) Get(key string) (graph.Status, bool) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	status, ok := m.status[key]
	return status, ok
}

func (m *StatusMemo) Put(key string, status graph.Status) {
	m.mux.Lock()
	m.status[key] = status
	m.mux.Unlock()
}

// Succeeded reports whether key is cached as a success.
func (m *StatusMemo) Succeeded(key string) bool {
	status, ok := m.Get(key)
	return ok && status.IsSuccess()
}

// Snapshot returns a copy of the cache.
func (m *StatusMemo) Snapshot() map[string]graph.Status {
	m.mux.RLock()
	defer m.mux.RUnlock()
	ret := make(map[string]graph.Status, len(m.status))
	for k, v := range m.status {
		ret[k] = v
	}
	return ret
}

// memoKey returns the status cache key of a validatable node.
func memoKey(node graph.Node) string {
	meta := node.Metadata()
	if meta.Key != "" {
		return meta.Key
	}
	return meta.Validate.String()
}
