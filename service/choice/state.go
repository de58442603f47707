package choice

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/viant/guidebook/model/graph"
	"github.com/viant/guidebook/service/event"
)

const eventSource = "choice"

// table holds the maps shared between a State and its clones.
type table struct {
	mux      sync.RWMutex
	choices  map[string]string
	rejected map[string]bool
}

// State is the choice store. The zero value is not usable; use New.
type State struct {
	*table
	listeners *event.Hub[Change]
}

// New creates a state seeded with a copy of initial.
func New(initial map[string]string) *State {
	t := &table{choices: make(map[string]string, len(initial)), rejected: map[string]bool{}}
	for k, v := range initial {
		t.choices[k] = v
	}
	return &State{table: t, listeners: &event.Hub[Change]{}}
}

// Clone returns a view sharing the underlying maps with s. Listeners are
// not shared: a clone starts with none.
func (s *State) Clone() *State {
	return &State{table: s.table, listeners: &event.Hub[Change]{}}
}

func (s *State) Get(choice *graph.Choice) (string, bool) {
	return s.GetKey(choice.GroupContext)
}

func (s *State) GetKey(key string) (string, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	value, ok := s.choices[key]
	return value, ok
}

func (s *State) Contains(choice *graph.Choice) bool {
	return s.ContainsKey(choice.GroupContext)
}

func (s *State) ContainsKey(key string) bool {
	_, ok := s.GetKey(key)
	return ok
}

// IsRejected reports whether key was explicitly removed.
func (s *State) IsRejected(key string) bool {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.rejected[key]
}

// Set records value as the answer to choice. overrideRejections defaults
// to true; when false a previously removed key stays unanswered. It
// returns false, without notifying, when nothing changed.
func (s *State) Set(choice *graph.Choice, value string, overrideRejections ...bool) bool {
	return s.SetKey(choice.GroupContext, value, overrideRejections...)
}

func (s *State) SetKey(key, value string, overrideRejections ...bool) bool {
	override := true
	if len(overrideRejections) > 0 {
		override = overrideRejections[0]
	}
	s.mux.Lock()
	previous, exists := s.choices[key]
	if (exists && previous == value) || (s.rejected[key] && !override) {
		s.mux.Unlock()
		return false
	}
	s.choices[key] = value
	delete(s.rejected, key)
	s.mux.Unlock()
	s.notify(&Change{Operation: OperationSet, Key: key, Value: value, Previous: previous})
	return true
}

// Remove clears the answer to choice and marks it rejected.
func (s *State) Remove(choice *graph.Choice) bool {
	return s.RemoveKey(choice.GroupContext)
}

func (s *State) RemoveKey(key string) bool {
	s.mux.Lock()
	previous, exists := s.choices[key]
	if !exists {
		s.mux.Unlock()
		return false
	}
	delete(s.choices, key)
	s.rejected[key] = true
	s.mux.Unlock()
	s.notify(&Change{Operation: OperationRemove, Key: key, Previous: previous})
	return true
}

// Keys returns answered keys in sorted order.
func (s *State) Keys() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	keys := make([]string, 0, len(s.choices))
	for k := range s.choices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns a copy of the answers.
func (s *State) Entries() map[string]string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	result := make(map[string]string, len(s.choices))
	for k, v := range s.choices {
		result[k] = v
	}
	return result
}

func (s *State) Len() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.choices)
}

// FormComplete stores fields as the JSON encoded answer to choice.
func (s *State) FormComplete(choice *graph.Choice, fields map[string]string) (bool, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return false, err
	}
	return s.Set(choice, string(data)), nil
}

// Form decodes the answer to a form choice; a missing or malformed answer
// yields nil.
func (s *State) Form(choice *graph.Choice) map[string]string {
	value, ok := s.Get(choice)
	if !ok {
		return nil
	}
	fields := map[string]string{}
	if err := json.Unmarshal([]byte(value), &fields); err != nil {
		return nil
	}
	return fields
}

// OnChoice registers handler; it reports false when already registered.
func (s *State) OnChoice(handler event.Handler[Change]) bool {
	return s.listeners.On(handler)
}

// OffChoice deregisters handler. It is safe to call during notification.
func (s *State) OffChoice(handler event.Handler[Change]) bool {
	return s.listeners.Off(handler)
}

// Subscribe registers fn and returns its deregistration function.
func (s *State) Subscribe(fn func(*event.Event[Change])) func() {
	return s.listeners.Subscribe(fn)
}

func (s *State) notify(change *Change) {
	s.listeners.Notify(event.NewEvent(&event.Context{Source: eventSource, EventType: string(change.Operation), Key: change.Key}, *change))
}
