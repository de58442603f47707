package event

import "sync"

// Handler receives events from a Hub. Implementations must be comparable
// (typically pointers) so that registration can be idempotent.
type Handler[T any] interface {
	Handle(*Event[T])
}

// Hub is a synchronous observer list. Handlers are notified in
// registration order on the notifying goroutine.
type Hub[T any] struct {
	mux      sync.Mutex
	handlers []Handler[T]
}

// On registers handler; registering the same handler twice is a no-op.
func (h *Hub[T]) On(handler Handler[T]) bool {
	h.mux.Lock()
	defer h.mux.Unlock()
	for _, candidate := range h.handlers {
		if candidate == handler {
			return false
		}
	}
	h.handlers = append(h.handlers, handler)
	return true
}

// Off deregisters handler. It is safe to call from within Handle.
func (h *Hub[T]) Off(handler Handler[T]) bool {
	h.mux.Lock()
	defer h.mux.Unlock()
	for i, candidate := range h.handlers {
		if candidate == handler {
			handlers := make([]Handler[T], 0, len(h.handlers)-1)
			handlers = append(handlers, h.handlers[:i]...)
			h.handlers = append(handlers, h.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Subscribe registers fn and returns a function removing it.
func (h *Hub[T]) Subscribe(fn func(*Event[T])) func() {
	handler := &funcHandler[T]{fn: fn}
	h.On(handler)
	return func() { h.Off(handler) }
}

// Len returns the number of registered handlers.
func (h *Hub[T]) Len() int {
	h.mux.Lock()
	defer h.mux.Unlock()
	return len(h.handlers)
}

// Notify delivers event to a snapshot of the registered handlers.
func (h *Hub[T]) Notify(event *Event[T]) {
	h.mux.Lock()
	handlers := h.handlers
	h.mux.Unlock()
	for _, handler := range handlers {
		handler.Handle(event)
	}
}

type funcHandler[T any] struct {
	fn func(*Event[T])
}

func (f *funcHandler[T]) Handle(event *Event[T]) { f.fn(event) }
