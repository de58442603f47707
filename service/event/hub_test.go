package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name string
	log  *[]string
	hub  *Hub[string]
	once bool
}

func (r *recorder) Handle(e *Event[string]) {
	*r.log = append(*r.log, r.name+":"+e.Data)
	if r.once {
		r.hub.Off(r)
	}
}

func TestHub(t *testing.T) {
	var log []string
	hub := &Hub[string]{}
	first := &recorder{name: "first", log: &log, hub: hub}
	second := &recorder{name: "second", log: &log, hub: hub, once: true}

	assert.True(t, hub.On(first))
	assert.False(t, hub.On(first))
	assert.True(t, hub.On(second))
	assert.Equal(t, 2, hub.Len())

	hub.Notify(NewEvent(&Context{Source: "test"}, "a"))
	hub.Notify(NewEvent(&Context{Source: "test"}, "b"))
	assert.Equal(t, []string{"first:a", "second:a", "first:b"}, log)

	assert.True(t, hub.Off(first))
	assert.False(t, hub.Off(first))
	assert.Equal(t, 0, hub.Len())
}

func TestHub_Subscribe(t *testing.T) {
	hub := &Hub[int]{}
	var total int
	unsubscribe := hub.Subscribe(func(e *Event[int]) { total += e.Data })
	hub.Notify(NewEvent[int](nil, 2))
	unsubscribe()
	hub.Notify(NewEvent[int](nil, 3))
	assert.Equal(t, 2, total)
}
