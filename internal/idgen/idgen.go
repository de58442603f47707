package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// NewFunc returns a new globally unique identifier. Tests can stub it.
var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }

// NewRunID returns a short identifier used to correlate the log lines and
// spans of a single guide or run session.
func NewRunID() string {
	id := New()
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
