package profile

import "time"

// DefaultDebounce is the window within which choice changes coalesce into
// a single write.
const DefaultDebounce = 50 * time.Millisecond

type Option func(m *Manager)

func WithDebounce(d time.Duration) Option {
	return func(m *Manager) { m.debounce = d }
}

// WithBump updates the profile's last used time on Init.
func WithBump(bump bool) Option {
	return func(m *Manager) { m.bump = bump }
}

// WithVerbose logs a diff of every persisted change.
func WithVerbose(verbose bool) Option {
	return func(m *Manager) { m.verbose = verbose }
}
