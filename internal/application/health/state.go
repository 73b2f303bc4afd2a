package health

import "sync/atomic"

// State is the lifecycle state of a listener
type State string

const (
	StateStopped   State = "stopped"
	StateListening State = "listening"
)

// StateBox holds a State that is safe for concurrent use.
// The zero value reports StateStopped.
type StateBox struct {
	v atomic.Value
}

// Load returns the current state
func (b *StateBox) Load() State {
	if s, ok := b.v.Load().(State); ok {
		return s
	}
	return StateStopped
}

// Store replaces the current state
func (b *StateBox) Store(s State) {
	b.v.Store(s)
}
