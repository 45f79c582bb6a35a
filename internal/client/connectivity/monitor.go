// Package connectivity tracks whether the backend is reachable. The monitor
// is injectable so sync behavior can be driven deterministically in tests
// instead of depending on real network transitions.
package connectivity

import "sync"

// Monitor reports the current online state and notifies on transitions.
type Monitor interface {
	// IsOnline reports the last observed connectivity state.
	IsOnline() bool

	// OnChange registers a callback invoked on every online/offline
	// transition. Callbacks run on the monitor's goroutine and must return
	// quickly.
	OnChange(fn func(online bool))
}

// state is the shared transition bookkeeping used by implementations.
type state struct {
	mu        sync.RWMutex
	online    bool
	callbacks []func(online bool)
}

func (s *state) isOnline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

func (s *state) onChange(fn func(online bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// set updates the state and fires callbacks when it actually changed.
func (s *state) set(online bool) {
	s.mu.Lock()
	if s.online == online {
		s.mu.Unlock()
		return
	}
	s.online = online
	callbacks := make([]func(bool), len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(online)
	}
}

// Manual is a Monitor driven by explicit SetOnline calls. Used in tests and
// as a forced-offline switch.
type Manual struct {
	state
}

// NewManual returns a Manual monitor with the given initial state. The
// initial state does not fire callbacks.
func NewManual(online bool) *Manual {
	m := &Manual{}
	m.online = online
	return m
}

func (m *Manual) IsOnline() bool         { return m.isOnline() }
func (m *Manual) OnChange(fn func(bool)) { m.onChange(fn) }
func (m *Manual) SetOnline(online bool)  { m.set(online) }
