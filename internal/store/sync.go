package store

import (
	"sync"
)

// SyncState tracks whether the remote service is believed reachable.
//
// Writes consult it before calling the remote; any failed write marks the
// remote down. Only a successful refresh marks it up again.
type SyncState struct {
	mu        sync.Mutex
	available bool
	onChange  func(available bool, cause error)
}

// NewSyncState starts in the available state.
func NewSyncState() *SyncState { return &SyncState{available: true} }

// OnChange registers fn to run after every transition. fn must not call back into the state.
func (s *SyncState) OnChange(fn func(available bool, cause error)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Available reports the current belief.
func (s *SyncState) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

// MarkDown records a failed remote call. It reports whether this was a transition.
func (s *SyncState) MarkDown(cause error) bool { return s.set(false, cause) }

// MarkUp records a successful remote call. It reports whether this was a transition.
func (s *SyncState) MarkUp() bool { return s.set(true, nil) }

func (s *SyncState) set(v bool, cause error) bool {
	s.mu.Lock()
	if s.available == v {
		s.mu.Unlock()
		return false
	}
	s.available = v
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(v, cause)
	}
	return true
}
