package application

import (
	"sync"

	"libredit/internal/ports"
)

// Session tracks the active library. Switching libraries changes the
// identity seen by edits that are still in flight.
type Session struct {
	mu      sync.RWMutex
	current ports.Library
}

// Ensure Session implements LibraryProvider
var _ ports.LibraryProvider = (*Session)(nil)

// NewSession creates a session with lib as the active library
func NewSession(lib ports.Library) *Session {
	return &Session{current: lib}
}

// Current returns the active library
func (s *Session) Current() ports.Library {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Switch makes lib the active library and returns the previous one so the
// caller can close it
func (s *Session) Switch(lib ports.Library) ports.Library {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.current
	s.current = lib
	return prev
}
