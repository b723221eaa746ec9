package app

import (
	"errors"
	"sync"
)

var (
	ErrAlreadyInitialized = errors.New("application handle already initialized")
	ErrNotInitialized     = errors.New("application handle not initialized")
)

// Handle routes named events to whatever observes the application
// (websocket clients, a terminal UI). Emit is fire-and-forget.
type Handle interface {
	Emit(event string, payload any) error
}

// HandleFunc adapts a function to Handle
type HandleFunc func(event string, payload any) error

// Emit calls f
func (f HandleFunc) Emit(event string, payload any) error {
	return f(event, payload)
}

// Slot holds the application handle. It is set once during startup and
// read many times afterwards.
type Slot struct {
	mu     sync.Mutex
	handle Handle
}

// Set stores h. A second call returns ErrAlreadyInitialized and keeps the
// first handle.
func (s *Slot) Set(h Handle) error {
	if h == nil {
		return errors.New("application handle is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != nil {
		return ErrAlreadyInitialized
	}
	s.handle = h
	return nil
}

// Get returns the handle, or false before startup
func (s *Slot) Get() (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.handle, s.handle != nil
}

// Emit sends an event through the handle. Before startup the event is
// dropped and ErrNotInitialized returned.
func (s *Slot) Emit(event string, payload any) error {
	h, ok := s.Get()
	if !ok {
		return ErrNotInitialized
	}
	return h.Emit(event, payload)
}
