// Package apisession provides a typed, thread-safe session store for API
// handlers with per-client state. Clients identify themselves with an opaque
// session ID; unknown IDs get fresh state on first use.
package apisession

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value    *T
	lastSeen time.Time
}

// Store maps session IDs to one instance of T each, created on demand.
// Sessions idle longer than the TTL are evicted lazily.
type Store[T any] struct {
	mu          sync.Mutex
	entries     map[string]*entry[T]
	ttl         time.Duration
	newFn       func() *T
	lastCleanup time.Time
}

// New creates a Store that evicts sessions inactive longer than ttl.
// newFn builds the state for a session ID seen for the first time.
func New[T any](ttl time.Duration, newFn func() *T) *Store[T] {
	return &Store[T]{
		entries:     make(map[string]*entry[T]),
		ttl:         ttl,
		newFn:       newFn,
		lastCleanup: time.Now(),
	}
}

// Get returns the state for the given session, creating it if needed.
// Each call refreshes the session's last-access timestamp.
func (s *Store[T]) Get(id string) *T {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.lastCleanup) > s.ttl/2 {
		s.cleanupLocked()
	}

	e, ok := s.entries[id]
	if !ok {
		e = &entry[T]{value: s.newFn()}
		s.entries[id] = e
	}
	e.lastSeen = time.Now()
	return e.value
}

// Delete removes a session immediately, e.g. when a client disconnects.
func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Cleanup evicts all sessions that have been inactive longer than the TTL.
func (s *Store[T]) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked()
}

func (s *Store[T]) cleanupLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
		}
	}
	s.lastCleanup = time.Now()
}

// Len returns the number of active sessions.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
