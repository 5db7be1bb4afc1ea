package session

import (
	"context"
	"sync"
	"time"
)

// memoryStore keeps session records in process memory. Suitable for tests and
// single-node development runs.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string]Session)}
}

func (s *memoryStore) Get(_ context.Context, identityID string) (*Session, error) {
	s.mu.RLock()
	stored, ok := s.sessions[identityID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if stored.Expired(time.Now()) {
		s.mu.Lock()
		delete(s.sessions, identityID)
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	copied := stored
	return &copied, nil
}

func (s *memoryStore) Put(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[sess.IdentityID]; ok && existing.Generation > sess.Generation {
		return ErrStaleWrite
	}
	s.sessions[sess.IdentityID] = *sess
	return nil
}

func (s *memoryStore) Delete(_ context.Context, identityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, identityID)
	return nil
}
