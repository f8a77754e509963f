// Package memory holds in-process stand-ins used when Redis is not configured.
package memory

import (
	"context"
	"sync"
	"time"
)

type SessionStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewSessionStore keeps revoked tokens in process memory.
func NewSessionStore() *SessionStore {
	return &SessionStore{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke remembers tokenID for ttl.
func (s *SessionStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = s.now().Add(ttl)
	return nil
}

// IsRevoked drops the entry once it has expired.
func (s *SessionStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(until) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// Sweep drops entries whose token has expired.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, until := range s.revoked {
		if !now.Before(until) {
			delete(s.revoked, id)
			n++
		}
	}
	return n
}
