// Package revocation remembers bearer tokens that were explicitly logged out
// before their natural expiry.
package revocation

import (
	"context"
	"sync"
	"time"
)

// Store records revoked token ids until the token would have expired anyway.
type Store interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

var now = time.Now

// MemoryStore is a process-local Store. Entries are dropped lazily once expired.
type MemoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{revoked: make(map[string]time.Time)}
}

func (s *MemoryStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := now()
	for id, exp := range s.revoked {
		if !exp.After(t) {
			delete(s.revoked, id)
		}
	}
	if until.After(t) {
		s.revoked[tokenID] = until
	}
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !exp.After(now()) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
