package blacklist

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for single-process deployments and tests.
// Expired entries are dropped lazily on read and in bulk by Sweep.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]time.Time // jti -> expiry instant
	nowF func() time.Time
}

// NewMemoryStore returns an empty in-memory revocation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]time.Time),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Revoke records jti until now+ttl. No-op when ttl <= 0. When two revocations
// race, the later expiry wins so an entry is never shortened below a live
// token's remaining lifetime.
func (s *MemoryStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	expiry := s.nowF().Add(ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.m[jti]; !ok || expiry.After(cur) {
		s.m[jti] = expiry
	}
	return nil
}

// IsRevoked reports whether jti has an unexpired entry.
func (s *MemoryStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	s.mu.RLock()
	expiry, ok := s.m[jti]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !expiry.After(s.nowF()) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Revoke may have extended it.
		if cur, ok := s.m[jti]; ok && !cur.After(s.nowF()) {
			delete(s.m, jti)
		}
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// Sweep removes all expired entries and returns how many were dropped.
// Called periodically by the janitor; correctness does not depend on it.
func (s *MemoryStore) Sweep(ctx context.Context) (int, error) {
	now := s.nowF()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for jti, expiry := range s.m {
		if !expiry.After(now) {
			delete(s.m, jti)
			n++
		}
	}
	return n, nil
}

// Len reports the number of entries currently held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
