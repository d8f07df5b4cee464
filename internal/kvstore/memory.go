package kvstore

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value     string
	expiresAt time.Time // zero for durable entries
}

// MemoryStore is an in-process Store. It backs the API when Redis is
// unavailable and the tests always.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]memEntry{}, now: time.Now}
}

func memKey(scope Scope, key string) string {
	if scope == ScopeSession {
		return "session:" + key
	}
	return "durable:" + key
}

func (s *MemoryStore) Get(_ context.Context, scope Scope, key string) (string, error) {
	s.mu.RLock()
	e, ok := s.entries[memKey(scope, key)]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, memKey(scope, key))
		s.mu.Unlock()
		return "", ErrNotFound
	}
	return e.value, nil
}

func (s *MemoryStore) Set(_ context.Context, scope Scope, key, value string) error {
	e := memEntry{value: value}
	if scope == ScopeSession {
		e.expiresAt = s.now().Add(SessionTTL)
	}
	s.mu.Lock()
	s.entries[memKey(scope, key)] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, scope Scope, key string) error {
	s.mu.Lock()
	delete(s.entries, memKey(scope, key))
	s.mu.Unlock()
	return nil
}
