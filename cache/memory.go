package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is the process-local fallback used when REDIS_ADDR is not
// configured, and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

func (s *MemoryStore) Set(key string, value string, ttl time.Duration) {
	s.mu.Lock()
	s.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
}

func (s *MemoryStore) Delete(keys ...string) {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	s.mu.Unlock()
}
