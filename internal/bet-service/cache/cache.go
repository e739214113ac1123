// Package cache holds the TTL key-value layer and the read-through
// coordinator over the aggregation engine. The cache is a derived,
// disposable view: it can be flushed entirely at any time with only a
// performance impact.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is the key-addressed TTL store. Redis backs production; Memory
// backs tests.
type Cache interface {
	// Get returns the raw entry and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores an entry with its TTL.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error

	// DeleteByPrefix drops every key in a family.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Memory is a map-backed Cache for tests.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	val       []byte
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memEntry)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.val, true, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memEntry{val: val, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *Memory) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(m.entries, k)
		}
	}
	return nil
}

// Len is a test helper.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
