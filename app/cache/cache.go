// Package cache provides the process-wide key/value store shared by the
// readings pipeline. Keys are namespaced by the component that owns them.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Store is the cache abstraction handed to each component.
type Store interface {
	// Get returns the value for key, or false when it is absent or expired.
	Get(key string) (any, bool)

	// Set stores value under key for ttl. A ttl of zero never expires.
	Set(key string, value any, ttl time.Duration)

	// Delete removes key and reports whether it was present.
	Delete(key string) bool

	// DeletePrefix removes every key starting with prefix and returns the count.
	DeletePrefix(prefix string) int

	// Flush removes all entries.
	Flush()

	Len() int
	Stats() Stats
}

// Stats contains cache statistics.
type Stats struct {
	Hits    int64
	Misses  int64
	Expired int64
	Size    int
}

type entry struct {
	value     any
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is a mutex-guarded in-memory Store with last-writer-wins semantics.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	stats   Stats
	now     func() time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// WithClock replaces the time source, mostly for tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

func (m *Memory) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		m.stats.Misses++
		return nil, false
	}

	if e.expired(m.now()) {
		delete(m.entries, key)
		m.stats.Expired++
		m.stats.Misses++
		return nil, false
	}

	m.stats.Hits++
	return e.value, true
}

func (m *Memory) Set(key string, value any, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
}

func (m *Memory) Delete(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.entries[key]
	delete(m.entries, key)
	return ok
}

func (m *Memory) DeletePrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

func (m *Memory) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.stats
	stats.Size = len(m.entries)
	return stats
}

// Lookup fetches key and asserts it to T. A value of another type counts as a miss.
func Lookup[T any](s Store, key string) (T, bool) {
	var zero T

	v, ok := s.Get(key)
	if !ok {
		return zero, false
	}

	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
