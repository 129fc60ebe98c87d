// Package cache provides caching implementations for materialized grant sets.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/xraph/steward"
)

// Compile-time interface check.
var _ steward.Cache = (*Memory)(nil)

// Memory is an in-memory grant cache keyed by principal ID. Entries carry
// no TTL; they live until an invalidation names the principal, or until
// capacity eviction drops them.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	maxSize int
}

type entry struct {
	grants     steward.AccessGrantSet
	computedAt time.Time
}

// MemoryOption configures the memory cache.
type MemoryOption func(*Memory)

// WithMaxSize sets the maximum number of cached principals.
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) { m.maxSize = n }
}

// NewMemory creates a new in-memory grant cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the cached grant set for a principal, if present.
func (m *Memory) Get(_ context.Context, principalID string) (steward.AccessGrantSet, bool) {
	m.mu.RLock()
	e, ok := m.entries[principalID]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return e.grants, true
}

// Set stores a grant set for a principal.
func (m *Memory) Set(_ context.Context, principalID string, grants steward.AccessGrantSet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[principalID]; !ok && len(m.entries) >= m.maxSize {
		m.evictOne()
	}
	m.entries[principalID] = &entry{
		grants:     grants,
		computedAt: time.Now(),
	}
}

// Invalidate drops the cached entries for the named principals. Unknown
// principals are ignored.
func (m *Memory) Invalidate(_ context.Context, principalIDs ...string) {
	if len(principalIDs) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pid := range principalIDs {
		delete(m.entries, pid)
	}
}

// Len returns the number of cached principals.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// ComputedAt reports when a principal's entry was cached.
func (m *Memory) ComputedAt(principalID string) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[principalID]
	if !ok {
		return time.Time{}, false
	}
	return e.computedAt, true
}

// evictOne removes one arbitrary entry. Must hold write lock.
func (m *Memory) evictOne() {
	for k := range m.entries {
		delete(m.entries, k)
		return
	}
}
