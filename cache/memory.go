// Package cache provides caching implementations for compiled business
// rule programs.
package cache

import (
	"sync"
	"time"

	"github.com/expr-lang/expr/vm"

	"github.com/xraph/azguard"
)

// Compile-time interface check.
var _ azguard.RuleCache = (*Memory)(nil)

// Memory is an in-memory program cache with TTL-based expiration.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
}

type entry struct {
	program   *vm.Program
	expiresAt time.Time
}

// MemoryOption configures the memory cache.
type MemoryOption func(*Memory)

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) { m.ttl = ttl }
}

// WithMaxSize sets the maximum number of cache entries.
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) { m.maxSize = n }
}

// NewMemory creates a new in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		ttl:     5 * time.Minute,
		maxSize: 1000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the compiled program for a rule.
func (m *Memory) Get(rule string) (*vm.Program, bool) {
	m.mu.RLock()
	e, ok := m.entries[rule]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, rule)
		m.mu.Unlock()
		return nil, false
	}
	return e.program, true
}

// Set stores a compiled program.
func (m *Memory) Set(rule string, program *vm.Program) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[rule]; !exists && len(m.entries) >= m.maxSize {
		m.evictExpired()
		if len(m.entries) >= m.maxSize {
			m.evictOne()
		}
	}

	m.entries[rule] = &entry{
		program:   program,
		expiresAt: time.Now().Add(m.ttl),
	}
}

// Purge drops every cached program.
func (m *Memory) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
}

// Len returns the number of cached programs, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// evictExpired removes all expired entries. Must hold write lock.
func (m *Memory) evictExpired() {
	now := time.Now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// evictOne removes the entry closest to expiry. Must hold write lock.
func (m *Memory) evictOne() {
	var oldest string
	var oldestAt time.Time
	for k, e := range m.entries {
		if oldest == "" || e.expiresAt.Before(oldestAt) {
			oldest, oldestAt = k, e.expiresAt
		}
	}
	delete(m.entries, oldest)
}
