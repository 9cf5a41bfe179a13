// Package cache holds the payslip cache implementations.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

// DefaultTTL is how long a payslip stays cached after insertion.
const DefaultTTL = 2 * time.Hour

type memoryEntry struct {
	slip      payroll.PaySlip
	expiresAt time.Time
}

// Memory is an in-process payslip cache. Expired entries are never served;
// EvictExpired reclaims their memory.
type Memory struct {
	mu      sync.RWMutex
	entries map[payroll.CacheKey]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		entries: make(map[payroll.CacheKey]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Get(ctx context.Context, key payroll.CacheKey) (payroll.PaySlip, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !m.now().Before(entry.expiresAt) {
		return payroll.PaySlip{}, false, nil
	}
	return entry.slip.Clone(), true, nil
}

func (m *Memory) Put(ctx context.Context, key payroll.CacheKey, slip payroll.PaySlip) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{slip: slip.Clone(), expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Invalidate(ctx context.Context, key payroll.CacheKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// EvictExpired removes every expired entry and returns how many were removed.
func (m *Memory) EvictExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	evicted := 0
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			evicted++
		}
	}
	return evicted
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
