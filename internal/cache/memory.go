// Package cache provides the byte caches injected into metadata lookups.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"mediaarchive/internal/metrics"
)

const (
	defaultMemorySize = 2048
	defaultMemoryTTL  = 24 * time.Hour
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a bounded LRU with a process-wide TTL. A Set with a shorter ttl
// expires that entry earlier.
type Memory struct {
	lru *expirable.LRU[string, memoryEntry]
	ttl time.Duration
	now func() time.Time
}

func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = defaultMemorySize
	}
	if ttl <= 0 {
		ttl = defaultMemoryTTL
	}
	return &Memory{
		lru: expirable.NewLRU[string, memoryEntry](size, nil, ttl),
		ttl: ttl,
		now: time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := m.lru.Get(key)
	if !ok || (!entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt)) {
		if ok {
			m.lru.Remove(key)
		}
		metrics.CacheMissesTotal.WithLabelValues("memory").Inc()
		return nil, false, nil
	}
	metrics.CacheHitsTotal.WithLabelValues("memory").Inc()
	return entry.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 && ttl < m.ttl {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.lru.Add(key, entry)
	return nil
}

func (m *Memory) Len() int { return m.lru.Len() }
