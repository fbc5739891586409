package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"creativesync/internal/models"
)

// MemoryCache implements Service with in-process table storage. It is the
// fallback backend for single-instance deployments without redis.
type MemoryCache struct {
	tables map[string]*tableEntry
	mutex  sync.RWMutex
}

// tableEntry is one cached lookup table with its expiration
type tableEntry struct {
	table     map[string]int64
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory table cache
func NewMemoryCache() Service {
	return newMemoryCache()
}

// newMemoryCache creates the concrete implementation
func newMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		tables: make(map[string]*tableEntry),
	}

	// Start cleanup routine
	go cache.cleanupExpired()

	return cache
}

// GetTable returns a copy of the cached table for the given key
func (m *MemoryCache) GetTable(ctx context.Context, key string) (map[string]int64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	entry, exists := m.tables[key]
	if !exists {
		return nil, models.ErrCacheUnavailable
	}

	// Expired entries are left for the background routine to collect
	if time.Now().After(entry.expiresAt) {
		return nil, models.ErrCacheUnavailable
	}

	return copyTable(entry.table), nil
}

// SetTable stores a copy of the table under the given key with the specified TTL
func (m *MemoryCache) SetTable(ctx context.Context, key string, table map[string]int64, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("TTL must be positive, got: %v", ttl)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.tables[key] = &tableEntry{
		table:     copyTable(table),
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a table from the cache
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.tables, key)
	return nil
}

// cleanupExpired removes expired tables from the cache
func (m *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		m.mutex.Lock()
		for key, entry := range m.tables {
			if now.After(entry.expiresAt) {
				delete(m.tables, key)
			}
		}
		m.mutex.Unlock()
	}
}

// Size returns the current number of cached tables (for monitoring)
func (m *MemoryCache) Size() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.tables)
}

// copyTable prevents callers from mutating a table shared with the cache
func copyTable(table map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(table))
	for name, id := range table {
		out[name] = id
	}
	return out
}
