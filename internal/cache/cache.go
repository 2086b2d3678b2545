// Package cache provides the bounded TTL caches shared across the
// pipeline: reference data, partner/unit validation, and event dedup.
package cache

import (
	"context"
	"sync"
	"time"

	"log/slog"
)

type entry[V any] struct {
	Value       V
	Timestamp   time.Time
	AccessCount int
	TTL         time.Duration
}

func (e *entry[V]) expired() bool {
	return time.Since(e.Timestamp) > e.TTL
}

// Cache is a concurrency-safe string-keyed store with a per-entry TTL
// from insertion, size-based eviction of the least-used entry, and
// hit/miss accounting. All caches in the process are instances of this
// type; they are injected, never global.
type Cache[V any] struct {
	mu         sync.RWMutex
	name       string
	entries    map[string]*entry[V]
	maxSize    int
	defaultTTL time.Duration
	hitCount   int64
	missCount  int64
	evictions  int64
}

// New creates a bounded TTL cache. The name appears in logs and stats.
func New[V any](name string, maxSize int, defaultTTL time.Duration) *Cache[V] {
	return &Cache[V]{
		name:       name,
		entries:    make(map[string]*entry[V]),
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
	}
}

// Get returns the live value for key. Expired entries count as misses
// and are dropped on access.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		c.missCount++
		c.mu.Unlock()
		return zero, false
	}

	if e.expired() {
		c.mu.Lock()
		delete(c.entries, key)
		c.missCount++
		c.mu.Unlock()
		return zero, false
	}

	c.mu.Lock()
	e.AccessCount++
	c.hitCount++
	c.mu.Unlock()
	return e.Value, true
}

// Set stores value under key with the default TTL, evicting the least
// used entry when the cache is full.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(key, value)
}

// PutIfAbsent atomically stores value only when key has no live entry.
// Returns true when the store happened; false means the key was already
// claimed. Expired entries count as absent.
func (c *Cache[V]) PutIfAbsent(key string, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && !e.expired() {
		c.missCount++
		return false
	}
	c.put(key, value)
	return true
}

// put stores under an already-held write lock.
func (c *Cache[V]) put(key string, value V) {
	if len(c.entries) >= c.maxSize {
		c.evictLeastUsed()
	}
	c.entries[key] = &entry[V]{
		Value:       value,
		Timestamp:   time.Now(),
		AccessCount: 1,
		TTL:         c.defaultTTL,
	}
}

// evictLeastUsed removes the entry with the lowest access count,
// breaking ties by age. Caller holds the write lock.
func (c *Cache[V]) evictLeastUsed() {
	if len(c.entries) == 0 {
		return
	}

	var oldestKey string
	var oldestTime time.Time
	var lowestAccessCount int

	for key, e := range c.entries {
		if oldestKey == "" ||
			e.AccessCount < lowestAccessCount ||
			(e.AccessCount == lowestAccessCount && e.Timestamp.Before(oldestTime)) {
			oldestKey = key
			oldestTime = e.Timestamp
			lowestAccessCount = e.AccessCount
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.evictions++
		slog.Debug("evicted least used cache entry",
			slog.String("cache", c.name),
			slog.Int("access_count", lowestAccessCount),
			slog.Duration("age", time.Since(oldestTime)))
	}
}

// Invalidate drops one key.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Cleanup removes expired entries.
func (c *Cache[V]) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	expired := make([]string, 0)
	for key, e := range c.entries {
		if e.expired() {
			expired = append(expired, key)
		}
	}
	for _, key := range expired {
		delete(c.entries, key)
	}

	if len(expired) > 0 {
		slog.Debug("cleaned up expired cache entries",
			slog.String("cache", c.name),
			slog.Int("count", len(expired)))
	}
}

// Janitor runs Cleanup on an interval until the context ends.
func (c *Cache[V]) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

// Len returns the number of stored entries, including not-yet-collected
// expired ones.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Name returns the cache's registry name.
func (c *Cache[V]) Name() string { return c.name }

// GetStats returns cache statistics.
func (c *Cache[V]) GetStats() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hitCount + c.missCount
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hitCount) / float64(total)
	}
	return map[string]any{
		"cache_size":     len(c.entries),
		"max_size":       c.maxSize,
		"hit_count":      c.hitCount,
		"miss_count":     c.missCount,
		"evictions":      c.evictions,
		"total_requests": total,
		"hit_rate":       hitRate,
		"default_ttl":    c.defaultTTL.String(),
	}
}

// Hits returns the hit counter.
func (c *Cache[V]) Hits() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hitCount
}

// Misses returns the miss counter.
func (c *Cache[V]) Misses() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.missCount
}

// Clear removes all entries and resets counters.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry[V])
	c.hitCount = 0
	c.missCount = 0
	c.evictions = 0

	slog.Info("cache cleared", slog.String("cache", c.name))
}

// Store is the type-erased view the ops surface and the metrics
// reporter use over caches of any value type.
type Store interface {
	Name() string
	GetStats() map[string]any
	Len() int
	Hits() int64
	Misses() int64
	Cleanup()
	Janitor(ctx context.Context, interval time.Duration)
	Clear()
}
