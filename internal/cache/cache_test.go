package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_Expired(t *testing.T) {
	tests := []struct {
		name      string
		timestamp time.Time
		ttl       time.Duration
		expected  bool
	}{
		{
			name:      "not expired",
			timestamp: time.Now(),
			ttl:       5 * time.Minute,
			expected:  false,
		},
		{
			name:      "expired",
			timestamp: time.Now().Add(-10 * time.Minute),
			ttl:       5 * time.Minute,
			expected:  true,
		},
		{
			name:      "just expired",
			timestamp: time.Now().Add(-6 * time.Minute),
			ttl:       5 * time.Minute,
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &entry[string]{
				Value:     "v",
				Timestamp: tt.timestamp,
				TTL:       tt.ttl,
			}
			assert.Equal(t, tt.expected, e.expired())
		})
	}
}

func TestNew(t *testing.T) {
	c := New[string]("partners", 100, 5*time.Minute)
	require.NotNil(t, c)
	assert.Equal(t, "partners", c.Name())
	assert.Equal(t, 100, c.maxSize)
	assert.Equal(t, 5*time.Minute, c.defaultTTL)
	assert.NotNil(t, c.entries)
}

func TestCache_SetAndGet(t *testing.T) {
	c := New[string]("data", 100, 5*time.Minute)

	c.Set("order-1", "payload")

	v, found := c.Get("order-1")
	assert.True(t, found)
	assert.Equal(t, "payload", v)

	v, found = c.Get("order-2")
	assert.False(t, found)
	assert.Empty(t, v)
}

func TestCache_GetMiss(t *testing.T) {
	c := New[int]("data", 100, 5*time.Minute)

	_, found := c.Get("missing")
	assert.False(t, found)

	stats := c.GetStats()
	assert.Equal(t, int64(1), stats["miss_count"])
}

func TestCache_GetExpired(t *testing.T) {
	c := New[string]("data", 100, 1*time.Millisecond)

	c.Set("k", "v")
	time.Sleep(5 * time.Millisecond)

	v, found := c.Get("k")
	assert.False(t, found)
	assert.Empty(t, v)
	// The expired entry is dropped on access.
	assert.Equal(t, 0, c.Len())
}

func TestCache_PutIfAbsent(t *testing.T) {
	c := New[string]("dedup", 100, 5*time.Minute)

	ok := c.PutIfAbsent("ACME::west", "claimed")
	assert.True(t, ok)

	// Second claim on the same key loses.
	ok = c.PutIfAbsent("ACME::west", "claimed-again")
	assert.False(t, ok)

	// The first value is preserved.
	v, found := c.Get("ACME::west")
	assert.True(t, found)
	assert.Equal(t, "claimed", v)
}

func TestCache_PutIfAbsent_ExpiredEntryIsAbsent(t *testing.T) {
	c := New[string]("dedup", 100, 1*time.Millisecond)

	require.True(t, c.PutIfAbsent("k", "first"))
	time.Sleep(5 * time.Millisecond)

	// An expired claim does not block a new one.
	assert.True(t, c.PutIfAbsent("k", "second"))
}

func TestCache_Eviction(t *testing.T) {
	c := New[string]("data", 3, 5*time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	// Bump access counts so "b" stays least used.
	c.Get("a")
	c.Get("a")
	c.Get("c")

	c.Set("d", "4")

	_, found := c.Get("b")
	assert.False(t, found)

	_, found = c.Get("a")
	assert.True(t, found)
	_, found = c.Get("c")
	assert.True(t, found)
	_, found = c.Get("d")
	assert.True(t, found)

	stats := c.GetStats()
	assert.Equal(t, int64(1), stats["evictions"])
}

func TestCache_Invalidate(t *testing.T) {
	c := New[string]("partners", 100, 5*time.Minute)

	c.Set("ACME", "ACTIVE")
	c.Invalidate("ACME")

	_, found := c.Get("ACME")
	assert.False(t, found)

	// Invalidating a missing key is a no-op.
	c.Invalidate("missing")
}

func TestCache_Cleanup(t *testing.T) {
	c := New[string]("data", 100, 1*time.Millisecond)

	c.Set("old-1", "v")
	c.Set("old-2", "v")
	time.Sleep(5 * time.Millisecond)

	c.mu.Lock()
	c.entries["fresh"] = &entry[string]{Value: "v", Timestamp: time.Now(), AccessCount: 1, TTL: 5 * time.Minute}
	c.mu.Unlock()

	c.Cleanup()

	stats := c.GetStats()
	assert.Equal(t, 1, stats["cache_size"])

	_, found := c.Get("fresh")
	assert.True(t, found)
}

func TestCache_GetStats(t *testing.T) {
	c := New[string]("data", 100, 5*time.Minute)

	stats := c.GetStats()
	assert.Equal(t, 0, stats["cache_size"])
	assert.Equal(t, 100, stats["max_size"])
	assert.Equal(t, int64(0), stats["hit_count"])
	assert.Equal(t, int64(0), stats["miss_count"])
	assert.Equal(t, 0.0, stats["hit_rate"])

	c.Set("k", "v")
	c.Get("k")       // hit
	c.Get("missing") // miss

	stats = c.GetStats()
	assert.Equal(t, 1, stats["cache_size"])
	assert.Equal(t, int64(1), stats["hit_count"])
	assert.Equal(t, int64(1), stats["miss_count"])
	assert.Equal(t, 0.5, stats["hit_rate"])
	assert.Equal(t, int64(1), c.Hits())
	assert.Equal(t, int64(1), c.Misses())
}

func TestCache_Clear(t *testing.T) {
	c := New[string]("data", 100, 5*time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Get("missing")

	c.Clear()

	stats := c.GetStats()
	assert.Equal(t, 0, stats["cache_size"])
	assert.Equal(t, int64(0), stats["hit_count"])
	assert.Equal(t, int64(0), stats["miss_count"])

	_, found := c.Get("a")
	assert.False(t, found)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[string]("data", 1000, 5*time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("key-%d-%d", id, j)
				c.Set(key, "v")
				c.PutIfAbsent(key, "w")
			}
		}(i)
	}

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("key-%d-%d", id, j)
				c.Get(key)
				c.Get("nonexistent")
			}
		}(i)
	}

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = c.GetStats()
			}
		}()
	}

	wg.Wait()

	c.Cleanup()
	c.Clear()
}

func TestCache_AccessCountTracking(t *testing.T) {
	c := New[string]("data", 100, 5*time.Minute)

	c.Set("k", "v")
	for i := 0; i < 5; i++ {
		c.Get("k")
	}

	c.mu.RLock()
	e := c.entries["k"]
	c.mu.RUnlock()

	// Initial set count (1) + 5 gets = 6.
	assert.Equal(t, 6, e.AccessCount)
}

func TestCache_StoreInterface(t *testing.T) {
	// Caches of different value types share the ops-facing view.
	var stores []Store
	stores = append(stores, New[string]("a", 10, time.Minute))
	stores = append(stores, New[int]("b", 10, time.Minute))

	for _, s := range stores {
		assert.NotEmpty(t, s.Name())
		assert.NotNil(t, s.GetStats())
	}
}
