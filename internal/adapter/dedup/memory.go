// Package dedup provides the event idempotency stores behind
// domain.DedupStore: an in-process TTL cache for single-worker
// deployments and a Redis claim for horizontally scaled ones.
package dedup

import (
	"time"

	"github.com/fairyhunter13/kafka-order-processor/internal/cache"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

// Memory claims keys in a bounded in-process TTL cache. A restart
// forgets the window; at-least-once delivery already tolerates the
// resulting re-processing.
type Memory struct {
	seen *cache.Cache[time.Time]
}

// NewMemory builds an in-process store holding up to maxSize scope keys
// for the dedup window.
func NewMemory(maxSize int, window time.Duration) *Memory {
	return &Memory{seen: cache.New[time.Time]("dedup", maxSize, window)}
}

// TryAcquire claims key until the window expires. It cannot fail.
func (m *Memory) TryAcquire(_ domain.Context, key string) (bool, error) {
	return m.seen.PutIfAbsent(key, time.Now()), nil
}

// Cache exposes the backing store for the ops cache registry.
func (m *Memory) Cache() *cache.Cache[time.Time] {
	return m.seen
}
