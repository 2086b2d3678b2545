package dedup

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

const redisKeyPrefix = "dedup:"

// Redis claims keys with SET NX so every worker in the group agrees on
// a single owner per scope. Store errors surface to the caller, which
// skips the commit and lets the record redeliver.
type Redis struct {
	client *redis.Client
	window time.Duration
}

// NewRedis wraps an existing client. The window is the TTL each claim
// lives for.
func NewRedis(client *redis.Client, window time.Duration) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("dedup: redis client is required")
	}
	if window <= 0 {
		return nil, fmt.Errorf("dedup: window must be positive, got %s", window)
	}
	return &Redis{client: client, window: window}, nil
}

// TryAcquire claims key for the window. The stored value is the claim
// time, useful when inspecting keys by hand.
func (r *Redis) TryAcquire(ctx domain.Context, key string) (bool, error) {
	claimed, err := r.client.SetNX(ctx, redisKeyPrefix+key, time.Now().UTC().Format(time.RFC3339Nano), r.window).Result()
	if err != nil {
		return false, fmt.Errorf("op=dedup.try_acquire: %w", err)
	}
	return claimed, nil
}
