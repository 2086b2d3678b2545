package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/fairyhunter13/kafka-order-processor/internal/adapter/observability"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

// maxBackoff caps the total sleep between attempts.
const maxBackoff = 60 * time.Second

// jitterCeiling bounds the random component of the backoff.
const jitterCeiling = time.Second

// partition splits ids into chunks of at most size elements, preserving
// order. Each id lands in exactly one chunk.
func partition(ids []string, size int) [][]string {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[i:end])
	}
	return chunks
}

// backoffDelay returns the sleep before the next attempt after failed
// attempt n (1-based): base*2^(n-1) plus uniform jitter below
// min(jitterCeiling, base*2^(n-1)), capped at maxBackoff.
func backoffDelay(attempt int, base time.Duration) time.Duration {
	delay := base * time.Duration(1<<uint(attempt-1))
	bound := jitterCeiling
	if delay < bound {
		bound = delay
	}
	var jitter time.Duration
	if bound > 0 {
		jitter = time.Duration(rand.Int63n(int64(bound))) //nolint:gosec // jitter only
	}
	total := delay + jitter
	if total > maxBackoff {
		total = maxBackoff
	}
	return total
}

// withRetry runs fn up to maxRetries+1 times, sleeping with exponential
// backoff and jitter between attempts. Context cancellation aborts the
// wait and propagates. The returned error wraps ErrRetryExhausted once
// all attempts fail.
func (r *ReferenceRepo) withRetry(ctx context.Context, op string, fn func() error) error {
	totalAttempts := r.maxRetries + 1
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt > r.maxRetries {
			slog.Error("operation failed after retries",
				slog.String("op", op),
				slog.Int("attempts", attempt),
				slog.Any("error", err))
			return fmt.Errorf("op=%s: %w: %v", op, domain.ErrRetryExhausted, err)
		}

		delay := backoffDelay(attempt, r.retryDelay)
		observability.DBRetriesTotal.WithLabelValues(op).Inc()
		slog.Warn("operation failed, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Int("total_attempts", totalAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("op=%s: %w", op, ctx.Err())
		case <-timer.C:
		}
	}
}
