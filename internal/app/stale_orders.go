package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

// StaleOrderReclaimer is the port the sweeper drives. The document
// store implements it.
type StaleOrderReclaimer interface {
	ReclaimStale(ctx domain.Context, olderThan time.Duration) (int64, error)
}

// StaleOrderSweeper periodically flips orders stuck in PROCESSING back
// to PENDING so claims left behind by crashed workers get re-processed.
type StaleOrderSweeper struct {
	orders   StaleOrderReclaimer
	maxAge   time.Duration
	interval time.Duration
}

// NewStaleOrderSweeper builds the sweeper. A nil reclaimer yields a nil
// sweeper whose Run is a no-op, so callers can wire it unconditionally.
func NewStaleOrderSweeper(orders StaleOrderReclaimer, maxAge, interval time.Duration) *StaleOrderSweeper {
	if orders == nil {
		return nil
	}
	if maxAge <= 0 {
		maxAge = 10 * time.Minute
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &StaleOrderSweeper{
		orders:   orders,
		maxAge:   maxAge,
		interval: interval,
	}
}

// Run sweeps once immediately and then on every tick until ctx ends.
func (s *StaleOrderSweeper) Run(ctx context.Context) {
	if s == nil || s.orders == nil {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("stale order sweeper stopping")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *StaleOrderSweeper) sweepOnce(ctx context.Context) {
	tracer := otel.Tracer("orders.sweeper")
	ctx, span := tracer.Start(ctx, "StaleOrderSweeper.sweepOnce")
	defer span.End()
	span.SetAttributes(attribute.Float64("orders.max_processing_age_seconds", s.maxAge.Seconds()))

	reclaimed, err := s.orders.ReclaimStale(ctx, s.maxAge)
	if err != nil {
		span.RecordError(err)
		slog.Error("stale order sweep failed", slog.Any("error", err))
		return
	}
	span.SetAttributes(attribute.Int64("orders.reclaimed", reclaimed))
	if reclaimed > 0 {
		slog.Info("reclaimed stale orders", slog.Int64("count", reclaimed))
	}
}
