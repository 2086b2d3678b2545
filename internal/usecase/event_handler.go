// Package usecase implements the order event pipeline: dedup,
// partner/unit validation, order fetch, reference-data preload,
// concurrent transform, grouping, and downstream publish.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	metrics "github.com/fairyhunter13/kafka-order-processor/internal/adapter/observability"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
	"github.com/fairyhunter13/kafka-order-processor/internal/observability"
)

// EventHandler runs the per-event state machine. A nil return means
// the record may be committed; any error skips the commit so the
// driver redelivers. Duplicates, validation skips, and empty fetches
// all return nil: redelivering them could change nothing.
type EventHandler struct {
	Dedup        domain.DedupStore
	Validator    *Validator
	Source       domain.OrderSource
	Orchestrator *Orchestrator
	DeadLetter   domain.DeadLetterSink

	statusTimeout time.Duration
	updates       sync.WaitGroup
}

// NewEventHandler constructs an EventHandler with its dependencies.
func NewEventHandler(dedup domain.DedupStore, validator *Validator, source domain.OrderSource, orchestrator *Orchestrator, deadLetter domain.DeadLetterSink) *EventHandler {
	return &EventHandler{
		Dedup:         dedup,
		Validator:     validator,
		Source:        source,
		Orchestrator:  orchestrator,
		DeadLetter:    deadLetter,
		statusTimeout: 10 * time.Second,
	}
}

// HandleEvent processes one parsed order event end to end.
func (h *EventHandler) HandleEvent(ctx context.Context, ev domain.OrderEvent) error {
	lg := observability.LoggerFromContext(ctx).With(
		slog.String("event_id", ev.EventID),
		slog.String("event_type", ev.EventType),
		slog.String("partner", ev.TradingPartnerName),
		slog.String("unit", ev.BusinessUnitName),
	)
	ctx = observability.ContextWithLogger(ctx, lg)
	ctx = observability.ContextWithEventID(ctx, ev.EventID)
	metrics.ConsumeEvent(ev.EventType)

	owned, err := h.Dedup.TryAcquire(ctx, ev.DedupKey())
	if err != nil {
		metrics.FailEvent(domain.FailureCode(err))
		return fmt.Errorf("op=handle.dedup: %w", err)
	}
	if !owned {
		lg.Info("duplicate event suppressed", slog.String("dedup_key", ev.DedupKey()))
		metrics.DuplicateEvent()
		return nil
	}

	verdict, err := h.Validator.ValidateEvent(ctx, ev)
	if err != nil {
		metrics.FailEvent(domain.FailureCode(err))
		return fmt.Errorf("op=handle.validate: %w", err)
	}
	if !verdict.Process {
		lg.Warn("event skipped", slog.String("reason", verdict.SkipReason))
		metrics.SkipEvent()
		return nil
	}

	orders, err := h.Source.FetchOrdersForEvent(ctx, ev)
	if err != nil {
		metrics.FailEvent(domain.FailureCode(err))
		return fmt.Errorf("op=handle.fetch: %w", err)
	}
	if len(orders) == 0 {
		lg.Info("no pending orders for event")
		metrics.CompleteEvent()
		return nil
	}
	lg.Info("orders fetched", slog.Int("count", len(orders)))

	result, err := h.Orchestrator.ProcessOrders(ctx, orders, ev.RequiresGrouping())
	if err != nil {
		metrics.FailEvent(domain.FailureCode(err))
		return fmt.Errorf("op=handle.orchestrate: %w", err)
	}

	if len(result.Failures) > 0 {
		if err := h.DeadLetter.SendFailedOrders(ctx, ev, result.Failures); err != nil {
			metrics.FailEvent(domain.FailureCode(err))
			return fmt.Errorf("op=handle.dead_letter: %w", err)
		}
	}

	h.markProcessing(ctx, result.SuccessIDs())

	lg.Info("event completed",
		slog.Int("successes", len(result.Successes)),
		slog.Int("failures", len(result.Failures)),
		slog.Int64("total_ms", result.Timings.TotalMs))
	metrics.CompleteEvent()
	return nil
}

// markProcessing flips successful orders to PROCESSING off the
// critical path. The commit never waits on it; Drain flushes in-flight
// updates during shutdown.
func (h *EventHandler) markProcessing(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	lg := observability.LoggerFromContext(ctx)
	bg := context.WithoutCancel(ctx)
	h.updates.Add(1)
	go func() {
		defer h.updates.Done()
		ctx, cancel := context.WithTimeout(bg, h.statusTimeout)
		defer cancel()
		if err := h.Source.BatchUpdateStatus(ctx, ids, domain.OrderStatusProcessing); err != nil {
			lg.Warn("order status update failed",
				slog.Int("orders", len(ids)),
				slog.Any("error", err))
		}
	}()
}

// Drain waits for in-flight status updates to finish.
func (h *EventHandler) Drain() {
	h.updates.Wait()
}
