package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	metrics "github.com/fairyhunter13/kafka-order-processor/internal/adapter/observability"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
	"github.com/fairyhunter13/kafka-order-processor/internal/observability"
)

// Orchestrator drives the preload, transform, and publish stages for
// one event's batch of orders and records wall-clock timings per stage.
type Orchestrator struct {
	Loader      ContextLoader
	Transformer *Transformer
	Publisher   *Publisher
}

// NewOrchestrator constructs an Orchestrator with its dependencies.
func NewOrchestrator(loader ContextLoader, transformer *Transformer, publisher *Publisher) *Orchestrator {
	return &Orchestrator{Loader: loader, Transformer: transformer, Publisher: publisher}
}

// ProcessOrders runs the three stages in sequence. A preload error is
// fatal; transform failures are collected into the result instead.
// Empty input returns an empty result with zero timings.
func (o *Orchestrator) ProcessOrders(ctx context.Context, orders []domain.Order, useGrouping bool) (domain.ProcessingResult, error) {
	if len(orders) == 0 {
		return domain.ProcessingResult{}, nil
	}
	tracer := otel.Tracer("usecase.orchestrator")
	ctx, span := tracer.Start(ctx, "ProcessOrders")
	defer span.End()
	lg := observability.LoggerFromContext(ctx)

	start := time.Now()
	ids := make([]string, 0, len(orders))
	for _, ord := range orders {
		ids = append(ids, ord.ID)
	}

	preloadStart := time.Now()
	data, err := o.Loader.Preload(ctx, ids)
	if err != nil {
		return domain.ProcessingResult{}, fmt.Errorf("op=orchestrate.preload: %w", err)
	}
	preloadDur := time.Since(preloadStart)
	metrics.ObserveStage("preload", preloadDur)

	processStart := time.Now()
	successes, failures := o.Transformer.ProcessOrders(ctx, orders, data)
	processDur := time.Since(processStart)
	metrics.ObserveStage("processing", processDur)

	publishStart := time.Now()
	stats := o.Publisher.PublishOrders(ctx, successes, useGrouping)
	publishDur := time.Since(publishStart)
	metrics.ObserveStage("publish", publishDur)

	result := domain.ProcessingResult{
		Successes: successes,
		Failures:  failures,
		Timings: domain.StageTimings{
			PreloadMs:    preloadDur.Milliseconds(),
			ProcessingMs: processDur.Milliseconds(),
			PublishMs:    publishDur.Milliseconds(),
			TotalMs:      time.Since(start).Milliseconds(),
		},
	}
	lg.Info("pipeline stages complete",
		slog.Int("orders", len(orders)),
		slog.Int("successes", len(successes)),
		slog.Int("failures", len(failures)),
		slog.Int("published_groups", stats.Grouped),
		slog.Int("published_individual", stats.Individual),
		slog.Int("publish_failures", stats.Failed),
		slog.Int64("preload_ms", result.Timings.PreloadMs),
		slog.Int64("processing_ms", result.Timings.ProcessingMs),
		slog.Int64("publish_ms", result.Timings.PublishMs),
		slog.Int64("total_ms", result.Timings.TotalMs))
	return result, nil
}
