package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"

	metrics "github.com/fairyhunter13/kafka-order-processor/internal/adapter/observability"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
	"github.com/fairyhunter13/kafka-order-processor/internal/observability"
)

// Outbound wire shapes. Timestamps marshal as RFC 3339, decimals as
// quoted strings.
type orderMessage struct {
	OrderID           string          `json:"orderId"`
	CustomerID        string          `json:"customerId"`
	CustomerName      string          `json:"customerName"`
	CustomerTier      string          `json:"customerTier"`
	FinalPrice        decimal.Decimal `json:"finalPrice"`
	WarehouseLocation string          `json:"warehouseLocation"`
	Status            string          `json:"status"`
	ProcessedAt       time.Time       `json:"processedAt"`
	ProcessedBy       string          `json:"processedBy"`
}

type groupMessage struct {
	GroupID     string          `json:"groupId"`
	GroupingKey string          `json:"groupingKey"`
	GroupType   string          `json:"groupType"`
	Orders      []orderMessage  `json:"orders"`
	OrderCount  int             `json:"orderCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	GroupedAt   time.Time       `json:"groupedAt"`
	GroupedBy   string          `json:"groupedBy"`
}

func toOrderMessage(po domain.ProcessedOrder) orderMessage {
	return orderMessage{
		OrderID:           po.OrderID,
		CustomerID:        po.CustomerID,
		CustomerName:      po.CustomerName,
		CustomerTier:      po.CustomerTier,
		FinalPrice:        po.FinalPrice,
		WarehouseLocation: po.WarehouseLocation,
		Status:            po.Status,
		ProcessedAt:       po.ProcessedAt,
		ProcessedBy:       po.ProcessedBy,
	}
}

func toGroupMessage(g domain.GroupedMessage) groupMessage {
	orders := make([]orderMessage, 0, len(g.Orders))
	for _, o := range g.Orders {
		orders = append(orders, toOrderMessage(o))
	}
	return groupMessage{
		GroupID:     g.GroupID,
		GroupingKey: g.GroupingKey,
		GroupType:   g.GroupType,
		Orders:      orders,
		OrderCount:  g.OrderCount,
		TotalAmount: g.TotalAmount,
		GroupedAt:   g.GroupedAt,
		GroupedBy:   g.GroupedByID,
	}
}

// PublishStats counts one batch's outbound sends.
type PublishStats struct {
	Grouped    int
	Individual int
	Failed     int
}

// Publisher serializes processed orders and fans them out to the
// downstream queue under the publish semaphore. Send failures are
// counted and logged; they never fail the batch.
type Publisher struct {
	Queue   domain.QueuePublisher
	Grouper *Grouper
	sem     *semaphore.Weighted
}

// NewPublisher constructs a Publisher with its own permit pool.
func NewPublisher(queue domain.QueuePublisher, grouper *Grouper, concurrency int) *Publisher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Publisher{
		Queue:   queue,
		Grouper: grouper,
		sem:     semaphore.NewWeighted(int64(concurrency)),
	}
}

// PublishOrders sends one message per grouped message or individual
// order and waits for all sends. Grouped-type events route through the
// Grouper; everything else goes out individually. Empty input is a
// no-op that takes no permits.
func (p *Publisher) PublishOrders(ctx context.Context, orders []domain.ProcessedOrder, useGrouping bool) PublishStats {
	if len(orders) == 0 {
		return PublishStats{}
	}
	split := GroupingResult{Individual: orders}
	if useGrouping {
		split = p.Grouper.Group(orders)
	}

	lg := observability.LoggerFromContext(ctx)
	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	for _, grp := range split.Grouped {
		wg.Add(1)
		go func(msg domain.GroupedMessage) {
			defer wg.Done()
			if !p.send(ctx, lg, msg.GroupID, toGroupMessage(msg), "grouped") {
				failed.Add(1)
			}
		}(grp)
	}
	for _, ord := range split.Individual {
		wg.Add(1)
		go func(po domain.ProcessedOrder) {
			defer wg.Done()
			if !p.send(ctx, lg, po.OrderID, toOrderMessage(po), "individual") {
				failed.Add(1)
			}
		}(ord)
	}
	wg.Wait()

	stats := PublishStats{
		Grouped:    len(split.Grouped),
		Individual: len(split.Individual),
		Failed:     int(failed.Load()),
	}
	lg.Info("publish complete",
		slog.Int("grouped", stats.Grouped),
		slog.Int("individual", stats.Individual),
		slog.Int("failed", stats.Failed))
	return stats
}

func (p *Publisher) send(ctx context.Context, lg *slog.Logger, key string, msg any, shape string) bool {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		lg.Error("publish canceled",
			slog.String("key", key),
			slog.String("shape", shape),
			slog.Any("error", err))
		metrics.PublishOutcome(shape, false)
		return false
	}
	defer p.sem.Release(1)

	payload, err := json.Marshal(msg)
	if err != nil {
		lg.Error("marshal outbound message",
			slog.String("key", key),
			slog.String("shape", shape),
			slog.Any("error", err))
		metrics.PublishOutcome(shape, false)
		return false
	}
	if err := p.Queue.Publish(ctx, key, payload); err != nil {
		lg.Error("publish failed",
			slog.String("key", key),
			slog.String("shape", shape),
			slog.Any("error", err))
		metrics.PublishOutcome(shape, false)
		return false
	}
	metrics.PublishOutcome(shape, true)
	return true
}
