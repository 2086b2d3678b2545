// Package mongodb provides the document-store order source.
//
// Orders land in MongoDB ahead of processing; the pipeline queries them
// by the scope carried on the consumed event and writes status
// transitions back after publishing.
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

// OrderDocument is the BSON shape of one order. Field names follow the
// producing system's camelCase convention.
type OrderDocument struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty"`
	OrderID            string               `bson:"orderId"`
	CustomerID         string               `bson:"customerId"`
	TradingPartnerName string               `bson:"tradingPartnerName,omitempty"`
	BusinessUnitName   string               `bson:"businessUnitName,omitempty"`
	Status             string               `bson:"status"`
	Amount             primitive.Decimal128 `bson:"amount"`
	CreatedAt          time.Time            `bson:"createdAt,omitempty"`
	UpdatedAt          time.Time            `bson:"updatedAt,omitempty"`
	Items              []OrderItemDocument  `bson:"items,omitempty"`
}

// OrderItemDocument is one line item inside an order document.
type OrderItemDocument struct {
	SKU      string               `bson:"sku"`
	Quantity int                  `bson:"quantity"`
	Price    primitive.Decimal128 `bson:"price"`
}

// toOrder converts the document into the processing model. A missing
// createdAt falls back to the current time.
func (d OrderDocument) toOrder() domain.Order {
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return domain.Order{
		ID:         d.OrderID,
		CustomerID: d.CustomerID,
		Status:     d.Status,
		Amount:     decimalFrom128(d.Amount),
		CreatedAt:  createdAt,
	}
}

// decimalFrom128 converts a BSON Decimal128 into the fixed-precision
// amount type. Unparseable values become zero.
func decimalFrom128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// decimal128From converts an amount into BSON Decimal128.
func decimal128From(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}
	}
	return v
}

// OrdersRepo fetches and updates order documents.
type OrdersRepo struct {
	col               *mongo.Collection
	fetchPendingLimit int64
}

// NewOrdersRepo constructs the repo on the "orders" collection and
// ensures its indexes. fetchPendingLimit bounds the scope-less fallback
// query.
func NewOrdersRepo(client *mongo.Client, dbName string, fetchPendingLimit int) *OrdersRepo {
	col := client.Database(dbName).Collection("orders")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Index creation is idempotent; an error here only costs query speed.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "tradingPartnerName", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "businessUnitName", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "customerId", Value: 1}}},
	})

	if fetchPendingLimit <= 0 {
		fetchPendingLimit = 100
	}
	return &OrdersRepo{col: col, fetchPendingLimit: int64(fetchPendingLimit)}
}

func hasValue(s string) bool {
	return strings.TrimSpace(s) != ""
}

// eventFilter resolves the query scope from the event: partner and unit
// together, then partner alone, then unit alone, then a bounded batch of
// the oldest pending orders. Every variant filters to PENDING status.
// The bool reports whether the fallback (sorted, limited) path applies.
func eventFilter(ev domain.OrderEvent) (bson.M, bool) {
	partner := ev.TradingPartnerName
	unit := ev.BusinessUnitName

	switch {
	case hasValue(partner) && hasValue(unit):
		return bson.M{
			"tradingPartnerName": partner,
			"businessUnitName":   unit,
			"status":             domain.OrderStatusPending,
		}, false
	case hasValue(partner):
		return bson.M{
			"tradingPartnerName": partner,
			"status":             domain.OrderStatusPending,
		}, false
	case hasValue(unit):
		return bson.M{
			"businessUnitName": unit,
			"status":           domain.OrderStatusPending,
		}, false
	default:
		return bson.M{"status": domain.OrderStatusPending}, true
	}
}

// FetchOrdersForEvent loads the pending orders in the event's scope.
// Any driver failure is fatal for the event.
func (r *OrdersRepo) FetchOrdersForEvent(ctx domain.Context, ev domain.OrderEvent) ([]domain.Order, error) {
	tracer := otel.Tracer("repo.orders_source")
	ctx, span := tracer.Start(ctx, "orders.FetchForEvent",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "mongodb"),
		attribute.String("event_id", ev.EventID),
	)

	start := time.Now()
	filter, fallback := eventFilter(ev)

	findOpts := options.Find()
	if fallback {
		slog.Debug("fetching pending orders batch", slog.String("event_id", ev.EventID))
		findOpts.SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(r.fetchPendingLimit)
	} else {
		slog.Debug("fetching orders by event scope",
			slog.String("event_id", ev.EventID),
			slog.String("partner", ev.TradingPartnerName),
			slog.String("unit", ev.BusinessUnitName))
	}

	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("op=orders.fetch_for_event: %w: %v", domain.ErrFetchFailed, err)
	}
	var docs []OrderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("op=orders.fetch_for_event_decode: %w: %v", domain.ErrFetchFailed, err)
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, d.toOrder())
	}

	slog.Info("fetched orders from document store",
		slog.String("event_id", ev.EventID),
		slog.Int("count", len(orders)),
		slog.Duration("took", time.Since(start)))
	return orders, nil
}

// BatchUpdateStatus moves the given orders to a new status in one write.
// Best-effort; callers do not gate the pipeline on it.
func (r *OrdersRepo) BatchUpdateStatus(ctx domain.Context, orderIDs []string, status string) error {
	if len(orderIDs) == 0 {
		return nil
	}
	tracer := otel.Tracer("repo.orders_source")
	ctx, span := tracer.Start(ctx, "orders.BatchUpdateStatus")
	defer span.End()

	res, err := r.col.UpdateMany(ctx,
		bson.M{"orderId": bson.M{"$in": orderIDs}},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("op=orders.batch_update_status: %w", err)
	}
	slog.Info("batch updated order status",
		slog.Int64("modified", res.ModifiedCount),
		slog.String("status", status))
	return nil
}

// ReclaimStale flips orders stuck in PROCESSING back to PENDING once
// their last transition is older than the cutoff, so a crashed worker's
// claims are retried.
func (r *OrdersRepo) ReclaimStale(ctx domain.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := r.col.UpdateMany(ctx,
		bson.M{
			"status":    domain.OrderStatusProcessing,
			"updatedAt": bson.M{"$lt": cutoff},
		},
		bson.M{"$set": bson.M{"status": domain.OrderStatusPending, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, fmt.Errorf("op=orders.reclaim_stale: %w", err)
	}
	return res.ModifiedCount, nil
}

// CountByStatus reports how many orders sit in one status.
func (r *OrdersRepo) CountByStatus(ctx domain.Context, status string) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("op=orders.count_by_status: %w", err)
	}
	return n, nil
}

// InsertOrders seeds order documents; used by fixtures and tooling.
func (r *OrdersRepo) InsertOrders(ctx domain.Context, orders []OrderDocument) error {
	if len(orders) == 0 {
		return nil
	}
	docs := make([]any, 0, len(orders))
	for _, o := range orders {
		docs = append(docs, o)
	}
	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("op=orders.insert: %w", err)
	}
	return nil
}
