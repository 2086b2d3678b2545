// Package postgres provides the relational reference-data adapter.
//
// All batch readers chunk their id lists so a single query never exceeds
// the parameter cap of the underlying store, and wrap each chunk in a
// jittered retry for transient failures.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/kafka-order-processor/internal/adapter/observability"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

// PgxPool is a minimal subset of pgxpool used by the repo for easy testing.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReferenceRepo reads orders, reference data, and partner/unit status
// from PostgreSQL using a minimal pgx pool.
type ReferenceRepo struct {
	Pool       PgxPool
	chunkSize  int
	maxRetries int
	retryDelay time.Duration
}

// NewReferenceRepo constructs a ReferenceRepo with the given pool and
// chunk/retry tuning.
func NewReferenceRepo(p PgxPool, chunkSize, maxRetries int, retryDelay time.Duration) *ReferenceRepo {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	return &ReferenceRepo{Pool: p, chunkSize: chunkSize, maxRetries: maxRetries, retryDelay: retryDelay}
}

// FindOrdersByIDs loads orders for the given ids, chunking the id list.
// Unlike the batch readers it does not retry; a chunk failure propagates.
func (r *ReferenceRepo) FindOrdersByIDs(ctx domain.Context, orderIDs []string) ([]domain.Order, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	tracer := otel.Tracer("repo.reference")
	ctx, span := tracer.Start(ctx, "orders.FindByIDs")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", "orders"),
		attribute.Int("order_ids", len(orderIDs)),
	)

	chunks := partition(orderIDs, r.chunkSize)
	if len(chunks) > 1 {
		slog.Info("find orders by ids chunked",
			slog.Int("total_chunks", len(chunks)),
			slog.Int("chunk_size", r.chunkSize))
	}

	const q = `SELECT order_id, customer_id, status, amount, created_at FROM orders WHERE order_id = ANY($1)`
	out := make([]domain.Order, 0, len(orderIDs))
	for i, chunk := range chunks {
		rows, err := r.Pool.Query(ctx, q, chunk)
		if err != nil {
			return nil, fmt.Errorf("op=orders.find_by_ids chunk=%d/%d: %w", i+1, len(chunks), err)
		}
		for rows.Next() {
			var o domain.Order
			if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.Amount, &o.CreatedAt); err != nil {
				rows.Close()
				return nil, fmt.Errorf("op=orders.find_by_ids_scan: %w", err)
			}
			out = append(out, o)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("op=orders.find_by_ids_rows: %w", err)
		}
	}
	return out, nil
}

// BatchFetchCustomerData returns customer data keyed by order id. Missing
// ids are simply absent from the map. A chunk that exhausts its retries is
// logged and skipped so the remaining chunks still contribute.
func (r *ReferenceRepo) BatchFetchCustomerData(ctx domain.Context, orderIDs []string) (map[string]domain.Customer, error) {
	const q = `SELECT o.order_id, c.customer_id, c.name, c.email, c.tier
FROM orders o
JOIN customers c ON c.customer_id = o.customer_id
WHERE o.order_id = ANY($1)`
	return batchFetch(ctx, r, "customer_data.batch_fetch", "customers", orderIDs, q,
		func(rows pgx.Rows, m map[string]domain.Customer) error {
			var orderID string
			var c domain.Customer
			if err := rows.Scan(&orderID, &c.CustomerID, &c.Name, &c.Email, &c.Tier); err != nil {
				return err
			}
			m[orderID] = c
			return nil
		})
}

// BatchFetchInventoryData returns inventory data keyed by order id.
func (r *ReferenceRepo) BatchFetchInventoryData(ctx domain.Context, orderIDs []string) (map[string]domain.Inventory, error) {
	const q = `SELECT order_id, sku, quantity_available, warehouse_location
FROM inventory
WHERE order_id = ANY($1)`
	return batchFetch(ctx, r, "inventory_data.batch_fetch", "inventory", orderIDs, q,
		func(rows pgx.Rows, m map[string]domain.Inventory) error {
			var inv domain.Inventory
			if err := rows.Scan(&inv.OrderID, &inv.SKU, &inv.QuantityAvailable, &inv.WarehouseLocation); err != nil {
				return err
			}
			m[inv.OrderID] = inv
			return nil
		})
}

// BatchFetchPricingData returns pricing data keyed by order id.
func (r *ReferenceRepo) BatchFetchPricingData(ctx domain.Context, orderIDs []string) (map[string]domain.Pricing, error) {
	const q = `SELECT order_id, base_price, discount, tax_rate
FROM pricing
WHERE order_id = ANY($1)`
	return batchFetch(ctx, r, "pricing_data.batch_fetch", "pricing", orderIDs, q,
		func(rows pgx.Rows, m map[string]domain.Pricing) error {
			var p domain.Pricing
			if err := rows.Scan(&p.OrderID, &p.BasePrice, &p.Discount, &p.TaxRate); err != nil {
				return err
			}
			m[p.OrderID] = p
			return nil
		})
}

// batchFetch runs one chunked, retrying batch read. Each chunk is fetched
// into a fresh map inside the retry closure so a failed attempt never
// leaks partial rows, then merged; keys are disjoint across chunks.
func batchFetch[V any](
	ctx domain.Context,
	r *ReferenceRepo,
	op, table string,
	orderIDs []string,
	query string,
	scan func(pgx.Rows, map[string]V) error,
) (map[string]V, error) {
	result := make(map[string]V, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}
	tracer := otel.Tracer("repo.reference")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", table),
		attribute.Int("order_ids", len(orderIDs)),
	)

	chunks := partition(orderIDs, r.chunkSize)
	if len(chunks) > 1 {
		slog.Info("batch fetch chunked",
			slog.String("op", op),
			slog.Int("total_chunks", len(chunks)),
			slog.Int("chunk_size", r.chunkSize))
	}

	for i, chunk := range chunks {
		var fetched map[string]V
		err := r.withRetry(ctx, op, func() error {
			rows, err := r.Pool.Query(ctx, query, chunk)
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrTransientData, err)
			}
			defer rows.Close()
			m := make(map[string]V, len(chunk))
			for rows.Next() {
				if err := scan(rows, m); err != nil {
					return fmt.Errorf("%w: %v", domain.ErrTransientData, err)
				}
			}
			if err := rows.Err(); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrTransientData, err)
			}
			fetched = m
			return nil
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			observability.DBChunksFailedTotal.WithLabelValues(op).Inc()
			slog.Error("chunk failed after retries, continuing with remaining chunks",
				slog.String("op", op),
				slog.Int("chunk", i+1),
				slog.Int("total_chunks", len(chunks)),
				slog.Int("chunk_len", len(chunk)),
				slog.Any("error", err))
			continue
		}
		for k, v := range fetched {
			result[k] = v
		}
	}
	return result, nil
}

// FindTradingPartnerByName loads one trading partner's status row.
// Returns ErrNotFound when the partner does not exist.
func (r *ReferenceRepo) FindTradingPartnerByName(ctx domain.Context, partnerName string) (domain.TradingPartner, error) {
	tracer := otel.Tracer("repo.reference")
	ctx, span := tracer.Start(ctx, "trading_partner.FindByName")
	defer span.End()
	slog.Debug("looking up trading partner status", slog.String("partner", partnerName))

	const q = `SELECT partner_id, partner_name, status, updated_at FROM trading_partners WHERE partner_name = $1`
	row := r.Pool.QueryRow(ctx, q, partnerName)
	var tp domain.TradingPartner
	var updatedAt *time.Time
	if err := row.Scan(&tp.ID, &tp.PartnerName, &tp.Status, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			slog.Warn("trading partner not found", slog.String("partner", partnerName))
			return domain.TradingPartner{}, fmt.Errorf("op=trading_partner.find_by_name: %w", domain.ErrNotFound)
		}
		return domain.TradingPartner{}, fmt.Errorf("op=trading_partner.find_by_name: %w", err)
	}
	if updatedAt != nil {
		tp.UpdatedAt = *updatedAt
	}
	return tp, nil
}

// FindBusinessUnitByName loads one business unit's status row.
// Returns ErrNotFound when the unit does not exist.
func (r *ReferenceRepo) FindBusinessUnitByName(ctx domain.Context, unitName string) (domain.BusinessUnit, error) {
	tracer := otel.Tracer("repo.reference")
	ctx, span := tracer.Start(ctx, "business_unit.FindByName")
	defer span.End()
	slog.Debug("looking up business unit status", slog.String("unit", unitName))

	const q = `SELECT unit_id, unit_name, status, updated_at FROM business_units WHERE unit_name = $1`
	row := r.Pool.QueryRow(ctx, q, unitName)
	var bu domain.BusinessUnit
	var updatedAt *time.Time
	if err := row.Scan(&bu.ID, &bu.UnitName, &bu.Status, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			slog.Warn("business unit not found", slog.String("unit", unitName))
			return domain.BusinessUnit{}, fmt.Errorf("op=business_unit.find_by_name: %w", domain.ErrNotFound)
		}
		return domain.BusinessUnit{}, fmt.Errorf("op=business_unit.find_by_name: %w", err)
	}
	if updatedAt != nil {
		bu.UpdatedAt = *updatedAt
	}
	return bu, nil
}
