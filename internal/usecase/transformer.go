package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"

	metrics "github.com/fairyhunter13/kafka-order-processor/internal/adapter/observability"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
	"github.com/fairyhunter13/kafka-order-processor/internal/observability"
)

// Tier bonuses stack on top of the per-order discount.
var (
	goldBonus    = decimal.New(10, -2)
	premiumBonus = decimal.New(5, -2)
	one          = decimal.New(1, 0)
)

var errTransformPanic = errors.New("transform panic")

// Transformer enriches orders with the preloaded reference data. Each
// order is transformed in its own goroutine gated by the processing
// semaphore; one order's failure never affects its siblings.
type Transformer struct {
	sem         *semaphore.Weighted
	processedBy string
}

// NewTransformer constructs a Transformer. processedBy identifies this
// worker instance on outbound messages.
func NewTransformer(concurrency int, processedBy string) *Transformer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Transformer{
		sem:         semaphore.NewWeighted(int64(concurrency)),
		processedBy: processedBy,
	}
}

// ProcessOrders fans out one goroutine per order. The returned slices
// partition the input: every order lands in exactly one of them.
// Context cancellation fails un-started orders with ContextCanceled.
func (t *Transformer) ProcessOrders(ctx context.Context, orders []domain.Order, data domain.ProcessingContext) ([]domain.ProcessedOrder, []domain.FailedOrder) {
	if len(orders) == 0 {
		return nil, nil
	}
	lg := observability.LoggerFromContext(ctx)

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		successes = make([]domain.ProcessedOrder, 0, len(orders))
		failures  []domain.FailedOrder
	)
	for _, o := range orders {
		wg.Add(1)
		go func(o domain.Order) {
			defer wg.Done()
			if err := t.sem.Acquire(ctx, 1); err != nil {
				t.recordFailure(lg, &mu, &failures, o, err)
				return
			}
			defer t.sem.Release(1)

			po, err := t.transform(o, data)
			if err != nil {
				t.recordFailure(lg, &mu, &failures, o, err)
				return
			}
			mu.Lock()
			successes = append(successes, po)
			mu.Unlock()
			metrics.OrdersProcessedTotal.Inc()
		}(o)
	}
	wg.Wait()
	return successes, failures
}

func (t *Transformer) recordFailure(lg *slog.Logger, mu *sync.Mutex, failures *[]domain.FailedOrder, o domain.Order, err error) {
	errType := errorType(err)
	lg.Warn("order transform failed",
		slog.String("order_id", o.ID),
		slog.String("error_type", errType),
		slog.Any("error", err))
	metrics.OrdersFailedTotal.WithLabelValues(errType).Inc()
	mu.Lock()
	*failures = append(*failures, domain.FailedOrder{Order: o, ErrorMessage: err.Error(), ErrorType: errType})
	mu.Unlock()
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return "ContextCanceled"
	case errors.Is(err, errTransformPanic):
		return "Panic"
	default:
		return "TransformError"
	}
}

// transform is pure. Missing reference data degrades deterministically:
// Unknown name, STANDARD tier, DEFAULT warehouse, PENDING_INVENTORY
// status, zero price.
func (t *Transformer) transform(o domain.Order, data domain.ProcessingContext) (po domain.ProcessedOrder, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errTransformPanic, r)
		}
	}()

	po = domain.ProcessedOrder{
		OrderID:           o.ID,
		CustomerID:        o.CustomerID,
		CustomerName:      "Unknown",
		CustomerTier:      domain.TierStandard,
		FinalPrice:        decimal.Zero,
		WarehouseLocation: "DEFAULT",
		Status:            domain.ShipStatusPendingInventory,
		ProcessedAt:       time.Now().UTC(),
		ProcessedBy:       t.processedBy,
	}
	if c, ok := data.Customers[o.ID]; ok {
		po.CustomerName = c.Name
		if c.Tier != "" {
			po.CustomerTier = c.Tier
		}
	}
	if inv, ok := data.Inventories[o.ID]; ok {
		if inv.WarehouseLocation != "" {
			po.WarehouseLocation = inv.WarehouseLocation
		}
		po.Status = shipStatus(inv.QuantityAvailable)
	}
	if pr, ok := data.Pricings[o.ID]; ok {
		po.FinalPrice = finalPrice(pr, po.CustomerTier)
	}
	return po, nil
}

func shipStatus(qtyAvailable int) string {
	switch {
	case qtyAvailable > 10:
		return domain.ShipStatusReady
	case qtyAvailable > 0:
		return domain.ShipStatusLowStock
	default:
		return domain.ShipStatusBackorder
	}
}

// finalPrice applies the tier bonus on top of the base discount, then
// tax, rounded half-up to cents.
func finalPrice(p domain.Pricing, tier string) decimal.Decimal {
	discount := p.Discount
	switch tier {
	case domain.TierGold:
		discount = discount.Add(goldBonus)
	case domain.TierPremium:
		discount = discount.Add(premiumBonus)
	}
	discounted := p.BasePrice.Sub(p.BasePrice.Mul(discount))
	return discounted.Mul(one.Add(p.TaxRate)).Round(2)
}
