// Package mockstore is the in-memory domain.OrderSource wired when
// MongoDB is disabled. It generates a reproducible batch of pending
// orders per event scope so the pipeline stays runnable end to end
// without a document store.
package mockstore

import (
	"hash/fnv"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
	"github.com/fairyhunter13/kafka-order-processor/internal/observability"
)

const defaultOrdersPerEvent = 5

// Store serves generated orders for an event scope. The same scope
// always yields the same order ids and amounts. Status updates are
// recorded in memory so local runs can inspect them.
type Store struct {
	perEvent int

	mu       sync.Mutex
	statuses map[string]string
}

// New returns a store generating perEvent orders per event. Values
// below one fall back to the default of five.
func New(perEvent int) *Store {
	if perEvent < 1 {
		perEvent = defaultOrdersPerEvent
	}
	return &Store{
		perEvent: perEvent,
		statuses: make(map[string]string),
	}
}

// FetchOrdersForEvent derives a batch of PENDING orders from the
// event's partner and unit names. Ids follow ORD-<partner hash>-<n>
// and amounts land in [100, 1000) so pricing paths stay exercised.
func (s *Store) FetchOrdersForEvent(ctx domain.Context, ev domain.OrderEvent) ([]domain.Order, error) {
	partnerHash := hash32(ev.TradingPartnerName) % 1000
	now := time.Now().UTC()

	orders := make([]domain.Order, 0, s.perEvent)
	for i := 1; i <= s.perEvent; i++ {
		n := strconv.Itoa(i)
		amount := 100 + hash32(ev.TradingPartnerName+"|"+ev.BusinessUnitName+"|"+n)%900
		orders = append(orders, domain.Order{
			ID:         "ORD-" + strconv.FormatUint(uint64(partnerHash), 10) + "-" + n,
			CustomerID: "CUST-" + ev.BusinessUnitName + "-" + n,
			Status:     domain.OrderStatusPending,
			Amount:     decimal.NewFromInt(int64(amount)),
			CreatedAt:  now,
		})
	}

	observability.LoggerWithTrace(ctx).Debug("serving generated orders",
		slog.String("event_id", ev.EventID),
		slog.Int("count", len(orders)),
	)
	return orders, nil
}

// BatchUpdateStatus records the new status for each id.
func (s *Store) BatchUpdateStatus(_ domain.Context, ids []string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.statuses[id] = status
	}
	return nil
}

// StatusOf returns the last recorded status for an order id, or empty.
func (s *Store) StatusOf(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[id]
}

func hash32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
