package domain

import "context"

// Repositories (ports)

//go:generate mockery --name=ReferenceDataRepository --filename=mock_reference_data_repository.go
//go:generate mockery --name=OrderSource --filename=mock_order_source.go
//go:generate mockery --name=DedupStore --filename=mock_dedup_store.go
//go:generate mockery --name=QueuePublisher --filename=mock_queue_publisher.go
//go:generate mockery --name=DeadLetterSink --filename=mock_dead_letter_sink.go

// ReferenceDataRepository reads enrichment data from the relational
// store. Batch readers chunk their input, retry transient failures per
// chunk, and tolerate exhausted chunks by returning the union of the
// chunks that succeeded; missing keys are simply absent from the result.
type ReferenceDataRepository interface {
	FindOrdersByIDs(ctx Context, ids []string) ([]Order, error)
	BatchFetchCustomerData(ctx Context, ids []string) (map[string]Customer, error)
	BatchFetchInventoryData(ctx Context, ids []string) (map[string]Inventory, error)
	BatchFetchPricingData(ctx Context, ids []string) (map[string]Pricing, error)
	// FindTradingPartnerByName returns ErrNotFound when no row matches.
	FindTradingPartnerByName(ctx Context, name string) (TradingPartner, error)
	// FindBusinessUnitByName returns ErrNotFound when no row matches.
	FindBusinessUnitByName(ctx Context, name string) (BusinessUnit, error)
}

// OrderSource resolves an event's scope to pending orders in the
// document store. Fetch failures are fatal for the event (wrapped
// ErrFetchFailed); BatchUpdateStatus is best-effort and never on the
// critical path.
type OrderSource interface {
	FetchOrdersForEvent(ctx Context, ev OrderEvent) ([]Order, error)
	BatchUpdateStatus(ctx Context, ids []string, status string) error
}

// DedupStore claims an event scope for the dedup TTL. TryAcquire is an
// atomic put-if-absent: true means the caller owns the key and should
// process; false means a duplicate within TTL.
type DedupStore interface {
	TryAcquire(ctx Context, key string) (bool, error)
}

// QueuePublisher sends one serialized message to the downstream queue.
// Implementations attach trace headers from the context.
type QueuePublisher interface {
	Publish(ctx Context, key string, payload []byte) error
}

// DeadLetterSink receives per-order transform failures and poison
// events. Implementations must not block the pipeline on sink errors
// beyond returning them.
type DeadLetterSink interface {
	SendFailedOrders(ctx Context, ev OrderEvent, failures []FailedOrder) error
	SendPoisonEvent(ctx Context, raw []byte, cause error) error
}

// Context is an alias to allow decoupling from std context in domain.
// Adapters and usecases pass context.Context through.
type Context = context.Context
