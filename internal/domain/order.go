package domain

import (
	"hash/fnv"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses in the document store.
const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
)

// Shipping statuses derived by the transform.
const (
	ShipStatusReady            = "READY_TO_SHIP"
	ShipStatusLowStock         = "LOW_STOCK"
	ShipStatusBackorder        = "BACKORDER"
	ShipStatusPendingInventory = "PENDING_INVENTORY"
)

// Customer tiers.
const (
	TierStandard = "STANDARD"
	TierPremium  = "PREMIUM"
	TierGold     = "GOLD"
)

// Partner / unit statuses.
const (
	StatusActive    = "ACTIVE"
	StatusInactive  = "INACTIVE"
	StatusSuspended = "SUSPENDED"
)

// GroupedBy identifies this service on outbound grouped messages.
const GroupedBy = "kafka-order-processor"

// Order is a snapshot of a pending order read from the document store.
type Order struct {
	ID         string
	CustomerID string
	Status     string
	Amount     decimal.Decimal
	CreatedAt  time.Time
}

// OrderItem is a line item on a stored order document.
type OrderItem struct {
	SKU      string
	Quantity int
	Price    decimal.Decimal
}

type Customer struct {
	CustomerID string
	Name       string
	Email      string
	Tier       string
}

type Inventory struct {
	OrderID           string
	SKU               string
	QuantityAvailable int
	WarehouseLocation string
}

type Pricing struct {
	OrderID   string
	BasePrice decimal.Decimal
	Discount  decimal.Decimal
	TaxRate   decimal.Decimal
}

type TradingPartner struct {
	ID          string
	PartnerName string
	Status      string
	UpdatedAt   time.Time
}

type BusinessUnit struct {
	ID        string
	UnitName  string
	Status    string
	UpdatedAt time.Time
}

// ProcessingContext carries the preloaded reference data for one pipeline
// run, keyed by order id. Any entry may be absent; the transform degrades
// deterministically on missing keys.
type ProcessingContext struct {
	Customers   map[string]Customer
	Inventories map[string]Inventory
	Pricings    map[string]Pricing
}

func NewProcessingContext() ProcessingContext {
	return ProcessingContext{
		Customers:   map[string]Customer{},
		Inventories: map[string]Inventory{},
		Pricings:    map[string]Pricing{},
	}
}

type ProcessedOrder struct {
	OrderID           string
	CustomerID        string
	CustomerName      string
	CustomerTier      string
	FinalPrice        decimal.Decimal
	WarehouseLocation string
	Status            string
	ProcessedAt       time.Time
	ProcessedBy       string
}

// FailedOrder records a per-order transform failure. It never fails the
// batch; the dead-letter sink receives it after orchestration.
type FailedOrder struct {
	Order        Order
	ErrorMessage string
	ErrorType    string
}

type GroupedMessage struct {
	GroupID     string
	GroupingKey string
	GroupType   string
	Orders      []ProcessedOrder
	OrderCount  int
	TotalAmount decimal.Decimal
	GroupedAt   time.Time
	GroupedByID string
}

// NewGroupedMessage builds one grouped message for a key, computing the
// order count and the final-price total.
func NewGroupedMessage(key, groupType string, orders []ProcessedOrder) GroupedMessage {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.FinalPrice)
	}
	now := time.Now().UTC()
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	id := "GRP-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + strconv.FormatUint(uint64(h.Sum32()), 10)
	return GroupedMessage{
		GroupID:     id,
		GroupingKey: key,
		GroupType:   groupType,
		Orders:      orders,
		OrderCount:  len(orders),
		TotalAmount: total,
		GroupedAt:   now,
		GroupedByID: GroupedBy,
	}
}

// StageTimings holds wall-clock durations per pipeline stage, in
// milliseconds.
type StageTimings struct {
	PreloadMs    int64
	ProcessingMs int64
	PublishMs    int64
	TotalMs      int64
}

// ProcessingResult is the orchestrator's outcome for one event. The
// successes and failures partition the input orders exactly.
type ProcessingResult struct {
	Successes []ProcessedOrder
	Failures  []FailedOrder
	Timings   StageTimings
}

// SuccessIDs returns the order ids of all successes.
func (r ProcessingResult) SuccessIDs() []string {
	ids := make([]string, 0, len(r.Successes))
	for _, s := range r.Successes {
		ids = append(ids, s.OrderID)
	}
	return ids
}
