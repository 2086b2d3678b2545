package usecase

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

// Grouping strategies.
const (
	GroupByCustomer  = "BY_CUSTOMER"
	GroupByWarehouse = "BY_WAREHOUSE"
	GroupByTier      = "BY_TIER"
	GroupHighValue   = "HIGH_VALUE"
	GroupNone        = "NONE"
)

// Grouper partitions processed orders into grouped messages plus
// individual leftovers. Any bucket smaller than MinGroupSize degrades
// to individual sends; an unknown strategy falls back to BY_CUSTOMER.
type Grouper struct {
	Strategy           string
	HighValueThreshold decimal.Decimal
	MinGroupSize       int
}

// NewGrouper constructs a Grouper. The strategy is case-insensitive.
func NewGrouper(strategy string, highValueThreshold decimal.Decimal, minGroupSize int) *Grouper {
	if minGroupSize < 1 {
		minGroupSize = 1
	}
	return &Grouper{
		Strategy:           strings.ToUpper(strings.TrimSpace(strategy)),
		HighValueThreshold: highValueThreshold,
		MinGroupSize:       minGroupSize,
	}
}

// GroupingResult splits one batch into grouped messages and orders
// that go out individually. The two sides partition the input exactly.
type GroupingResult struct {
	Grouped    []domain.GroupedMessage
	Individual []domain.ProcessedOrder
}

// Group applies the configured strategy to one batch.
func (g *Grouper) Group(orders []domain.ProcessedOrder) GroupingResult {
	if len(orders) == 0 {
		return GroupingResult{}
	}
	switch g.Strategy {
	case GroupByWarehouse:
		return g.groupBy(orders, "WAREHOUSE", warehouseKey)
	case GroupByTier:
		return g.groupBy(orders, "TIER", tierKey)
	case GroupHighValue:
		return g.groupHighValue(orders)
	case GroupNone:
		return GroupingResult{Individual: orders}
	default:
		return g.groupBy(orders, "CUSTOMER", customerKey)
	}
}

func customerKey(o domain.ProcessedOrder) string { return o.CustomerID }

func warehouseKey(o domain.ProcessedOrder) string {
	if o.WarehouseLocation == "" {
		return "UNKNOWN"
	}
	return o.WarehouseLocation
}

func tierKey(o domain.ProcessedOrder) string {
	if o.CustomerTier == "" {
		return domain.TierStandard
	}
	return o.CustomerTier
}

func (g *Grouper) groupBy(orders []domain.ProcessedOrder, groupType string, key func(domain.ProcessedOrder) string) GroupingResult {
	buckets := make(map[string][]domain.ProcessedOrder)
	// first-seen key order keeps the output deterministic
	keys := make([]string, 0, len(orders))
	for _, o := range orders {
		k := key(o)
		if _, seen := buckets[k]; !seen {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], o)
	}
	var res GroupingResult
	for _, k := range keys {
		batch := buckets[k]
		if len(batch) >= g.MinGroupSize {
			res.Grouped = append(res.Grouped, domain.NewGroupedMessage(k, groupType, batch))
		} else {
			res.Individual = append(res.Individual, batch...)
		}
	}
	return res
}

// groupHighValue collects orders at or above the threshold into a
// single HIGH_VALUE group; everything below goes out individually.
func (g *Grouper) groupHighValue(orders []domain.ProcessedOrder) GroupingResult {
	var high, regular []domain.ProcessedOrder
	for _, o := range orders {
		if o.FinalPrice.GreaterThanOrEqual(g.HighValueThreshold) {
			high = append(high, o)
		} else {
			regular = append(regular, o)
		}
	}
	res := GroupingResult{Individual: regular}
	if len(high) >= g.MinGroupSize {
		res.Grouped = append(res.Grouped, domain.NewGroupedMessage("HIGH_VALUE", "HIGH_VALUE", high))
	} else {
		res.Individual = append(res.Individual, high...)
	}
	return res
}
