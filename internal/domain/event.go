package domain

import "strings"

// OrderEvent is the input-topic payload. It identifies a
// (trading partner, business unit) scope rather than individual orders;
// the pipeline resolves the scope to pending orders itself.
type OrderEvent struct {
	EventID            string `json:"eventId"`
	EventType          string `json:"eventType"`
	TradingPartnerName string `json:"tradingPartnerName"`
	BusinessUnitName   string `json:"businessUnitName"`
}

// Event types that publish one message per group.
var groupedEventTypes = map[string]struct{}{
	"BULK_ORDER":         {},
	"BATCH_SHIPMENT":     {},
	"CONSOLIDATE_ORDERS": {},
	"WAREHOUSE_BATCH":    {},
}

// Event types that publish one message per order. Any type outside both
// sets is treated as individual as well.
var individualEventTypes = map[string]struct{}{
	"SINGLE_ORDER":   {},
	"EXPRESS_ORDER":  {},
	"PRIORITY_ORDER": {},
	"PROCESS_ORDERS": {},
}

// DedupKey is the idempotency key for the event's scope.
func (e OrderEvent) DedupKey() string {
	return e.TradingPartnerName + "::" + e.BusinessUnitName
}

// RequiresGrouping reports whether the event type routes through the
// grouper. Matching is case-insensitive.
func (e OrderEvent) RequiresGrouping() bool {
	_, ok := groupedEventTypes[strings.ToUpper(e.EventType)]
	return ok
}

// KnownEventType reports whether the event type belongs to either set.
func (e OrderEvent) KnownEventType() bool {
	t := strings.ToUpper(e.EventType)
	if _, ok := groupedEventTypes[t]; ok {
		return true
	}
	_, ok := individualEventTypes[t]
	return ok
}
