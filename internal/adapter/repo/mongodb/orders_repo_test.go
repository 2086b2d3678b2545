package mongodb

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

func TestEventFilter_Cascade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ev       domain.OrderEvent
		want     map[string]any
		fallback bool
	}{
		{
			name: "partner and unit",
			ev:   domain.OrderEvent{TradingPartnerName: "ACME", BusinessUnitName: "NORTH"},
			want: map[string]any{
				"tradingPartnerName": "ACME",
				"businessUnitName":   "NORTH",
				"status":             "PENDING",
			},
		},
		{
			name: "partner only",
			ev:   domain.OrderEvent{TradingPartnerName: "ACME"},
			want: map[string]any{
				"tradingPartnerName": "ACME",
				"status":             "PENDING",
			},
		},
		{
			name: "unit only",
			ev:   domain.OrderEvent{BusinessUnitName: "NORTH"},
			want: map[string]any{
				"businessUnitName": "NORTH",
				"status":           "PENDING",
			},
		},
		{
			name:     "no scope falls back to pending batch",
			ev:       domain.OrderEvent{},
			want:     map[string]any{"status": "PENDING"},
			fallback: true,
		},
		{
			name:     "whitespace counts as absent",
			ev:       domain.OrderEvent{TradingPartnerName: "  ", BusinessUnitName: "\t"},
			want:     map[string]any{"status": "PENDING"},
			fallback: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			filter, fallback := eventFilter(tc.ev)
			assert.Equal(t, tc.fallback, fallback)
			require.Len(t, filter, len(tc.want))
			for k, v := range tc.want {
				assert.Equal(t, v, filter[k], "key %s", k)
			}
		})
	}
}

func TestDecimal128RoundTrip(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"0", "100", "99.99", "-12.5", "1234567.891"} {
		want := decimal.RequireFromString(raw)
		got := decimalFrom128(decimal128From(want))
		assert.True(t, want.Equal(got), "value %s came back as %s", want, got)
	}
}

func TestDecimalFrom128_UnparseableIsZero(t *testing.T) {
	t.Parallel()

	nan, err := primitive.ParseDecimal128("NaN")
	require.NoError(t, err)

	got := decimalFrom128(nan)
	assert.True(t, got.IsZero())
}

func TestOrderDocument_ToOrder(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	doc := OrderDocument{
		OrderID:    "O1",
		CustomerID: "C1",
		Status:     domain.OrderStatusPending,
		Amount:     decimal128From(decimal.RequireFromString("42.75")),
		CreatedAt:  createdAt,
	}

	order := doc.toOrder()
	assert.Equal(t, "O1", order.ID)
	assert.Equal(t, "C1", order.CustomerID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "42.75", order.Amount.String())
	assert.Equal(t, createdAt, order.CreatedAt)
}

func TestOrderDocument_ToOrder_MissingCreatedAt(t *testing.T) {
	t.Parallel()

	before := time.Now()
	order := OrderDocument{OrderID: "O1"}.toOrder()
	assert.False(t, order.CreatedAt.Before(before), "createdAt should fall back to now")
}
