// Package seed loads pending-order fixtures from YAML and inserts them
// into the order store. It backs the seedorders CLI.
package seed

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/kafka-order-processor/internal/adapter/repo/mongodb"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

// Inserter is the slice of the orders repo the seeder needs.
type Inserter interface {
	InsertOrders(ctx domain.Context, orders []mongodb.OrderDocument) error
}

type fixture struct {
	Orders []fixtureOrder `yaml:"orders"`
}

type fixtureOrder struct {
	OrderID            string        `yaml:"orderId"`
	CustomerID         string        `yaml:"customerId"`
	TradingPartnerName string        `yaml:"tradingPartnerName"`
	BusinessUnitName   string        `yaml:"businessUnitName"`
	Status             string        `yaml:"status"`
	Amount             string        `yaml:"amount"`
	Items              []fixtureItem `yaml:"items"`
}

type fixtureItem struct {
	SKU      string `yaml:"sku"`
	Quantity int    `yaml:"quantity"`
	Price    string `yaml:"price"`
}

// LoadFile parses a YAML fixture into insertable order documents.
// Orders without an explicit status come back PENDING; timestamps are
// set to the load time.
func LoadFile(path string) ([]mongodb.OrderDocument, error) {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("seed file not found: %s", path)
		}
		return nil, err
	}
	var doc fixture
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("yaml parse: %w", err)
	}
	if len(doc.Orders) == 0 {
		return nil, fmt.Errorf("no orders to seed in %s", path)
	}

	now := time.Now().UTC()
	docs := make([]mongodb.OrderDocument, 0, len(doc.Orders))
	for i, o := range doc.Orders {
		d, err := toDocument(o, now)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", i+1, err)
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// SeedFile loads path and inserts its orders through repo. It returns
// the number of orders inserted.
func SeedFile(ctx domain.Context, repo Inserter, path string) (int, error) {
	docs, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	if err := repo.InsertOrders(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

func toDocument(o fixtureOrder, now time.Time) (mongodb.OrderDocument, error) {
	if strings.TrimSpace(o.OrderID) == "" {
		return mongodb.OrderDocument{}, fmt.Errorf("orderId is required")
	}
	amount, err := parseAmount(o.Amount)
	if err != nil {
		return mongodb.OrderDocument{}, fmt.Errorf("amount %q: %w", o.Amount, err)
	}
	status := strings.TrimSpace(o.Status)
	if status == "" {
		status = domain.OrderStatusPending
	}

	var items []mongodb.OrderItemDocument
	for _, it := range o.Items {
		price, err := parseAmount(it.Price)
		if err != nil {
			return mongodb.OrderDocument{}, fmt.Errorf("item %q price %q: %w", it.SKU, it.Price, err)
		}
		items = append(items, mongodb.OrderItemDocument{
			SKU:      it.SKU,
			Quantity: it.Quantity,
			Price:    price,
		})
	}

	return mongodb.OrderDocument{
		OrderID:            strings.TrimSpace(o.OrderID),
		CustomerID:         strings.TrimSpace(o.CustomerID),
		TradingPartnerName: strings.TrimSpace(o.TradingPartnerName),
		BusinessUnitName:   strings.TrimSpace(o.BusinessUnitName),
		Status:             status,
		Amount:             amount,
		CreatedAt:          now,
		UpdatedAt:          now,
		Items:              items,
	}, nil
}

// parseAmount validates through the fixed-precision type before the
// BSON conversion so junk like NaN never reaches the store.
func parseAmount(s string) (primitive.Decimal128, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return primitive.Decimal128{}, err
	}
	return primitive.ParseDecimal128(d.String())
}
