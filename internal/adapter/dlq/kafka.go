package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/pkg/kgo"

	metrics "github.com/fairyhunter13/kafka-order-processor/internal/adapter/observability"
	"github.com/fairyhunter13/kafka-order-processor/internal/adapter/queue/kafka"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

// HeaderFailureCode carries the failure classification on dead-letter
// records.
const HeaderFailureCode = "X-Failure-Code"

// Dead-letter wire shapes, camelCase like the downstream messages.
type failedOrderMessage struct {
	EventID      string          `json:"eventId"`
	EventType    string          `json:"eventType"`
	OrderID      string          `json:"orderId"`
	CustomerID   string          `json:"customerId"`
	Amount       decimal.Decimal `json:"amount"`
	ErrorMessage string          `json:"errorMessage"`
	ErrorType    string          `json:"errorType"`
	FailedAt     time.Time       `json:"failedAt"`
}

type poisonEventMessage struct {
	Payload  string    `json:"payload"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failedAt"`
}

// failedOrderRecord renders one failed order for the DLQ topic. Key is
// the order id; the failure type travels as a header next to the trace.
func failedOrderRecord(ctx context.Context, topic string, ev domain.OrderEvent, f domain.FailedOrder, now time.Time) (*kgo.Record, error) {
	payload, err := json.Marshal(failedOrderMessage{
		EventID:      ev.EventID,
		EventType:    ev.EventType,
		OrderID:      f.Order.ID,
		CustomerID:   f.Order.CustomerID,
		Amount:       f.Order.Amount,
		ErrorMessage: f.ErrorMessage,
		ErrorType:    f.ErrorType,
		FailedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal failed order: %w", err)
	}
	headers := append(kafka.TraceHeaders(ctx),
		kgo.RecordHeader{Key: HeaderFailureCode, Value: []byte(f.ErrorType)})
	return &kgo.Record{Topic: topic, Key: []byte(f.Order.ID), Value: payload, Headers: headers}, nil
}

// poisonEventRecord renders an unparseable input payload for the DLQ
// topic. No key: poison events have no scope to partition by.
func poisonEventRecord(ctx context.Context, topic string, raw []byte, cause error, now time.Time) (*kgo.Record, error) {
	payload, err := json.Marshal(poisonEventMessage{
		Payload:  string(raw),
		Error:    cause.Error(),
		FailedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal poison event: %w", err)
	}
	headers := append(kafka.TraceHeaders(ctx),
		kgo.RecordHeader{Key: HeaderFailureCode, Value: []byte(domain.FailureCode(cause))})
	return &kgo.Record{Topic: topic, Value: payload, Headers: headers}, nil
}

// KafkaSink publishes dead letters to a dedicated topic. Produce
// errors propagate so the event stays uncommitted and redelivers.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink connects the sink and ensures the DLQ topic exists.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic name cannot be empty")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kafka.KotelHooks(),
		kgo.RequestRetries(10),
		kgo.DialTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("dlq client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := kafka.EnsureTopic(ctx, client, topic, 1, 1); err != nil {
		slog.Warn("ensure dlq topic", slog.String("topic", topic), slog.Any("error", err))
	}

	return &KafkaSink{client: client, topic: topic}, nil
}

// SendFailedOrders publishes one record per failed order.
func (s *KafkaSink) SendFailedOrders(ctx domain.Context, ev domain.OrderEvent, failures []domain.FailedOrder) error {
	if len(failures) == 0 {
		return nil
	}
	now := time.Now().UTC()
	records := make([]*kgo.Record, 0, len(failures))
	for _, f := range failures {
		rec, err := failedOrderRecord(ctx, s.topic, ev, f, now)
		if err != nil {
			return fmt.Errorf("op=dlq.send_failed_orders: %w", err)
		}
		records = append(records, rec)
	}
	if err := s.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("op=dlq.send_failed_orders: %w", err)
	}
	for _, f := range failures {
		metrics.DLQMessagesTotal.WithLabelValues(f.ErrorType).Inc()
	}
	slog.Info("failed orders dead-lettered",
		slog.String("event_id", ev.EventID),
		slog.Int("count", len(failures)),
		slog.String("topic", s.topic))
	return nil
}

// SendPoisonEvent publishes the raw payload with its parse error.
func (s *KafkaSink) SendPoisonEvent(ctx domain.Context, raw []byte, cause error) error {
	rec, err := poisonEventRecord(ctx, s.topic, raw, cause, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=dlq.send_poison_event: %w", err)
	}
	if err := s.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("op=dlq.send_poison_event: %w", err)
	}
	metrics.DLQMessagesTotal.WithLabelValues(domain.FailureCode(cause)).Inc()
	return nil
}

// Close releases the client.
func (s *KafkaSink) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
