package kafka

import (
	"log/slog"

	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
	"github.com/fairyhunter13/kafka-order-processor/internal/observability"
)

// LogProducer implements domain.QueuePublisher by writing messages to
// the log instead of a broker. It backs runs with the downstream queue
// disabled and local development without Kafka.
type LogProducer struct{}

// Publish logs the message and always succeeds.
func (LogProducer) Publish(ctx domain.Context, key string, payload []byte) error {
	observability.LoggerFromContext(ctx).Info("downstream publish (log only)",
		slog.String("key", key),
		slog.Int("bytes", len(payload)),
		slog.String("payload", preview(payload)))
	return nil
}
