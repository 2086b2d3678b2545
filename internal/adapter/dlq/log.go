// Package dlq provides the dead-letter sinks. The log sink is the
// default; the kafka sink publishes failures to a dedicated topic so
// replay tooling can pick them up.
package dlq

import (
	"log/slog"

	metrics "github.com/fairyhunter13/kafka-order-processor/internal/adapter/observability"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
	"github.com/fairyhunter13/kafka-order-processor/internal/observability"
	"github.com/fairyhunter13/kafka-order-processor/pkg/textx"
)

const previewLimit = 256

func preview(b []byte) string {
	s := textx.SanitizeText(string(b))
	if len(s) > previewLimit {
		return s[:previewLimit] + "..."
	}
	return s
}

// LogSink writes dead letters to the process log. Failures stay
// observable without extra infrastructure; nothing is replayable.
type LogSink struct{}

// SendFailedOrders logs one line per failed order. Never fails.
func (LogSink) SendFailedOrders(ctx domain.Context, ev domain.OrderEvent, failures []domain.FailedOrder) error {
	lg := observability.LoggerFromContext(ctx)
	for _, f := range failures {
		metrics.DLQMessagesTotal.WithLabelValues(f.ErrorType).Inc()
		lg.Error("order dead-lettered",
			slog.String("event_id", ev.EventID),
			slog.String("order_id", f.Order.ID),
			slog.String("error_type", f.ErrorType),
			slog.String("error", f.ErrorMessage))
	}
	return nil
}

// SendPoisonEvent logs the unparseable payload. Never fails.
func (LogSink) SendPoisonEvent(ctx domain.Context, raw []byte, cause error) error {
	metrics.DLQMessagesTotal.WithLabelValues(domain.FailureCode(cause)).Inc()
	observability.LoggerFromContext(ctx).Error("poison event dead-lettered",
		slog.String("payload_preview", preview(raw)),
		slog.Any("error", cause))
	return nil
}
