package kafka

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/kafka-order-processor/internal/observability"
	"github.com/fairyhunter13/kafka-order-processor/pkg/textx"
)

// Trace correlation headers carried on every produced record.
const (
	HeaderTraceID = "X-Trace-Id"
	HeaderSpanID  = "X-Span-Id"
)

const previewLimit = 256

// KotelHooks wires franz-go's OpenTelemetry instrumentation into a
// client so produce and consume spans join the process traces.
func KotelHooks() kgo.Opt {
	tracer := kotel.NewTracer(
		kotel.TracerProvider(otel.GetTracerProvider()),
	)
	svc := kotel.NewKotel(
		kotel.WithTracer(tracer),
	)
	return kgo.WithHooks(svc.Hooks()...)
}

// TraceHeaders renders the context trace onto outbound record headers.
// No trace, no headers.
func TraceHeaders(ctx context.Context) []kgo.RecordHeader {
	tc, ok := observability.TraceFromContext(ctx)
	if !ok {
		return nil
	}
	return []kgo.RecordHeader{
		{Key: HeaderTraceID, Value: []byte(tc.TraceID)},
		{Key: HeaderSpanID, Value: []byte(tc.SpanID)},
	}
}

// traceFromRecord continues the upstream trace when the record carries
// one, else starts fresh.
func traceFromRecord(record *kgo.Record) observability.TraceContext {
	var traceID string
	for _, h := range record.Headers {
		if h.Key == HeaderTraceID {
			traceID = string(h.Value)
			break
		}
	}
	return observability.ContinueTrace(traceID)
}

// preview renders a payload for log lines: control characters stripped,
// length capped.
func preview(b []byte) string {
	s := textx.SanitizeText(string(b))
	if len(s) > previewLimit {
		return s[:previewLimit] + "..."
	}
	return s
}
