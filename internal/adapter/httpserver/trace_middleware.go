package httpserver

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairyhunter13/kafka-order-processor/internal/observability"
)

const traceHeader = "X-Trace-Id"

// TraceMiddleware continues an inbound X-Trace-Id or starts a fresh
// trace, stamps the response header, and opens an OTel span for the
// request. The same propagation rules apply on the queue consumer.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tr := otel.Tracer("http.server")
		ctx, span := tr.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
		)

		tc := observability.ContinueTrace(r.Header.Get(traceHeader))
		ctx = observability.ContextWithTrace(ctx, tc)
		w.Header().Set(traceHeader, tc.TraceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
