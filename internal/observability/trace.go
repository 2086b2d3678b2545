package observability

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// TraceContext carries the correlation ids stamped on every log line and
// echoed on outbound messages. TraceID is 32 lowercase hex chars, SpanID 16.
type TraceContext struct {
	TraceID string
	SpanID  string
}

// traceContextKey is the private context key used to store a TraceContext.
type traceContextKey struct{}

// NewTraceContext generates a fresh trace with a root span.
func NewTraceContext() TraceContext {
	return TraceContext{
		TraceID: strings.ReplaceAll(uuid.NewString(), "-", ""),
		SpanID:  newSpanID(),
	}
}

// ContinueTrace keeps an upstream trace id and opens a new span under it.
// An empty or malformed trace id starts a fresh trace instead.
func ContinueTrace(traceID string) TraceContext {
	if !validTraceID(traceID) {
		return NewTraceContext()
	}
	return TraceContext{TraceID: traceID, SpanID: newSpanID()}
}

// Child returns the same trace with a new span id.
func (tc TraceContext) Child() TraceContext {
	return TraceContext{TraceID: tc.TraceID, SpanID: newSpanID()}
}

// Valid reports whether both ids are present.
func (tc TraceContext) Valid() bool {
	return tc.TraceID != "" && tc.SpanID != ""
}

func newSpanID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func validTraceID(id string) bool {
	if len(id) != 32 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}

// ContextWithTrace attaches a trace to the context.
func ContextWithTrace(ctx context.Context, tc TraceContext) context.Context {
	if ctx == nil || !tc.Valid() {
		return ctx
	}
	return context.WithValue(ctx, traceContextKey{}, tc)
}

// TraceFromContext returns the trace stored in the context. The second
// return is false when none is present.
func TraceFromContext(ctx context.Context) (TraceContext, bool) {
	if ctx == nil {
		return TraceContext{}, false
	}
	if v := ctx.Value(traceContextKey{}); v != nil {
		if tc, ok := v.(TraceContext); ok && tc.Valid() {
			return tc, true
		}
	}
	return TraceContext{}, false
}

// LoggerWithTrace returns the context logger with trace_id/span_id attrs
// applied when a trace is present.
func LoggerWithTrace(ctx context.Context) *slog.Logger {
	lg := LoggerFromContext(ctx)
	if tc, ok := TraceFromContext(ctx); ok {
		lg = lg.With(slog.String("trace_id", tc.TraceID), slog.String("span_id", tc.SpanID))
	}
	return lg
}
