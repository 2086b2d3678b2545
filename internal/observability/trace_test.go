package observability

import (
	"context"
	"testing"
)

func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

func TestNewTraceContext(t *testing.T) {
	tc := NewTraceContext()

	if len(tc.TraceID) != 32 || !isHex(tc.TraceID) {
		t.Fatalf("trace id must be 32 hex chars, got %q", tc.TraceID)
	}
	if len(tc.SpanID) != 16 || !isHex(tc.SpanID) {
		t.Fatalf("span id must be 16 hex chars, got %q", tc.SpanID)
	}
	if !tc.Valid() {
		t.Fatal("generated trace should be valid")
	}

	// Two generated traces should not collide
	other := NewTraceContext()
	if other.TraceID == tc.TraceID {
		t.Fatal("expected distinct trace ids")
	}
}

func TestContinueTrace(t *testing.T) {
	upstream := "0123456789abcdef0123456789abcdef"

	tc := ContinueTrace(upstream)
	if tc.TraceID != upstream {
		t.Fatalf("expected upstream trace id to be kept, got %q", tc.TraceID)
	}
	if len(tc.SpanID) != 16 {
		t.Fatalf("expected fresh span id, got %q", tc.SpanID)
	}

	// Malformed upstream ids start a fresh trace
	for _, bad := range []string{"", "short", "0123456789ABCDEF0123456789ABCDEF", "zz23456789abcdef0123456789abcdef"} {
		tc := ContinueTrace(bad)
		if tc.TraceID == bad {
			t.Fatalf("malformed id %q should not be continued", bad)
		}
		if len(tc.TraceID) != 32 || !isHex(tc.TraceID) {
			t.Fatalf("fallback trace id invalid: %q", tc.TraceID)
		}
	}
}

func TestTraceContext_Child(t *testing.T) {
	tc := NewTraceContext()
	child := tc.Child()

	if child.TraceID != tc.TraceID {
		t.Fatal("child span must stay on the same trace")
	}
	if child.SpanID == tc.SpanID {
		t.Fatal("child span must get a new span id")
	}
}

func TestContextWithTraceRoundTrip(t *testing.T) {
	ctx := context.Background()

	if _, ok := TraceFromContext(ctx); ok {
		t.Fatal("empty context should carry no trace")
	}

	tc := NewTraceContext()
	ctx = ContextWithTrace(ctx, tc)

	got, ok := TraceFromContext(ctx)
	if !ok {
		t.Fatal("expected trace in context")
	}
	if got != tc {
		t.Fatalf("trace did not round-trip: got %+v want %+v", got, tc)
	}

	// Invalid traces are not attached
	base := context.Background()
	if out := ContextWithTrace(base, TraceContext{}); out != base {
		t.Fatal("expected original context when trace is invalid")
	}
}

func TestLoggerWithTrace(t *testing.T) {
	// Without a trace the context logger is returned as-is
	if lg := LoggerWithTrace(context.Background()); lg == nil {
		t.Fatal("expected a logger")
	}

	ctx := ContextWithTrace(context.Background(), NewTraceContext())
	if lg := LoggerWithTrace(ctx); lg == nil {
		t.Fatal("expected a trace-scoped logger")
	}
}
