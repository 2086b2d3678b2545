package observability

import (
	"context"
	"log/slog"
	"testing"
)

func TestContextWithLoggerAndLoggerFromContext(t *testing.T) {
	lg := slog.Default()

	baseCtx := context.Background()

	// Attaching a logger should return a derived context
	ctxWithLogger := ContextWithLogger(baseCtx, lg)
	if ctxWithLogger == baseCtx {
		t.Fatal("expected a derived context when attaching a logger")
	}

	// Logger should round-trip through context
	if got := LoggerFromContext(ctxWithLogger); got != lg {
		t.Fatalf("LoggerFromContext did not return original logger, got %v", got)
	}

	// When logger is nil, original context should be returned unchanged
	if got := ContextWithLogger(baseCtx, nil); got != baseCtx {
		t.Fatal("expected original context when logger is nil")
	}

	// Default logger should be returned when context has no logger
	if got := LoggerFromContext(context.Background()); got == nil {
		t.Fatal("expected default logger for empty context")
	}
}

func TestContextWithEventIDAndEventIDFromContext(t *testing.T) {
	ctx := context.Background()
	eventID := "evt-123"
	ctxWithID := ContextWithEventID(ctx, eventID)

	if ctxWithID == ctx {
		t.Fatal("expected a derived context when setting event ID")
	}

	if got := EventIDFromContext(ctxWithID); got != eventID {
		t.Fatalf("EventIDFromContext() = %q, want %q", got, eventID)
	}

	// Missing event ID should return empty string
	if got := EventIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty string when no event ID present, got %q", got)
	}
}

func TestContextWithEventID_EmptyEventID(t *testing.T) {
	ctx := context.Background()
	// Empty event ID should return original context
	result := ContextWithEventID(ctx, "")
	if result != ctx {
		t.Fatal("expected original context when event ID is empty")
	}
}
