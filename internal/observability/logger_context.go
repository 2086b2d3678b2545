package observability

import (
	"context"
	"log/slog"
)

// loggerContextKey is the private context key used to store a *slog.Logger.
type loggerContextKey struct{}

// eventIDContextKey is the private context key used to store the originating
// event_id so that spawned preload/transform/publish tasks can correlate
// their logs with the consumed record.
type eventIDContextKey struct{}

// ContextWithLogger attaches a non-nil logger to the context.
func ContextWithLogger(ctx context.Context, lg *slog.Logger) context.Context {
	if ctx == nil || lg == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, lg)
}

// LoggerFromContext returns the logger stored in the context or the default
// slog logger when none is present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if v := ctx.Value(loggerContextKey{}); v != nil {
		if lg, ok := v.(*slog.Logger); ok && lg != nil {
			return lg
		}
	}
	return slog.Default()
}

// ContextWithEventID stores a non-empty event_id in the context so that
// downstream layers (repositories, publisher, dead-letter sink) can correlate
// their logs with the event being processed.
func ContextWithEventID(ctx context.Context, eventID string) context.Context {
	if ctx == nil || eventID == "" {
		return ctx
	}
	return context.WithValue(ctx, eventIDContextKey{}, eventID)
}

// EventIDFromContext retrieves the event_id from the context, or an empty
// string when none is present.
func EventIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(eventIDContextKey{}); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
