package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is a private type for context keys defined in this package.
type contextKey string

// traceIDKey carries the correlation id of one logical fetch.
const traceIDKey contextKey = "trace_id"

// WithTraceID returns a context carrying the given trace id.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// EnsureTraceID returns a context that carries a trace id, generating a new
// UUID when the incoming context has none. Adapters call it at the top of
// each fetch so every upstream request and log line shares one id.
func EnsureTraceID(ctx context.Context) context.Context {
	if TraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, uuid.NewString())
}

// TraceID retrieves the trace id from the context, or "".
func TraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}
