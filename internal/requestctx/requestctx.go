// Package requestctx carries the per-request correlation ID through context
// so domain code can log it without importing the HTTP layer.
package requestctx

import "context"

type contextKey struct{}

// WithRequestID returns a child context tagged with the correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// GetRequestID returns the correlation ID, or "" when the context has none.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
