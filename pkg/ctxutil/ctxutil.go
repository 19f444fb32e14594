// Package ctxutil provides helpers for storing and retrieving request-scoped values in context.
package ctxutil

import "context"

// key is an unexported type to avoid collisions.
type key int

const (
	requestIDKey key = iota
	clientIDKey
)

// WithRequestID returns a new context with the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID extracts the request ID from the context, if set.
func RequestID(ctx context.Context) string { return stringValue(ctx, requestIDKey) }

// WithClientID returns a new context with the given client ID.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey, id)
}

// ClientID extracts the client ID from the context, if set.
func ClientID(ctx context.Context) string { return stringValue(ctx, clientIDKey) }

func stringValue(ctx context.Context, k key) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(k).(string); ok {
		return s
	}
	return ""
}
