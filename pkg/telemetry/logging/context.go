package logging

import (
	"context"
	"log/slog"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	apiKeyKey    contextKey = "api_key"
	backendKey   contextKey = "backend"
)

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID extracts the request ID from the context, or "" if unset.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithAPIKeyName returns a context carrying the authenticated key name.
// Only the key's display name is stored, never the secret.
func WithAPIKeyName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, apiKeyKey, name)
}

// APIKeyName extracts the authenticated key name from the context.
func APIKeyName(ctx context.Context) string {
	name, _ := ctx.Value(apiKeyKey).(string)
	return name
}

// WithBackend returns a context carrying the selected backend name.
func WithBackend(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, backendKey, name)
}

// Backend extracts the selected backend name from the context.
func Backend(ctx context.Context) string {
	name, _ := ctx.Value(backendKey).(string)
	return name
}

// ContextAttrs collects the request-scoped fields present in ctx as slog
// arguments, suitable for passing to slog.Logger.With.
func ContextAttrs(ctx context.Context) []any {
	var args []any
	if id := RequestID(ctx); id != "" {
		args = append(args, slog.String("request_id", id))
	}
	if name := APIKeyName(ctx); name != "" {
		args = append(args, slog.String("api_key", name))
	}
	if backend := Backend(ctx); backend != "" {
		args = append(args, slog.String("backend", backend))
	}
	return args
}
