// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// ActorKey is the context key for the acting user's name.
// Exported so it can be used consistently across packages.
type ActorKey struct{}

// WithActor returns a context carrying the acting user's name.
// Audit log entries written under this context are attributed to it.
func WithActor(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ActorKey{}, name)
}

// ActorFromContext returns the acting user's name, or empty string if not set.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ActorKey{}).(string); ok {
		return v
	}
	return ""
}
