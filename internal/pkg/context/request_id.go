// Package context carries per-request metadata across layer boundaries
// without widening signatures. The only value today is the request id minted
// by the REST middleware; it flows into log lines, audit records and the
// trace_id of staged outbox rows.
package context

import "context"

type requestIDKey struct{}

// WithRequestID stores the request id for the lifetime of one HTTP request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the stored request id, or "" outside a request scope
// (workers, tests, startup).
func GetRequestID(ctx context.Context) string {
	v := ctx.Value(requestIDKey{})
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
