package service

import "context"

type contextKey string

const (
	principalKey contextKey = "principal"
	traceIDKey   contextKey = "trace_id"
)

// Principal is the authenticated identity supplied by the auth layer.
// The core only ever consumes id + role, never credential material.
type Principal struct {
	ID   string
	Name string
	Role string
}

// WithPrincipal injects the principal into the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal retrieves the principal from the context, nil if absent.
func GetPrincipal(ctx context.Context) *Principal {
	val, ok := ctx.Value(principalKey).(*Principal)
	if !ok {
		return nil
	}
	return val
}

// WithTraceID carries the request trace id so the audit writer can stamp
// records with it.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

// TraceIDFrom returns the trace id from the context, empty if absent.
func TraceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}
