package rpc

import "context"

// Transport names how a call reached the router.
type Transport string

const (
	TransportHTTP      Transport = "http"
	TransportInProcess Transport = "inprocess"
)

// Meta carries per-call information for handlers and middleware.
type Meta struct {
	Procedure string
	Kind      Kind
	Transport Transport
	TraceID   string
}

type metaKey struct{}

// WithMeta returns a copy of ctx carrying m.
func WithMeta(ctx context.Context, m Meta) context.Context {
	return context.WithValue(ctx, metaKey{}, m)
}

// MetaFromContext returns the call metadata stored in ctx, if any.
func MetaFromContext(ctx context.Context) (Meta, bool) {
	m, ok := ctx.Value(metaKey{}).(Meta)
	return m, ok
}
