package rpc

import (
	"context"
	"fmt"
	"sort"
)

// CallFunc runs a resolved procedure with raw input.
type CallFunc func(ctx context.Context, p Procedure, raw any) (any, error)

// Middleware wraps every call. Implementations must return the inner result
// and error unchanged.
type Middleware func(next CallFunc) CallFunc

// Option configures a Router.
type Option func(*Router)

// WithMiddleware appends interceptors. The first one given is the outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// Router is the procedure registry and call pipeline. It is read-only after
// NewRouter returns and safe for any number of concurrent callers.
type Router struct {
	procedures map[string]Procedure
	middleware []Middleware
	call       CallFunc
}

// NewRouter registers procs. Registration fails on an empty or duplicate name,
// or on a procedure without a schema or handler.
func NewRouter(procs []Procedure, opts ...Option) (*Router, error) {
	r := &Router{procedures: make(map[string]Procedure, len(procs))}
	for _, opt := range opts {
		opt(r)
	}

	for _, p := range procs {
		if err := r.register(p); err != nil {
			return nil, err
		}
	}

	call := invoke
	for i := len(r.middleware) - 1; i >= 0; i-- {
		call = r.middleware[i](call)
	}
	r.call = call

	return r, nil
}

func (r *Router) register(p Procedure) error {
	if p == nil {
		return fmt.Errorf("%w: nil procedure", ErrInvalidProcedure)
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidProcedure)
	}
	if p.Kind() != KindQuery && p.Kind() != KindMutation {
		return fmt.Errorf("%w: %q has unknown kind %q", ErrInvalidProcedure, name, p.Kind())
	}
	if typed, ok := p.(interface{ valid() bool }); ok && !typed.valid() {
		return fmt.Errorf("%w: %q needs an input schema and a handler", ErrInvalidProcedure, name)
	}
	if _, exists := r.procedures[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateProcedure, name)
	}
	r.procedures[name] = p
	return nil
}

// Resolve returns the procedure registered under name.
func (r *Router) Resolve(name string) (Procedure, error) {
	p, ok := r.procedures[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return p, nil
}

// Call resolves name, validates raw against the procedure's schema and runs
// the handler. The handler's result and error are returned as they are.
func (r *Router) Call(ctx context.Context, name string, raw any) (any, error) {
	p, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	return r.CallProcedure(ctx, p, raw)
}

// CallProcedure runs an already resolved procedure through the middleware
// chain. Transports that check the procedure kind before calling use it to
// avoid a second lookup.
func (r *Router) CallProcedure(ctx context.Context, p Procedure, raw any) (any, error) {
	meta, _ := MetaFromContext(ctx)
	if meta.Transport == "" {
		meta.Transport = TransportInProcess
	}
	meta.Procedure = p.Name()
	meta.Kind = p.Kind()
	ctx = WithMeta(ctx, meta)

	return r.call(ctx, p, raw)
}

// Procedures lists the registered procedures sorted by name.
func (r *Router) Procedures() []Info {
	infos := make([]Info, 0, len(r.procedures))
	for _, p := range r.procedures {
		infos = append(infos, Info{Name: p.Name(), Kind: p.Kind(), Schema: p.SchemaID()})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

func invoke(ctx context.Context, p Procedure, raw any) (any, error) {
	return p.Invoke(ctx, raw)
}

// CallAs calls name in-process and asserts the output type. It is the typed
// surface used by server-side rendering code.
func CallAs[Out any](ctx context.Context, r *Router, name string, input any) (Out, error) {
	var zero Out

	out, err := r.Call(ctx, name, input)
	if err != nil {
		return zero, err
	}

	typed, ok := out.(Out)
	if !ok {
		return zero, fmt.Errorf("procedure %q returned %T, want %T", name, out, zero)
	}
	return typed, nil
}
