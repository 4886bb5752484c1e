package rpc

import (
	"context"

	"github.com/phrazzld/scaffold-api/internal/schema"
)

// Kind distinguishes side-effect-free procedures from ones that may mutate.
type Kind string

const (
	// KindQuery procedures have no side effects; callers may cache them.
	KindQuery Kind = "query"
	// KindMutation procedures may have side effects and are never retried.
	KindMutation Kind = "mutation"
)

// Handler is the typed body of a procedure. It only ever sees validated input.
type Handler[In, Out any] func(ctx context.Context, in In) (Out, error)

// Procedure is a registered unit of server-side logic with its type erased so
// that procedures with different input and output types share one registry.
type Procedure interface {
	Name() string
	Kind() Kind
	SchemaID() string

	// Invoke validates raw and runs the handler. Validation failures are
	// returned as *schema.ValidationError and the handler is not called. The
	// output is nil whenever the error is not.
	Invoke(ctx context.Context, raw any) (any, error)
}

type procedure[In, Out any] struct {
	name    string
	kind    Kind
	input   schema.Schema[In]
	handler Handler[In, Out]
}

// Query declares a side-effect-free procedure.
func Query[In, Out any](name string, input schema.Schema[In], handler Handler[In, Out]) Procedure {
	return &procedure[In, Out]{name: name, kind: KindQuery, input: input, handler: handler}
}

// Mutation declares a procedure that may perform side effects.
func Mutation[In, Out any](name string, input schema.Schema[In], handler Handler[In, Out]) Procedure {
	return &procedure[In, Out]{name: name, kind: KindMutation, input: input, handler: handler}
}

func (p *procedure[In, Out]) Name() string { return p.name }

func (p *procedure[In, Out]) Kind() Kind { return p.kind }

func (p *procedure[In, Out]) SchemaID() string {
	if p.input == nil {
		return ""
	}
	return p.input.ID()
}

func (p *procedure[In, Out]) Invoke(ctx context.Context, raw any) (any, error) {
	in, err := p.input.Validate(raw)
	if err != nil {
		return nil, err
	}
	out, err := p.handler(ctx, in)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Info describes a registered procedure.
type Info struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Schema string `json:"schema"`
}

func (p *procedure[In, Out]) valid() bool {
	return p.input != nil && p.handler != nil
}
