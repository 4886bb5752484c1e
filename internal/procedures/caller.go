package procedures

import (
	"context"

	"github.com/phrazzld/scaffold-api/internal/rpc"
)

// Caller calls procedures in-process, skipping HTTP but running the same
// validate-then-handle pipeline.
type Caller struct {
	router *rpc.Router
}

// NewCaller returns a Caller over router.
func NewCaller(router *rpc.Router) *Caller {
	return &Caller{router: router}
}

// Hello calls the hello query.
func (c *Caller) Hello(ctx context.Context, text string) (HelloOutput, error) {
	return rpc.CallAs[HelloOutput](ctx, c.router, HelloProcedure, TextInput{Text: text})
}

// Invoke calls the invoke mutation.
func (c *Caller) Invoke(ctx context.Context, text string) (InvokeOutput, error) {
	return rpc.CallAs[InvokeOutput](ctx, c.router, InvokeProcedure, TextInput{Text: text})
}
