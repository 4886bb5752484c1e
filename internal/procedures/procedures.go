package procedures

import (
	"context"
	"errors"

	"github.com/phrazzld/scaffold-api/internal/events"
	"github.com/phrazzld/scaffold-api/internal/rpc"
	"github.com/phrazzld/scaffold-api/internal/schema"
)

// Procedure names.
const (
	HelloProcedure  = "hello"
	InvokeProcedure = "invoke"
)

// HelloWorldEvent is the event sent by the invoke mutation.
const HelloWorldEvent = "test/hello.world"

// TextInput is the input of both hello and invoke. Any string is accepted,
// including empty and whitespace-only text.
type TextInput struct {
	Text string `json:"text"`
}

// HelloOutput is the result of hello.
type HelloOutput struct {
	Greeting string `json:"greeting"`
}

// InvokeOutput is the result of invoke: the ids the event system assigned.
type InvokeOutput struct {
	IDs []string `json:"ids"`
}

// TextInputSchema validates TextInput.
var TextInputSchema = schema.MustJSON[TextInput]("text-input", `{
	"type": "object",
	"properties": {
		"text": {"type": "string"}
	},
	"required": ["text"]
}`)

// Deps holds the collaborators procedure handlers need.
type Deps struct {
	Dispatcher events.Dispatcher
}

// New returns every procedure, wired to deps.
func New(deps Deps) ([]rpc.Procedure, error) {
	if deps.Dispatcher == nil {
		return nil, errors.New("procedures: dispatcher is required")
	}

	return []rpc.Procedure{
		rpc.Query[TextInput, HelloOutput](HelloProcedure, TextInputSchema, Hello),
		rpc.Mutation[TextInput, InvokeOutput](InvokeProcedure, TextInputSchema, invoke(deps.Dispatcher)),
	}, nil
}

// Hello greets text exactly as given.
func Hello(_ context.Context, in TextInput) (HelloOutput, error) {
	return HelloOutput{Greeting: "hello " + in.Text}, nil
}

// invoke sends text as the email field of a HelloWorldEvent. A dispatch
// failure is returned as is and fails the mutation.
func invoke(dispatcher events.Dispatcher) rpc.Handler[TextInput, InvokeOutput] {
	return func(ctx context.Context, in TextInput) (InvokeOutput, error) {
		ack, err := dispatcher.Dispatch(ctx, HelloWorldEvent, map[string]any{
			"email": in.Text,
		})
		if err != nil {
			return InvokeOutput{}, err
		}
		return InvokeOutput{IDs: ack.IDs}, nil
	}
}
