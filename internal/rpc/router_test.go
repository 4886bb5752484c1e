package rpc

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scaffold-api/internal/schema"
)

type echoInput struct {
	Text string `json:"text"`
}

type echoOutput struct {
	Echo string `json:"echo"`
}

var echoSchema = schema.MustJSON[echoInput]("echo-input", `{
	"type": "object",
	"properties": {"text": {"type": "string"}},
	"required": ["text"]
}`)

func echoHandler(_ context.Context, in echoInput) (echoOutput, error) {
	return echoOutput{Echo: in.Text}, nil
}

func TestNewRouterRegistration(t *testing.T) {
	t.Run("duplicate name", func(t *testing.T) {
		_, err := NewRouter([]Procedure{
			Query[echoInput, echoOutput]("echo", echoSchema, echoHandler),
			Mutation[echoInput, echoOutput]("echo", echoSchema, echoHandler),
		})
		assert.ErrorIs(t, err, ErrDuplicateProcedure)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewRouter([]Procedure{Query[echoInput, echoOutput]("", echoSchema, echoHandler)})
		assert.ErrorIs(t, err, ErrInvalidProcedure)
	})

	t.Run("missing schema", func(t *testing.T) {
		_, err := NewRouter([]Procedure{Query[echoInput, echoOutput]("echo", nil, echoHandler)})
		assert.ErrorIs(t, err, ErrInvalidProcedure)
	})

	t.Run("missing handler", func(t *testing.T) {
		_, err := NewRouter([]Procedure{Query[echoInput, echoOutput]("echo", echoSchema, nil)})
		assert.ErrorIs(t, err, ErrInvalidProcedure)
	})

	t.Run("nil procedure", func(t *testing.T) {
		_, err := NewRouter([]Procedure{nil})
		assert.ErrorIs(t, err, ErrInvalidProcedure)
	})
}

func TestResolve(t *testing.T) {
	router, err := NewRouter([]Procedure{Query[echoInput, echoOutput]("echo", echoSchema, echoHandler)})
	require.NoError(t, err)

	p, err := router.Resolve("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", p.Name())
	assert.Equal(t, KindQuery, p.Kind())
	assert.Equal(t, "echo-input", p.SchemaID())

	_, err = router.Resolve("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.Name)

	_, err = router.Call(context.Background(), "missing", map[string]any{"text": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCallValidatesBeforeHandler(t *testing.T) {
	var calls int
	router, err := NewRouter([]Procedure{
		Query[echoInput, echoOutput]("echo", echoSchema, func(ctx context.Context, in echoInput) (echoOutput, error) {
			calls++
			return echoOutput{Echo: in.Text}, nil
		}),
	})
	require.NoError(t, err)

	_, err = router.Call(context.Background(), "echo", map[string]any{"text": 42})
	assert.ErrorIs(t, err, schema.ErrValidation)
	assert.Zero(t, calls)

	out, err := router.Call(context.Background(), "echo", map[string]any{"text": " x "})
	require.NoError(t, err)
	assert.Equal(t, echoOutput{Echo: " x "}, out)
	assert.Equal(t, 1, calls)
}

type appError struct{ reason string }

func (e *appError) Error() string { return e.reason }

func TestCallReturnsHandlerErrorUnchanged(t *testing.T) {
	handlerErr := &appError{reason: "quota exceeded"}
	router, err := NewRouter(
		[]Procedure{
			Mutation[echoInput, echoOutput]("fail", echoSchema, func(context.Context, echoInput) (echoOutput, error) {
				return echoOutput{Echo: "partial"}, handlerErr
			}),
		},
		WithMiddleware(Logging(discardLogger()), Tracing(nil)),
	)
	require.NoError(t, err)

	out, err := router.Call(context.Background(), "fail", map[string]any{"text": "x"})
	assert.Nil(t, out)
	assert.Same(t, handlerErr, err)
	assert.Equal(t, CodeInternalServerError, CodeOf(err))
}

func TestMiddlewareOrderAndMeta(t *testing.T) {
	var order []string
	var seen Meta
	record := func(name string) Middleware {
		return func(next CallFunc) CallFunc {
			return func(ctx context.Context, p Procedure, raw any) (any, error) {
				order = append(order, name+":before")
				out, err := next(ctx, p, raw)
				order = append(order, name+":after")
				return out, err
			}
		}
	}

	router, err := NewRouter(
		[]Procedure{
			Query[echoInput, echoOutput]("echo", echoSchema, func(ctx context.Context, in echoInput) (echoOutput, error) {
				seen, _ = MetaFromContext(ctx)
				order = append(order, "handler")
				return echoOutput{Echo: in.Text}, nil
			}),
		},
		WithMiddleware(record("outer"), record("inner")),
	)
	require.NoError(t, err)

	_, err = router.Call(context.Background(), "echo", map[string]any{"text": "x"})
	require.NoError(t, err)

	assert.Equal(t, []string{"outer:before", "inner:before", "handler", "inner:after", "outer:after"}, order)
	assert.Equal(t, Meta{Procedure: "echo", Kind: KindQuery, Transport: TransportInProcess}, seen)

	ctx := WithMeta(context.Background(), Meta{Transport: TransportHTTP, TraceID: "abc"})
	_, err = router.Call(ctx, "echo", map[string]any{"text": "x"})
	require.NoError(t, err)
	assert.Equal(t, Meta{Procedure: "echo", Kind: KindQuery, Transport: TransportHTTP, TraceID: "abc"}, seen)
}

func TestCallAs(t *testing.T) {
	router, err := NewRouter([]Procedure{Query[echoInput, echoOutput]("echo", echoSchema, echoHandler)})
	require.NoError(t, err)

	out, err := CallAs[echoOutput](context.Background(), router, "echo", echoInput{Text: "typed"})
	require.NoError(t, err)
	assert.Equal(t, "typed", out.Echo)

	_, err = CallAs[string](context.Background(), router, "echo", echoInput{Text: "typed"})
	assert.Error(t, err)

	_, err = CallAs[echoOutput](context.Background(), router, "echo", map[string]any{"text": 1})
	assert.ErrorIs(t, err, schema.ErrValidation)
}

func TestProceduresSorted(t *testing.T) {
	router, err := NewRouter([]Procedure{
		Mutation[echoInput, echoOutput]("zeta", echoSchema, echoHandler),
		Query[echoInput, echoOutput]("alpha", echoSchema, echoHandler),
	})
	require.NoError(t, err)

	assert.Equal(t, []Info{
		{Name: "alpha", Kind: KindQuery, Schema: "echo-input"},
		{Name: "zeta", Kind: KindMutation, Schema: "echo-input"},
	}, router.Procedures())
}

func TestConcurrentCalls(t *testing.T) {
	router, err := NewRouter([]Procedure{Query[echoInput, echoOutput]("echo", echoSchema, echoHandler)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := router.Call(context.Background(), "echo", map[string]any{"text": "x"})
			assert.NoError(t, err)
			assert.Equal(t, echoOutput{Echo: "x"}, out)
		}()
	}
	wg.Wait()
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   Code
		status int
	}{
		{name: "nil", err: nil, code: CodeOK, status: 200},
		{name: "parse", err: ErrParse, code: CodeParseError, status: 400},
		{name: "validation", err: schema.NewValidationError("s", "/text", "bad"), code: CodeBadRequest, status: 400},
		{name: "not found", err: &NotFoundError{Name: "x"}, code: CodeNotFound, status: 404},
		{name: "method", err: ErrMethodNotSupported, code: CodeMethodNotSupported, status: 405},
		{name: "handler", err: errors.New("boom"), code: CodeInternalServerError, status: 500},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code := CodeOf(tc.err)
			assert.Equal(t, tc.code, code)
			assert.Equal(t, tc.status, code.HTTPStatus())
		})
	}

	assert.True(t, CodeBadRequest.IsClientError())
	assert.False(t, CodeBadGateway.IsClientError())
	assert.False(t, CodeOK.IsClientError())
}
