package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoggingLevels(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dispatchErr := &upstreamError{msg: "send to a@b.com refused"}
	router, err := NewRouter(
		[]Procedure{
			Query[echoInput, echoOutput]("echo", echoSchema, echoHandler),
			Mutation[echoInput, echoOutput]("dispatch", echoSchema, func(context.Context, echoInput) (echoOutput, error) {
				return echoOutput{}, dispatchErr
			}),
		},
		WithMiddleware(Logging(logger)),
	)
	require.NoError(t, err)

	ctx := WithMeta(context.Background(), Meta{Transport: TransportHTTP, TraceID: "trace-1"})
	_, _ = router.Call(ctx, "echo", map[string]any{"text": "ok"})
	_, _ = router.Call(ctx, "echo", map[string]any{"text": 1})
	_, _ = router.Call(ctx, "dispatch", map[string]any{"text": "x"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	entries := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}

	assert.Equal(t, "DEBUG", entries[0]["level"])
	assert.Equal(t, "OK", entries[0]["code"])
	assert.Equal(t, "trace-1", entries[0]["trace_id"])
	assert.Equal(t, "http", entries[0]["transport"])

	assert.Equal(t, "DEBUG", entries[1]["level"])
	assert.Equal(t, "BAD_REQUEST", entries[1]["code"])

	assert.Equal(t, "ERROR", entries[2]["level"])
	assert.Equal(t, "BAD_GATEWAY", entries[2]["code"])
	assert.NotContains(t, entries[2]["error"], "a@b.com")
	assert.Equal(t, "*rpc.upstreamError", entries[2]["error_type"])
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	router, err := NewRouter(
		[]Procedure{Query[echoInput, echoOutput]("echo", echoSchema, echoHandler)},
		WithMiddleware(metrics.Middleware()),
	)
	require.NoError(t, err)

	_, _ = router.Call(context.Background(), "echo", map[string]any{"text": "ok"})
	_, _ = router.Call(context.Background(), "echo", map[string]any{"text": "ok"})
	_, _ = router.Call(context.Background(), "echo", map[string]any{})

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.calls.WithLabelValues("echo", "query", "inprocess", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.calls.WithLabelValues("echo", "query", "inprocess", "BAD_REQUEST")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.duration))

	again, err := NewMetrics(reg)
	require.NoError(t, err, "registering twice reuses the collectors")
	assert.Same(t, metrics.calls, again.calls)
}

func TestTracingPassesThrough(t *testing.T) {
	handlerErr := errors.New("boom")
	router, err := NewRouter(
		[]Procedure{
			Query[echoInput, echoOutput]("echo", echoSchema, echoHandler),
			Mutation[echoInput, echoOutput]("fail", echoSchema, func(context.Context, echoInput) (echoOutput, error) {
				return echoOutput{}, handlerErr
			}),
		},
		WithMiddleware(Tracing(noop.NewTracerProvider().Tracer("test"))),
	)
	require.NoError(t, err)

	out, err := router.Call(context.Background(), "echo", map[string]any{"text": "x"})
	require.NoError(t, err)
	assert.Equal(t, echoOutput{Echo: "x"}, out)

	_, err = router.Call(context.Background(), "fail", map[string]any{"text": "x"})
	assert.Same(t, handlerErr, err)
}

type upstreamError struct{ msg string }

func (e *upstreamError) Error() string  { return e.msg }
func (e *upstreamError) Upstream() bool { return true }

func TestCodeOfUpstreamError(t *testing.T) {
	err := &upstreamError{msg: "down"}
	assert.Equal(t, CodeBadGateway, CodeOf(err))
	assert.Equal(t, 502, CodeOf(err).HTTPStatus())

	wrapped := fmt.Errorf("invoke: %w", err)
	assert.Equal(t, CodeBadGateway, CodeOf(wrapped))
}
