package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/phrazzld/scaffold-api/internal/redact"
)

// Logging logs the outcome of every call. Server errors are logged at ERROR,
// everything else at DEBUG.
func Logging(logger *slog.Logger) Middleware {
	log := logger.With("component", "rpc")
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, p Procedure, raw any) (any, error) {
			start := time.Now()
			out, err := next(ctx, p, raw)

			meta, _ := MetaFromContext(ctx)
			code := CodeOf(err)
			attrs := []slog.Attr{
				slog.String("procedure", p.Name()),
				slog.String("kind", string(p.Kind())),
				slog.String("transport", string(meta.Transport)),
				slog.String("code", string(code)),
				slog.Duration("duration", time.Since(start)),
			}
			if meta.TraceID != "" {
				attrs = append(attrs, slog.String("trace_id", meta.TraceID))
			}

			level := slog.LevelDebug
			if err != nil {
				attrs = append(attrs,
					slog.String("error", redact.Error(err)),
					slog.String("error_type", fmt.Sprintf("%T", err)))
				if !code.IsClientError() {
					level = slog.LevelError
				}
			}
			log.LogAttrs(ctx, level, "procedure call completed", attrs...)

			return out, err
		}
	}
}

// Metrics records call counts and latencies with Prometheus.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A collector
// that is already registered is reused, so building several routers against
// the default registerer is safe.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	calls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scaffold",
			Subsystem: "rpc",
			Name:      "calls_total",
			Help:      "Procedure calls by procedure, kind, transport and result code.",
		},
		[]string{"procedure", "kind", "transport", "code"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scaffold",
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "Procedure call latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"procedure", "kind"},
	)

	var err error
	if calls, err = registerOrReuse(reg, calls); err != nil {
		return nil, err
	}
	if duration, err = registerOrReuse(reg, duration); err != nil {
		return nil, err
	}

	return &Metrics{calls: calls, duration: duration}, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("failed to register rpc metrics: %w", err)
	}
	return c, nil
}

// Middleware returns the interceptor that feeds m.
func (m *Metrics) Middleware() Middleware {
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, p Procedure, raw any) (any, error) {
			start := time.Now()
			out, err := next(ctx, p, raw)

			meta, _ := MetaFromContext(ctx)
			m.calls.WithLabelValues(p.Name(), string(p.Kind()), string(meta.Transport), string(CodeOf(err))).Inc()
			m.duration.WithLabelValues(p.Name(), string(p.Kind())).Observe(time.Since(start).Seconds())

			return out, err
		}
	}
}

// Tracing starts a span around every call. A nil tracer uses the global
// provider, which is a no-op unless an SDK has been installed.
func Tracing(tracer trace.Tracer) Middleware {
	if tracer == nil {
		tracer = otel.Tracer("github.com/phrazzld/scaffold-api/internal/rpc")
	}
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, p Procedure, raw any) (any, error) {
			meta, _ := MetaFromContext(ctx)
			ctx, span := tracer.Start(ctx, "rpc."+p.Name(),
				trace.WithAttributes(
					attribute.String("rpc.procedure", p.Name()),
					attribute.String("rpc.kind", string(p.Kind())),
					attribute.String("rpc.transport", string(meta.Transport)),
				))
			defer span.End()

			out, err := next(ctx, p, raw)

			code := CodeOf(err)
			span.SetAttributes(attribute.String("rpc.code", string(code)))
			if err != nil {
				span.RecordError(err)
				if !code.IsClientError() {
					span.SetStatus(codes.Error, string(code))
				}
			}
			return out, err
		}
	}
}
