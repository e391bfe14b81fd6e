package telemetry

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fxsml/mediate/message"
)

// Span and metric names recorded by the instrumentation.
const (
	SpanNamePrefix     = "mediate "
	DurationMetricName = "mediate.duration"
	HaltedMetricName   = "mediate.halted"
)

// Attribute keys set on spans and metrics.
var (
	MediatorNameKey = attribute.Key("mediate.mediator.name")
	MediatorKindKey = attribute.Key("mediate.mediator.kind")
	MessageIDKey    = attribute.Key("mediate.message.id")
	ScopeDepthKey   = attribute.Key("mediate.scope.depth")
	ContinueKey     = attribute.Key("mediate.continue")
)

// Instrument wraps m so every run records a span named "mediate <name>",
// a duration histogram in milliseconds and a counter of runs that halted
// the pipeline. The returned mediator keeps the Kind of m.
func Instrument(name string, m message.Mediator, opts ...Option) (message.Mediator, error) {
	mw, err := Middleware(name, m.Kind(), opts...)
	if err != nil {
		return nil, err
	}
	return message.Apply(m, mw), nil
}

// Middleware returns the instrumentation as a message.Middleware.
func Middleware(name string, kind message.Kind, opts ...Option) (message.Middleware, error) {
	cfg := newConfig(opts...)
	tracer := cfg.tracer()
	meter := cfg.meter()

	duration, err := meter.Float64Histogram(DurationMetricName,
		metric.WithUnit("ms"),
		metric.WithDescription("Duration of a mediator run"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: duration histogram: %w", err)
	}
	halted, err := meter.Int64Counter(HaltedMetricName,
		metric.WithDescription("Mediator runs that stopped the pipeline"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: halted counter: %w", err)
	}

	base := []attribute.KeyValue{
		MediatorNameKey.String(name),
		MediatorKindKey.String(kind.String()),
	}
	measured := metric.WithAttributes(base...)

	return func(next message.MediateFunc) message.MediateFunc {
		return func(ctx context.Context, msg *message.Context) (bool, error) {
			ctx, span := tracer.Start(ctx, SpanNamePrefix+name, trace.WithAttributes(slices.Concat(base, []attribute.KeyValue{
				MessageIDKey.String(msg.ID()),
				ScopeDepthKey.Int(msg.Properties().Depth()),
			})...))
			defer span.End()

			start := time.Now()
			ok, err := next(ctx, msg)
			duration.Record(ctx, float64(time.Since(start))/float64(time.Millisecond), measured)

			span.SetAttributes(ContinueKey.Bool(ok))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			if !ok {
				halted.Add(ctx, 1, measured)
			}
			return ok, err
		}
	}, nil
}
