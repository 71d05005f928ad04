package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("molang")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartCompileSpan starts a span for compiling a script.
	// script is empty for anonymous sources.
	StartCompileSpan(ctx context.Context, script string, sourceLen int) (context.Context, trace.Span)

	// StartEvaluateSpan starts a span for one evaluation of a script.
	StartEvaluateSpan(ctx context.Context, script, runtimeID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func (m *otelSpanManager) StartCompileSpan(ctx context.Context, script string, sourceLen int) (context.Context, trace.Span) {
	return StartCompileSpan(ctx, script, sourceLen)
}

func (m *otelSpanManager) StartEvaluateSpan(ctx context.Context, script, runtimeID string) (context.Context, trace.Span) {
	return StartEvaluateSpan(ctx, script, runtimeID)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// StartCompileSpan starts a compile span on the global tracer.
func StartCompileSpan(ctx context.Context, script string, sourceLen int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "molang.compile",
		trace.WithAttributes(
			attribute.String("script.name", script),
			attribute.Int("source.length", sourceLen),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartEvaluateSpan starts an evaluation span on the global tracer.
func StartEvaluateSpan(ctx context.Context, script, runtimeID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "molang.evaluate."+script,
		trace.WithAttributes(
			attribute.String("script.name", script),
			attribute.String("runtime.id", runtimeID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
