package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTracingTest installs a tracer provider that records into memory.
func setupTracingTest(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("molang")

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		tracer = otel.Tracer("molang")
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	})
	return exporter
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestSpanManager(t *testing.T) {
	managers := map[string]SpanManager{
		"package functions": nil,
		"otel manager":      NewSpanManager(),
	}

	for name, sm := range managers {
		t.Run(name, func(t *testing.T) {
			exporter := setupTracingTest(t)

			startCompile := StartCompileSpan
			startEval := StartEvaluateSpan
			end := EndSpanWithError
			if sm != nil {
				startCompile = sm.StartCompileSpan
				startEval = sm.StartEvaluateSpan
				end = sm.EndSpanWithError
			}

			ctx, compileSpan := startCompile(context.Background(), "walk", 42)
			assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
			end(compileSpan, nil)

			_, evalSpan := startEval(context.Background(), "walk", "rt-7")
			end(evalSpan, errors.New("unknown binding query.speed"))

			spans := exporter.GetSpans()
			require.Len(t, spans, 2)

			compile := spans[0]
			assert.Equal(t, "molang.compile", compile.Name)
			assert.Equal(t, codes.Ok, compile.Status.Code)
			attrs := attrMap(compile.Attributes)
			assert.Equal(t, "walk", attrs["script.name"].AsString())
			assert.Equal(t, int64(42), attrs["source.length"].AsInt64())

			eval := spans[1]
			assert.Equal(t, "molang.evaluate.walk", eval.Name)
			assert.Equal(t, codes.Error, eval.Status.Code)
			assert.Equal(t, "unknown binding query.speed", eval.Status.Description)
			assert.Equal(t, "rt-7", attrMap(eval.Attributes)["runtime.id"].AsString())
			require.NotEmpty(t, eval.Events, "RecordError should add an exception event")
		})
	}
}

func TestAddSpanEvent(t *testing.T) {
	exporter := setupTracingTest(t)

	ctx, span := StartEvaluateSpan(context.Background(), "walk", "rt-1")
	AddSpanEvent(ctx, "fallback", attribute.Float64("value", 0))
	NewSpanManager().AddSpanEvent(ctx, "cache.hit")
	EndSpanWithError(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 2)
	assert.Equal(t, "fallback", spans[0].Events[0].Name)
	assert.Equal(t, "cache.hit", spans[0].Events[1].Name)
}

func TestAddSpanEvent_NoSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		AddSpanEvent(context.Background(), "orphan")
	})
}

func TestEndSpanWithError_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		EndSpanWithError(nil, errors.New("x"))
	})
}
