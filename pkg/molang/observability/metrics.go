package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records molang metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordCompile records one compilation with its duration and error status.
	RecordCompile(ctx context.Context, duration time.Duration, err error)

	// RecordEvaluate records one evaluation of a named script.
	RecordEvaluate(ctx context.Context, script string, duration time.Duration, err error)

	// RecordCacheLookup records a compile cache lookup.
	RecordCacheLookup(ctx context.Context, hit bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	compiles       metric.Int64Counter
	compileLatency metric.Float64Histogram
	compileErrors  metric.Int64Counter
	evals          metric.Int64Counter
	evalLatency    metric.Float64Histogram
	evalErrors     metric.Int64Counter
	cacheLookups   metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the shared OTel metrics instance.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("molang")

	compiles, err := meter.Int64Counter("molang.compile.count",
		metric.WithDescription("Number of script compilations"),
	)
	if err != nil {
		return nil, err
	}

	compileLatency, err := meter.Float64Histogram("molang.compile.latency_ms",
		metric.WithDescription("Script compilation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	compileErrors, err := meter.Int64Counter("molang.compile.errors",
		metric.WithDescription("Number of failed compilations"),
	)
	if err != nil {
		return nil, err
	}

	evals, err := meter.Int64Counter("molang.eval.count",
		metric.WithDescription("Number of script evaluations"),
	)
	if err != nil {
		return nil, err
	}

	evalLatency, err := meter.Float64Histogram("molang.eval.latency_ms",
		metric.WithDescription("Script evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	evalErrors, err := meter.Int64Counter("molang.eval.errors",
		metric.WithDescription("Number of failed evaluations"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter("molang.cache.lookups",
		metric.WithDescription("Compile cache lookups by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		compiles:       compiles,
		compileLatency: compileLatency,
		compileErrors:  compileErrors,
		evals:          evals,
		evalLatency:    evalLatency,
		evalErrors:     evalErrors,
		cacheLookups:   cacheLookups,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordCompile records a compilation.
func (m *otelMetrics) RecordCompile(ctx context.Context, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.Bool("success", err == nil))
	m.compiles.Add(ctx, 1, attrs)
	m.compileLatency.Record(ctx, durationMs(duration), attrs)
	if err != nil {
		m.compileErrors.Add(ctx, 1)
	}
}

// RecordEvaluate records an evaluation.
func (m *otelMetrics) RecordEvaluate(ctx context.Context, script string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("script", script))
	m.evals.Add(ctx, 1, attrs)
	m.evalLatency.Record(ctx, durationMs(duration), attrs)
	if err != nil {
		m.evalErrors.Add(ctx, 1, attrs)
	}
}

// RecordCacheLookup records a cache lookup.
func (m *otelMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", hit)))
}
