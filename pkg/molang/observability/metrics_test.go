package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest installs a meter provider backed by a manual reader.
func setupMetricsTest(t *testing.T) *sdkmetric.ManualReader {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	original := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	t.Cleanup(func() {
		otel.SetMeterProvider(original)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	})
	return reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumWhere totals the int64 sum data points carrying attr.
func sumWhere(t *testing.T, m *metricdata.Metrics, attr attribute.KeyValue) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64], got %T", m.Data)

	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attr.Key); ok && v == attr.Value {
			total += dp.Value
		}
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	setupMetricsTest(t)

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "expected real metrics recorder, got noop")
}

func TestRecordCompile(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordCompile(ctx, 2*time.Millisecond, nil)
	m.RecordCompile(ctx, time.Millisecond, errors.New("parse error"))

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(1), sumWhere(t, findMetric(rm, "molang.compile.count"), attribute.Bool("success", true)))
	assert.Equal(t, int64(1), sumWhere(t, findMetric(rm, "molang.compile.count"), attribute.Bool("success", false)))

	errs := findMetric(rm, "molang.compile.errors")
	require.NotNil(t, errs)
	sum, ok := errs.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)

	latency := findMetric(rm, "molang.compile.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.NotEmpty(t, hist.DataPoints)
}

func TestRecordEvaluate(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordEvaluate(ctx, "walk", 50*time.Microsecond, nil)
	m.RecordEvaluate(ctx, "walk", 50*time.Microsecond, nil)
	m.RecordEvaluate(ctx, "bob", 50*time.Microsecond, errors.New("unknown binding"))

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumWhere(t, findMetric(rm, "molang.eval.count"), attribute.String("script", "walk")))
	assert.Equal(t, int64(1), sumWhere(t, findMetric(rm, "molang.eval.count"), attribute.String("script", "bob")))
	assert.Equal(t, int64(1), sumWhere(t, findMetric(rm, "molang.eval.errors"), attribute.String("script", "bob")))
	assert.Equal(t, int64(0), sumWhere(t, findMetric(rm, "molang.eval.errors"), attribute.String("script", "walk")))

	latency := findMetric(rm, "molang.eval.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.NotEmpty(t, hist.DataPoints)
}

func TestRecordCacheLookup(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordCacheLookup(ctx, false)
	m.RecordCacheLookup(ctx, true)
	m.RecordCacheLookup(ctx, true)

	rm := collectMetrics(t, reader)
	lookups := findMetric(rm, "molang.cache.lookups")
	assert.Equal(t, int64(2), sumWhere(t, lookups, attribute.Bool("hit", true)))
	assert.Equal(t, int64(1), sumWhere(t, lookups, attribute.Bool("hit", false)))
}
