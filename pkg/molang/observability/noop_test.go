package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordCompile(ctx, time.Millisecond, nil)
		m.RecordCompile(ctx, 0, errors.New("parse"))
		m.RecordEvaluate(ctx, "walk", time.Microsecond, nil)
		m.RecordEvaluate(ctx, "", 0, errors.New("x"))
		m.RecordCacheLookup(ctx, true)
	})
}

func TestNoopSpanManager(t *testing.T) {
	sm := NoopSpanManager{}
	ctx := context.Background()

	t.Run("returns context unchanged", func(t *testing.T) {
		got, span := sm.StartCompileSpan(ctx, "walk", 10)
		assert.Equal(t, ctx, got)
		assert.False(t, span.IsRecording())

		got, span = sm.StartEvaluateSpan(ctx, "walk", "rt-1")
		assert.Equal(t, ctx, got)
		assert.False(t, span.IsRecording())
	})

	t.Run("end and events do nothing", func(t *testing.T) {
		_, span := sm.StartEvaluateSpan(ctx, "walk", "rt-1")
		assert.NotPanics(t, func() {
			sm.AddSpanEvent(ctx, "event", attribute.String("k", "v"))
			sm.EndSpanWithError(span, errors.New("x"))
			sm.EndSpanWithError(nil, nil)
		})
	})
}
