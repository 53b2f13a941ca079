package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnrichLogger attaches run and step identity fields.
func TestEnrichLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	EnrichLogger(logger, "run-1", "generate", 2).Info("hello")

	out := buf.String()
	assert.Contains(t, out, "run_id=run-1")
	assert.Contains(t, out, "step_id=generate")
	assert.Contains(t, out, "attempt=2")
}

// TestEnrichLogger_Nil passes a nil logger through.
func TestEnrichLogger_Nil(t *testing.T) {
	assert.Nil(t, EnrichLogger(nil, "run-1", "a", 0))
}

// TestLogHelpers_NilSafe never panic on a nil logger.
func TestLogHelpers_NilSafe(t *testing.T) {
	require.NotPanics(t, func() {
		LogRunStart(nil, "run-1")
		LogRunComplete(nil, "run-1", time.Second, 3)
		LogRunError(nil, "run-1", errors.New("boom"), time.Second, "a")
		LogStepStart(nil, "a")
		LogStepComplete(nil, "a", time.Millisecond)
		LogStepError(nil, "a", errors.New("boom"))
		LogCheckpoint(nil, "a", 128)
		LogCheckpointError(nil, "a", "save", errors.New("boom"))
	})
}

// TestLogHelpers_Output records the expected messages and fields.
func TestLogHelpers_Output(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	LogRunStart(logger, "run-1")
	LogStepError(logger, "generate", errors.New("boom"))
	LogRunComplete(logger, "run-1", 1500*time.Millisecond, 4)

	out := buf.String()
	assert.Contains(t, out, "workflow run starting")
	assert.Contains(t, out, "step failed")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "workflow run completed")
	assert.Contains(t, out, "steps_executed=4")
}

// TestNoopMetrics satisfies the recorder interface without side effects.
func TestNoopMetrics(t *testing.T) {
	ctx := context.Background()
	var rec MetricsRecorder = NoopMetrics{}
	require.NotPanics(t, func() {
		rec.RecordStep(ctx, "a", time.Millisecond, errors.New("boom"))
		rec.RecordRun(ctx, true, time.Second)
		rec.RecordCheckpoint(ctx, "a", 64)
	})
}

// TestNoopSpanManager returns the context unchanged.
func TestNoopSpanManager(t *testing.T) {
	base := context.Background()
	var mgr SpanManager = NoopSpanManager{}

	ctx, span := mgr.StartRunSpan(base, "merchant-analysis", "run-1")
	assert.Equal(t, base, ctx)

	stepCtx, stepSpan := mgr.StartStepSpan(ctx, "generate")
	assert.Equal(t, ctx, stepCtx)

	require.NotPanics(t, func() {
		mgr.EndSpanWithError(span, errors.New("boom"))
		mgr.EndSpanWithError(stepSpan, nil)
		mgr.AddSpanEvent(ctx, "tool_dispatched")
	})
}
