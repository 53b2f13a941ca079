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

// MetricsRecorder records stepgraph metrics. Use NewMetricsRecorder() for
// OTel-backed metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordStep records one step execution with duration and error status.
	RecordStep(ctx context.Context, stepID string, duration time.Duration, err error)

	// RecordRun records a completed workflow run.
	RecordRun(ctx context.Context, success bool, duration time.Duration)

	// RecordCheckpoint records a checkpoint save.
	RecordCheckpoint(ctx context.Context, stepID string, sizeBytes int64)
}

type otelMetrics struct {
	stepExecutions metric.Int64Counter
	stepLatency    metric.Float64Histogram
	stepErrors     metric.Int64Counter
	runs           metric.Int64Counter
	runLatency     metric.Float64Histogram
	checkpointSize metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("stepgraph")

	stepExecutions, err := meter.Int64Counter("stepgraph.step.executions",
		metric.WithDescription("Number of step executions"))
	if err != nil {
		return nil, err
	}
	stepLatency, err := meter.Float64Histogram("stepgraph.step.latency_ms",
		metric.WithDescription("Step execution latency in milliseconds"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	stepErrors, err := meter.Int64Counter("stepgraph.step.errors",
		metric.WithDescription("Number of step execution errors"))
	if err != nil {
		return nil, err
	}
	runs, err := meter.Int64Counter("stepgraph.run.count",
		metric.WithDescription("Number of workflow runs"))
	if err != nil {
		return nil, err
	}
	runLatency, err := meter.Float64Histogram("stepgraph.run.latency_ms",
		metric.WithDescription("Workflow run latency in milliseconds"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	checkpointSize, err := meter.Int64Histogram("stepgraph.checkpoint.size_bytes",
		metric.WithDescription("Checkpoint size in bytes"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		stepExecutions: stepExecutions,
		stepLatency:    stepLatency,
		stepErrors:     stepErrors,
		runs:           runs,
		runLatency:     runLatency,
		checkpointSize: checkpointSize,
	}, nil
}

// NewMetricsRecorder returns an OTel-backed MetricsRecorder using the global
// meter provider. Falls back to a no-op recorder if instrument creation
// fails.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordStep implements MetricsRecorder.
func (m *otelMetrics) RecordStep(ctx context.Context, stepID string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{attribute.String("step_id", stepID)}
	m.stepExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.stepLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		m.stepErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordRun implements MetricsRecorder.
func (m *otelMetrics) RecordRun(ctx context.Context, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{attribute.Bool("success", success)}
	m.runs.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.runLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordCheckpoint implements MetricsRecorder.
func (m *otelMetrics) RecordCheckpoint(ctx context.Context, stepID string, sizeBytes int64) {
	m.checkpointSize.Record(ctx, sizeBytes,
		metric.WithAttributes(attribute.String("step_id", stepID)))
}
