package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("stepgraph")

// SpanManager handles trace span lifecycle. Use NewSpanManager() for OTel
// tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartRunSpan starts the span covering an entire workflow run.
	StartRunSpan(ctx context.Context, workflow, runID string) (context.Context, trace.Span)

	// StartStepSpan starts a child span for one step execution.
	StartStepSpan(ctx context.Context, stepID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, recording err when non-nil.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the span in ctx, if any is recording.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

type otelSpanManager struct{}

// NewSpanManager returns an OTel-backed SpanManager using the global tracer
// provider.
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartRunSpan implements SpanManager.
func (m *otelSpanManager) StartRunSpan(ctx context.Context, workflow, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "stepgraph.run",
		trace.WithAttributes(
			attribute.String("workflow.name", workflow),
			attribute.String("run.id", runID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartStepSpan implements SpanManager.
func (m *otelSpanManager) StartStepSpan(ctx context.Context, stepID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "stepgraph.step."+stepID,
		trace.WithAttributes(attribute.String("step.id", stepID)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError implements SpanManager.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
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

// AddSpanEvent implements SpanManager.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
