package stepgraph

import (
	"context"
)

// Test state types used across tests

// Counter is a simple state for testing incrementing.
type Counter struct {
	Value int
}

// TrackState records step visits and routing inputs.
type TrackState struct {
	Progress []string
	GoLeft   bool
	Done     bool
	Count    int
}

// Helper step functions

// increment is a step that increments the counter.
func increment(ctx Context, s Counter) (Counter, error) {
	s.Value++
	return s, nil
}

// passthrough returns the state unchanged.
func passthrough[S any](ctx Context, s S) (S, error) {
	return s, nil
}

// makeTrackingStep creates a step that records its execution.
func makeTrackingStep(name string, tracker *[]string) StepFunc[TrackState] {
	return func(ctx Context, s TrackState) (TrackState, error) {
		*tracker = append(*tracker, name)
		s.Progress = append(s.Progress, name)
		return s, nil
	}
}

// makeFailingStep creates a step that returns the given error.
func makeFailingStep(err error) StepFunc[TrackState] {
	return func(ctx Context, s TrackState) (TrackState, error) {
		return s, err
	}
}

// makePanicStep creates a step that panics with the given value.
func makePanicStep(value any) StepFunc[TrackState] {
	return func(ctx Context, s TrackState) (TrackState, error) {
		panic(value)
	}
}

// testCtx creates a simple test context.
func testCtx() Context {
	return NewContext(context.Background())
}
