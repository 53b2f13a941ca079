package stepgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/quantive/stepgraph/pkg/stepgraph/checkpoint"
	"github.com/quantive/stepgraph/pkg/stepgraph/observability"
)

// Run executes the workflow from its entry step with the given initial
// state and returns the final state.
//
// On success the returned state is the value produced by the last step
// before END. On error the state at the point of failure is returned so
// callers can inspect it.
//
// Each iteration of the loop: check cancellation, execute the current step,
// route to the next one (router first, then static edge), optionally
// checkpoint. The loop ends at END, on error, or when the iteration ceiling
// is hit.
func (c *Compiled[S]) Run(ctx Context, state S, opts ...RunOption) (result S, runErr error) {
	if ctx == nil {
		return state, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.store != nil && cfg.runID == "" {
		return state, ErrRunIDRequired
	}

	runID := cfg.runID
	if runID == "" {
		runID = ctx.RunID()
	}

	start := time.Now()
	observability.LogRunStart(cfg.logger, runID)

	var execCtx context.Context = ctx
	var runSpan trace.Span
	if cfg.tracing {
		execCtx, runSpan = cfg.spans.StartRunSpan(ctx, "stepgraph", runID)
		defer func() {
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	var executed int
	result, executed, runErr = c.runFrom(execCtx, ctx, state, c.entry, &cfg)

	elapsed := time.Since(start)
	cfg.metrics.RecordRun(ctx, runErr == nil, elapsed)

	if runErr != nil {
		observability.LogRunError(cfg.logger, runID, runErr, elapsed, failedStepID(runErr))
	} else {
		observability.LogRunComplete(cfg.logger, runID, elapsed, executed)
	}
	return result, runErr
}

// failedStepID extracts the step identifier from a typed run error.
func failedStepID(err error) string {
	switch e := err.(type) {
	case *StepError:
		return e.StepID
	case *MaxIterationsError:
		return e.LastStepID
	case *CancellationError:
		return e.StepID
	case *PanicError:
		return e.StepID
	default:
		return ""
	}
}

// runFrom drives the loop starting at a specific step. tracingCtx carries
// span parentage; sgCtx is the stepgraph Context handed to steps.
func (c *Compiled[S]) runFrom(tracingCtx context.Context, sgCtx Context, state S, startStep string, cfg *runConfig) (S, int, error) {
	current := startStep
	prev := ""
	iterations := 0
	executed := 0

	for current != END {
		iterations++
		if iterations > cfg.maxIterations {
			return state, executed, &MaxIterationsError{
				Max:        cfg.maxIterations,
				LastStepID: current,
				State:      state,
			}
		}

		select {
		case <-sgCtx.Done():
			return state, executed, &CancellationError{
				StepID: current,
				State:  state,
				Cause:  sgCtx.Err(),
			}
		default:
		}

		observability.LogStepStart(cfg.logger, current)

		stepCtx := tracingCtx
		var stepSpan trace.Span
		if cfg.tracing {
			stepCtx, stepSpan = cfg.spans.StartStepSpan(tracingCtx, current)
		}

		stepStart := time.Now()
		var stepErr error
		state, stepErr = c.executeStep(sgCtx, current, state)
		stepElapsed := time.Since(stepStart)

		cfg.metrics.RecordStep(stepCtx, current, stepElapsed, stepErr)
		if cfg.tracing {
			cfg.spans.EndSpanWithError(stepSpan, stepErr)
		}

		if stepErr != nil {
			observability.LogStepError(cfg.logger, current, stepErr)
			return state, executed, stepErr
		}
		observability.LogStepComplete(cfg.logger, current, stepElapsed)
		executed++

		next, err := c.route(sgCtx, state, current)
		if err != nil {
			return state, executed, err
		}

		if cfg.store != nil {
			if err := c.saveCheckpoint(sgCtx, cfg, current, prev, state, next); err != nil {
				return state, executed, err
			}
		}

		prev = current
		current = next
	}

	return state, executed, nil
}

// executeStep runs a single step with panic recovery.
func (c *Compiled[S]) executeStep(ctx Context, stepID string, state S) (result S, err error) {
	fn, ok := c.step(stepID)
	if !ok {
		// Unreachable after a successful Compile().
		return state, &StepError{StepID: stepID, Op: "lookup", Err: fmt.Errorf("step not registered: %s", stepID)}
	}

	stepCtx := ctx
	if ec, ok := ctx.(*execContext); ok {
		stepCtx = ec.withStepID(stepID)
	}

	defer func() {
		if r := recover(); r != nil {
			result = state
			err = &PanicError{StepID: stepID, Value: r, Stack: string(debug.Stack())}
		}
	}()

	result, err = fn(stepCtx, state)
	if err != nil {
		return result, &StepError{StepID: stepID, Op: "execute", Err: err}
	}
	return result, nil
}

// route picks the next step: a router when one is attached, otherwise the
// first static edge.
func (c *Compiled[S]) route(ctx Context, state S, current string) (string, error) {
	if router, ok := c.router(current); ok {
		routerCtx := ctx
		if ec, ok := ctx.(*execContext); ok {
			routerCtx = ec.withStepID(current)
		}

		next := router(routerCtx, state)
		if next == "" {
			return "", &RouterError{FromStep: current, Returned: next, Err: ErrEmptyRoute}
		}
		if next != END && !c.HasStep(next) {
			return "", &RouterError{FromStep: current, Returned: next, Err: ErrRouteNotFound}
		}
		return next, nil
	}

	edges := c.edges[current]
	if len(edges) == 0 {
		// Unreachable after a successful Compile().
		return "", &StepError{StepID: current, Op: "route", Err: fmt.Errorf("no outgoing edge from step %s", current)}
	}
	return edges[0], nil
}

// saveCheckpoint serializes the state and persists it keyed by run and step.
func (c *Compiled[S]) saveCheckpoint(ctx Context, cfg *runConfig, stepID, prevStep string, state S, next string) error {
	raw, err := json.Marshal(state)
	if err != nil {
		if cfg.failOnCkptErr {
			return &CheckpointError{StepID: stepID, Op: "serialize", Err: err}
		}
		observability.LogCheckpointError(cfg.logger, stepID, "serialize", err)
		return nil
	}

	cfg.sequence++
	rec := checkpoint.New(cfg.runID, stepID, cfg.sequence, raw, next).WithPrevStep(prevStep)
	if ec, ok := ctx.(*execContext); ok {
		rec = rec.WithAttempt(ec.attempt)
	}

	data, err := rec.Marshal()
	if err != nil {
		if cfg.failOnCkptErr {
			return &CheckpointError{StepID: stepID, Op: "marshal", Err: err}
		}
		observability.LogCheckpointError(cfg.logger, stepID, "marshal", err)
		return nil
	}

	if err := cfg.store.Save(cfg.runID, stepID, data); err != nil {
		if cfg.failOnCkptErr {
			return &CheckpointError{StepID: stepID, Op: "save", Err: err}
		}
		observability.LogCheckpointError(cfg.logger, stepID, "save", err)
		return nil
	}

	observability.LogCheckpoint(cfg.logger, stepID, len(data))
	cfg.metrics.RecordCheckpoint(ctx, stepID, int64(len(data)))
	return nil
}
