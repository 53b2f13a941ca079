package stepgraph

import (
	"errors"
	"fmt"
)

// Graph construction and compilation errors.
var (
	// ErrNoEntry indicates SetEntry() was never called.
	ErrNoEntry = errors.New("entry step not set")

	// ErrEntryNotFound indicates the entry references an unknown step.
	ErrEntryNotFound = errors.New("entry step not found")

	// ErrStepNotFound indicates an edge references an unknown step.
	ErrStepNotFound = errors.New("step not found")

	// ErrNoPathToEnd indicates the entry can never reach END.
	ErrNoPathToEnd = errors.New("no path to END from entry")
)

// Execution errors.
var (
	// ErrMaxIterations indicates the run loop exceeded its iteration ceiling.
	ErrMaxIterations = errors.New("exceeded maximum iterations")

	// ErrNilContext indicates Run() received a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrEmptyRoute indicates a router returned an empty string.
	ErrEmptyRoute = errors.New("router returned empty step ID")

	// ErrRouteNotFound indicates a router returned an unknown step ID.
	ErrRouteNotFound = errors.New("router returned unknown step")
)

// Checkpointing errors.
var (
	// ErrRunIDRequired indicates checkpointing was enabled without a run ID.
	ErrRunIDRequired = errors.New("run ID required for checkpointing")

	// ErrNoCheckpoints indicates no checkpoints exist for the run.
	ErrNoCheckpoints = errors.New("no checkpoints found for run")
)

// StepError wraps a failure from a step function with its step identifier.
type StepError struct {
	StepID string
	Op     string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %s: %v", e.StepID, e.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// PanicError captures a panic raised inside a step function.
type PanicError struct {
	StepID string
	Value  any
	Stack  string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("step %s panicked: %v", e.StepID, e.Value)
}

// RouterError reports an invalid routing decision.
type RouterError struct {
	FromStep string
	Returned string
	Err      error
}

func (e *RouterError) Error() string {
	return fmt.Sprintf("router from %s returned %q: %v", e.FromStep, e.Returned, e.Err)
}

func (e *RouterError) Unwrap() error { return e.Err }

// MaxIterationsError reports that the run loop hit its ceiling. The state
// at termination is preserved for inspection.
type MaxIterationsError struct {
	Max        int
	LastStepID string
	State      any
}

func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("exceeded maximum iterations (%d) at step %s", e.Max, e.LastStepID)
}

func (e *MaxIterationsError) Unwrap() error { return ErrMaxIterations }

// CancellationError preserves the state at the point of cancellation.
type CancellationError struct {
	StepID string
	State  any
	Cause  error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled before step %s: %v", e.StepID, e.Cause)
}

func (e *CancellationError) Unwrap() error { return e.Cause }

// CheckpointError wraps a checkpoint persistence failure.
type CheckpointError struct {
	StepID string
	Op     string
	Err    error
}

func (e *CheckpointError) Error() string {
	return fmt.Sprintf("checkpoint %s at step %s: %v", e.Op, e.StepID, e.Err)
}

func (e *CheckpointError) Unwrap() error { return e.Err }
