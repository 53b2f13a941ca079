package stepgraph

import (
	"encoding/json"
	"fmt"

	"github.com/quantive/stepgraph/pkg/stepgraph/checkpoint"
)

// Resume restarts a run from its most recent checkpoint. The state is
// deserialized from the checkpoint and execution continues at the step the
// checkpoint recorded as next.
//
// Returns ErrNoCheckpoints when the run has no saved checkpoints. When the
// latest checkpoint already points at END, the stored state is returned
// without executing anything.
func (c *Compiled[S]) Resume(ctx Context, store checkpoint.Store, runID string, opts ...RunOption) (S, error) {
	var zero S
	if ctx == nil {
		return zero, ErrNilContext
	}
	if runID == "" {
		return zero, ErrRunIDRequired
	}

	infos, err := store.List(runID)
	if err != nil {
		return zero, fmt.Errorf("list checkpoints: %w", err)
	}
	if len(infos) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrNoCheckpoints, runID)
	}

	latest := infos[0]
	for _, info := range infos[1:] {
		if info.Sequence > latest.Sequence {
			latest = info
		}
	}

	data, err := store.Load(runID, latest.StepID)
	if err != nil {
		return zero, fmt.Errorf("load checkpoint: %w", err)
	}
	rec, err := checkpoint.Unmarshal(data)
	if err != nil {
		return zero, fmt.Errorf("decode checkpoint: %w", err)
	}

	var state S
	if err := json.Unmarshal(rec.State, &state); err != nil {
		return zero, fmt.Errorf("decode checkpoint state: %w", err)
	}

	if rec.NextStep == END {
		return state, nil
	}
	if rec.NextStep == "" || !c.HasStep(rec.NextStep) {
		return state, fmt.Errorf("%w: %q", ErrStepNotFound, rec.NextStep)
	}

	cfg := defaultRunConfig()
	// Resumed runs keep checkpointing to the same store under the same ID.
	cfg.store = store
	cfg.runID = runID
	cfg.sequence = rec.Sequence
	for _, opt := range opts {
		opt(&cfg)
	}

	result, _, err := c.runFrom(ctx, ctx, state, rec.NextStep, &cfg)
	return result, err
}
