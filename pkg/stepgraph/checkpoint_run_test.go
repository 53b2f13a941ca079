package stepgraph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ckpt "github.com/quantive/stepgraph/pkg/stepgraph/checkpoint"
)

// TestRun_Checkpointing saves one checkpoint per executed step.
func TestRun_Checkpointing(t *testing.T) {
	store := ckpt.NewMemoryStore()
	defer store.Close()

	compiled, err := NewGraph[Counter]().
		AddStep("a", increment).
		AddStep("b", increment).
		SetEntry("a").
		AddEdge("a", "b").
		AddEdge("b", END).
		Compile()
	require.NoError(t, err)

	final, err := compiled.Run(testCtx(), Counter{}, WithCheckpointing(store, "run-1"))
	require.NoError(t, err)
	assert.Equal(t, 2, final.Value)

	infos, err := store.List("run-1")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	// List is newest-sequence-first.
	assert.Equal(t, "b", infos[0].StepID)
	assert.Equal(t, "a", infos[1].StepID)
}

// TestRun_Checkpointing_NoRunID rejects checkpointing without a run ID.
func TestRun_Checkpointing_NoRunID(t *testing.T) {
	store := ckpt.NewMemoryStore()
	defer store.Close()

	compiled, err := NewGraph[Counter]().
		AddStep("a", increment).
		SetEntry("a").
		AddEdge("a", END).
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(testCtx(), Counter{}, WithCheckpointing(store, ""))
	assert.ErrorIs(t, err, ErrRunIDRequired)
}

// TestResume_ContinuesAfterFailure picks up at the step after the last
// checkpoint.
func TestResume_ContinuesAfterFailure(t *testing.T) {
	store := ckpt.NewMemoryStore()
	defer store.Close()

	boom := errors.New("boom")
	failing := true
	flaky := func(ctx Context, s Counter) (Counter, error) {
		if failing {
			return s, boom
		}
		s.Value += 10
		return s, nil
	}

	compiled, err := NewGraph[Counter]().
		AddStep("a", increment).
		AddStep("flaky", flaky).
		SetEntry("a").
		AddEdge("a", "flaky").
		AddEdge("flaky", END).
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(testCtx(), Counter{}, WithCheckpointing(store, "run-2"))
	require.ErrorIs(t, err, boom)

	// The checkpoint from "a" records "flaky" as next; resuming re-runs
	// only the failed step.
	failing = false
	final, err := compiled.Resume(testCtx(), store, "run-2")
	require.NoError(t, err)
	assert.Equal(t, 11, final.Value)
}

// TestResume_CompletedRun returns the stored state without executing.
func TestResume_CompletedRun(t *testing.T) {
	store := ckpt.NewMemoryStore()
	defer store.Close()

	executions := 0
	counting := func(ctx Context, s Counter) (Counter, error) {
		executions++
		s.Value++
		return s, nil
	}

	compiled, err := NewGraph[Counter]().
		AddStep("a", counting).
		SetEntry("a").
		AddEdge("a", END).
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(testCtx(), Counter{}, WithCheckpointing(store, "run-3"))
	require.NoError(t, err)
	require.Equal(t, 1, executions)

	final, err := compiled.Resume(testCtx(), store, "run-3")
	require.NoError(t, err)
	assert.Equal(t, 1, final.Value)
	assert.Equal(t, 1, executions)
}

// TestResume_NoCheckpoints reports a missing run.
func TestResume_NoCheckpoints(t *testing.T) {
	store := ckpt.NewMemoryStore()
	defer store.Close()

	compiled, err := NewGraph[Counter]().
		AddStep("a", increment).
		SetEntry("a").
		AddEdge("a", END).
		Compile()
	require.NoError(t, err)

	_, err = compiled.Resume(testCtx(), store, "missing-run")
	assert.ErrorIs(t, err, ErrNoCheckpoints)
}
