package stepgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompile_Linear verifies a valid linear graph compiles.
func TestCompile_Linear(t *testing.T) {
	compiled, err := NewGraph[Counter]().
		AddStep("a", increment).
		AddStep("b", increment).
		SetEntry("a").
		AddEdge("a", "b").
		AddEdge("b", END).
		Compile()

	require.NoError(t, err)
	assert.Equal(t, "a", compiled.Entry())
	assert.ElementsMatch(t, []string{"a", "b"}, compiled.StepIDs())
	assert.True(t, compiled.HasStep("a"))
	assert.False(t, compiled.HasStep("missing"))
	assert.Equal(t, []string{"b"}, compiled.Successors("a"))
}

// TestCompile_NoEntry fails when SetEntry was never called.
func TestCompile_NoEntry(t *testing.T) {
	_, err := NewGraph[Counter]().
		AddStep("a", increment).
		AddEdge("a", END).
		Compile()

	assert.ErrorIs(t, err, ErrNoEntry)
}

// TestCompile_EntryNotFound fails when the entry is unknown.
func TestCompile_EntryNotFound(t *testing.T) {
	_, err := NewGraph[Counter]().
		AddStep("a", increment).
		AddEdge("a", END).
		SetEntry("missing").
		Compile()

	assert.ErrorIs(t, err, ErrEntryNotFound)
}

// TestCompile_EdgeTargetNotFound fails when an edge points nowhere.
func TestCompile_EdgeTargetNotFound(t *testing.T) {
	_, err := NewGraph[Counter]().
		AddStep("a", increment).
		SetEntry("a").
		AddEdge("a", "ghost").
		Compile()

	assert.ErrorIs(t, err, ErrStepNotFound)
}

// TestCompile_NoPathToEnd fails when END is unreachable.
func TestCompile_NoPathToEnd(t *testing.T) {
	_, err := NewGraph[Counter]().
		AddStep("a", increment).
		AddStep("b", increment).
		SetEntry("a").
		AddEdge("a", "b").
		AddEdge("b", "a").
		Compile()

	assert.ErrorIs(t, err, ErrNoPathToEnd)
}

// TestCompile_RouterAssumedToReachEnd accepts a cycle broken only by a
// router, since routers may return END at runtime.
func TestCompile_RouterAssumedToReachEnd(t *testing.T) {
	router := func(ctx Context, s Counter) string {
		if s.Value >= 3 {
			return END
		}
		return "a"
	}

	compiled, err := NewGraph[Counter]().
		AddStep("a", increment).
		SetEntry("a").
		AddConditionalEdge("a", router).
		Compile()

	require.NoError(t, err)
	assert.True(t, compiled.IsConditional("a"))
}

// TestCompile_JoinsMultipleErrors reports every validation failure at once.
func TestCompile_JoinsMultipleErrors(t *testing.T) {
	_, err := NewGraph[Counter]().
		AddStep("a", increment).
		AddEdge("a", "ghost").
		Compile()

	assert.ErrorIs(t, err, ErrNoEntry)
	assert.ErrorIs(t, err, ErrStepNotFound)
}
