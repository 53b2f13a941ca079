package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistry_RegisterGet stores and retrieves values by key.
func TestRegistry_RegisterGet(t *testing.T) {
	reg := New[string, int]()
	reg.Register("a", 1)
	reg.Register("b", 2)

	v, ok := reg.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = reg.Get("missing")
	assert.False(t, ok)

	assert.True(t, reg.Has("b"))
	assert.False(t, reg.Has("missing"))
	assert.Equal(t, 2, reg.Len())
	assert.ElementsMatch(t, []string{"a", "b"}, reg.Keys())
}

// TestRegistry_RegisterOverwrites keeps the newest value for a key.
func TestRegistry_RegisterOverwrites(t *testing.T) {
	reg := New[string, string]()
	reg.Register("k", "old")
	reg.Register("k", "new")

	v, ok := reg.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, reg.Len())
}
