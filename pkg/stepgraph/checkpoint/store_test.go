package checkpoint

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories builds each Store implementation against a temp dir so
// the contract tests run over all of them.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "checkpoints.db"))
			require.NoError(t, err)
			return store
		},
	}
}

// TestStore_SaveLoad round-trips a checkpoint blob.
func TestStore_SaveLoad(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			require.NoError(t, store.Save("run-1", "step-a", []byte("payload")))

			data, err := store.Load("run-1", "step-a")
			require.NoError(t, err)
			assert.Equal(t, []byte("payload"), data)
		})
	}
}

// TestStore_LoadMissing returns ErrNotFound for absent checkpoints.
func TestStore_LoadMissing(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			_, err := store.Load("run-1", "nope")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

// TestStore_SaveOverwrites replaces the blob but advances the sequence.
func TestStore_SaveOverwrites(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			require.NoError(t, store.Save("run-1", "step-a", []byte("v1")))
			require.NoError(t, store.Save("run-1", "step-a", []byte("v2")))

			data, err := store.Load("run-1", "step-a")
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), data)

			infos, err := store.List("run-1")
			require.NoError(t, err)
			require.Len(t, infos, 1)
			assert.Equal(t, 2, infos[0].Sequence)
		})
	}
}

// TestStore_ListNewestFirst orders by descending sequence.
func TestStore_ListNewestFirst(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			require.NoError(t, store.Save("run-1", "a", []byte("1")))
			require.NoError(t, store.Save("run-1", "b", []byte("2")))
			require.NoError(t, store.Save("run-1", "c", []byte("3")))

			infos, err := store.List("run-1")
			require.NoError(t, err)
			require.Len(t, infos, 3)
			assert.Equal(t, "c", infos[0].StepID)
			assert.Equal(t, "b", infos[1].StepID)
			assert.Equal(t, "a", infos[2].StepID)
		})
	}
}

// TestStore_ListEmptyRun yields an empty slice, not an error.
func TestStore_ListEmptyRun(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			infos, err := store.List("ghost-run")
			require.NoError(t, err)
			assert.Empty(t, infos)
		})
	}
}

// TestStore_Delete removes one checkpoint and tolerates absent ones.
func TestStore_Delete(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			require.NoError(t, store.Save("run-1", "a", []byte("1")))
			require.NoError(t, store.Delete("run-1", "a"))
			require.NoError(t, store.Delete("run-1", "a"))

			_, err := store.Load("run-1", "a")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

// TestStore_DeleteRun removes a run without touching others.
func TestStore_DeleteRun(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			require.NoError(t, store.Save("run-1", "a", []byte("1")))
			require.NoError(t, store.Save("run-2", "a", []byte("2")))
			require.NoError(t, store.DeleteRun("run-1"))

			infos, err := store.List("run-1")
			require.NoError(t, err)
			assert.Empty(t, infos)

			data, err := store.Load("run-2", "a")
			require.NoError(t, err)
			assert.Equal(t, []byte("2"), data)
		})
	}
}

// TestMemoryStore_ClosedRejectsOperations fails all operations after Close.
func TestMemoryStore_ClosedRejectsOperations(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Save("r", "s", nil), ErrStoreClosed)
	_, err := store.Load("r", "s")
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = store.List("r")
	assert.ErrorIs(t, err, ErrStoreClosed)
}

// TestSQLiteStore_PersistsAcrossReopen reads checkpoints written by a
// previous handle.
func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoints.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save("run-1", "a", []byte("survives")))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	data, err := reopened.Load("run-1", "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("survives"), data)
}

// TestCheckpoint_Roundtrip verifies the record codec and builders.
func TestCheckpoint_Roundtrip(t *testing.T) {
	rec := New("run-1", "step-a", 3, []byte(`{"v":1}`), "step-b").
		WithPrevStep("entry").
		WithAttempt(2)

	data, err := rec.Marshal()
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, Version, decoded.Version)
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, "step-a", decoded.StepID)
	assert.Equal(t, 3, decoded.Sequence)
	assert.Equal(t, "step-b", decoded.NextStep)
	assert.Equal(t, "entry", decoded.PrevStep)
	assert.Equal(t, 2, decoded.Attempt)
}
