package checkpoint

import (
	"errors"
	"time"
)

// Store persists checkpoints. Implementations must be safe for concurrent
// use.
type Store interface {
	// Save stores a checkpoint, overwriting any existing one for the same
	// (runID, stepID) pair.
	Save(runID, stepID string, data []byte) error

	// Load retrieves a checkpoint. Returns ErrNotFound when absent.
	Load(runID, stepID string) ([]byte, error)

	// List returns metadata for all checkpoints of a run, newest sequence
	// first. A run without checkpoints yields an empty slice, not an error.
	List(runID string) ([]Info, error)

	// Delete removes one checkpoint. Absent checkpoints are not an error.
	Delete(runID, stepID string) error

	// DeleteRun removes every checkpoint of a run.
	DeleteRun(runID string) error

	// Close releases underlying resources.
	Close() error
}

// Info is checkpoint metadata, available without loading the state blob.
type Info struct {
	RunID     string
	StepID    string
	Sequence  int
	Timestamp time.Time
	Size      int64
}

var (
	// ErrNotFound indicates the checkpoint does not exist.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")
)
