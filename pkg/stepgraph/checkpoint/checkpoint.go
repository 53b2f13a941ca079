// Package checkpoint persists workflow state snapshots so interrupted runs
// can be resumed.
package checkpoint

import (
	"encoding/json"
	"time"
)

// Version is the current checkpoint format version.
const Version = 1

// Checkpoint is one persisted snapshot: the serialized state after a step
// plus enough metadata to continue the run.
type Checkpoint struct {
	Version   int       `json:"version"`
	RunID     string    `json:"run_id"`
	StepID    string    `json:"step_id"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`

	State    json.RawMessage `json:"state"`
	NextStep string          `json:"next_step"`

	Attempt  int    `json:"attempt"`
	PrevStep string `json:"prev_step,omitempty"`
}

// New creates a checkpoint. State must already be JSON-serialized.
func New(runID, stepID string, sequence int, state []byte, nextStep string) *Checkpoint {
	return &Checkpoint{
		Version:   Version,
		RunID:     runID,
		StepID:    stepID,
		Sequence:  sequence,
		Timestamp: time.Now().UTC(),
		State:     state,
		NextStep:  nextStep,
		Attempt:   1,
	}
}

// WithAttempt records the retry attempt number.
func (c *Checkpoint) WithAttempt(attempt int) *Checkpoint {
	c.Attempt = attempt
	return c
}

// WithPrevStep records the previously executed step for debugging.
func (c *Checkpoint) WithPrevStep(stepID string) *Checkpoint {
	c.PrevStep = stepID
	return c
}

// Marshal serializes the checkpoint to JSON.
func (c *Checkpoint) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Unmarshal deserializes a checkpoint from JSON.
func Unmarshal(data []byte) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
