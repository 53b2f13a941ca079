package checkpoint

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps checkpoints in process memory. Intended for tests and
// single-shot runs where persistence across restarts is not needed.
type MemoryStore struct {
	mu     sync.RWMutex
	runs   map[string]map[string]memEntry // runID -> stepID -> entry
	closed bool
}

type memEntry struct {
	data      []byte
	sequence  int
	timestamp time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]map[string]memEntry)}
}

// Save implements Store.
func (m *MemoryStore) Save(runID, stepID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	if m.runs[runID] == nil {
		m.runs[runID] = make(map[string]memEntry)
	}

	seq := 1
	for _, e := range m.runs[runID] {
		if e.sequence >= seq {
			seq = e.sequence + 1
		}
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	m.runs[runID][stepID] = memEntry{data: stored, sequence: seq, timestamp: time.Now().UTC()}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(runID, stepID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	run, ok := m.runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	e, ok := run[stepID]
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, nil
}

// List implements Store.
func (m *MemoryStore) List(runID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	run, ok := m.runs[runID]
	if !ok {
		return []Info{}, nil
	}

	infos := make([]Info, 0, len(run))
	for stepID, e := range run {
		infos = append(infos, Info{
			RunID:     runID,
			StepID:    stepID,
			Sequence:  e.sequence,
			Timestamp: e.timestamp,
			Size:      int64(len(e.data)),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Sequence > infos[j].Sequence })
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(runID, stepID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	if run, ok := m.runs[runID]; ok {
		delete(run, stepID)
	}
	return nil
}

// DeleteRun implements Store.
func (m *MemoryStore) DeleteRun(runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.runs, runID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
