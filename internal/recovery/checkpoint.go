package recovery

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/HR-AR/Project-Conductor-sub004/internal/types"
)

// defaultCheckpointCapacity bounds the ring buffer when no capacity is
// configured.
const defaultCheckpointCapacity = 20

// Checkpoint is one bounded state snapshot. State is opaque: it is
// stored as a JSON byte copy and never inspected.
type Checkpoint struct {
	ID          types.ID        `json:"id"`
	Description string          `json:"description"`
	State       json.RawMessage `json:"state"`
	Automatic   bool            `json:"automatic"`
	Trigger     string          `json:"trigger,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CheckpointStatistics summarizes the buffer contents.
type CheckpointStatistics struct {
	Count     int       `json:"count"`
	Capacity  int       `json:"capacity"`
	Automatic int       `json:"automatic"`
	Manual    int       `json:"manual"`
	Oldest    time.Time `json:"oldest,omitempty"`
	Newest    time.Time `json:"newest,omitempty"`
}

// CheckpointStore is a bounded in-memory ring buffer of state
// snapshots, ordered oldest to newest. When full, creating a checkpoint
// evicts the oldest one.
type CheckpointStore struct {
	mu          sync.Mutex
	capacity    int
	checkpoints []Checkpoint
}

// NewCheckpointStore creates a store holding at most capacity
// checkpoints. A non-positive capacity uses the default.
func NewCheckpointStore(capacity int) *CheckpointStore {
	if capacity <= 0 {
		capacity = defaultCheckpointCapacity
	}
	return &CheckpointStore{capacity: capacity}
}

// Create snapshots state into the buffer. The state is deep-copied via
// JSON so later mutations of the caller's value never leak into the
// checkpoint. Unserializable state fails with CHECKPOINT_FAILED.
func (s *CheckpointStore) Create(state any, description string, automatic bool, trigger string) (Checkpoint, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return Checkpoint{}, types.WrapError(types.CHECKPOINT_FAILED, "state is not serializable", err)
	}

	cp := Checkpoint{
		ID:          types.NewID(),
		Description: description,
		State:       raw,
		Automatic:   automatic,
		Trigger:     trigger,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints = append(s.checkpoints, cp)
	if len(s.checkpoints) > s.capacity {
		s.checkpoints = s.checkpoints[len(s.checkpoints)-s.capacity:]
	}
	return cp, nil
}

// Rollback returns a deep copy of the matching checkpoint's state, or
// nil when the id is unknown. It never fails on a missing id.
func (s *CheckpointStore) Rollback(id types.ID) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cp := range s.checkpoints {
		if cp.ID == id {
			return decodeState(cp.State)
		}
	}
	return nil
}

// RollbackToLast returns a deep copy of the most recently created
// checkpoint's state, or nil when the buffer is empty.
func (s *CheckpointStore) RollbackToLast() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.checkpoints) == 0 {
		return nil
	}
	return decodeState(s.checkpoints[len(s.checkpoints)-1].State)
}

// Delete removes the checkpoint with the given id and reports whether
// it existed.
func (s *CheckpointStore) Delete(id types.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cp := range s.checkpoints {
		if cp.ID == id {
			s.checkpoints = append(s.checkpoints[:i], s.checkpoints[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every checkpoint.
func (s *CheckpointStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints = nil
}

// List returns the checkpoints oldest first. The slice is a copy; state
// payloads are shared but treated as immutable.
func (s *CheckpointStore) List() []Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Checkpoint, len(s.checkpoints))
	copy(out, s.checkpoints)
	return out
}

// Statistics reports buffer counts and the oldest/newest timestamps.
func (s *CheckpointStore) Statistics() CheckpointStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := CheckpointStatistics{
		Count:    len(s.checkpoints),
		Capacity: s.capacity,
	}
	for _, cp := range s.checkpoints {
		if cp.Automatic {
			stats.Automatic++
		} else {
			stats.Manual++
		}
	}
	if len(s.checkpoints) > 0 {
		stats.Oldest = s.checkpoints[0].CreatedAt
		stats.Newest = s.checkpoints[len(s.checkpoints)-1].CreatedAt
	}
	return stats
}

// decodeState materializes an opaque snapshot back into generic values.
// The unmarshal cannot fail: the bytes came from json.Marshal.
func decodeState(raw json.RawMessage) any {
	var state any
	_ = json.Unmarshal(raw, &state)
	return state
}
