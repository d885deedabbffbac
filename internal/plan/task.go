package plan

import "github.com/HR-AR/Project-Conductor-sub004/internal/goal"

// TaskStatus represents the execution status of a plan task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusSkipped    TaskStatus = "skipped"
	TaskStatusBlocked    TaskStatus = "blocked"
)

// String returns the string representation of the task status.
func (s TaskStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the status represents a terminal state.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusSkipped:
		return true
	default:
		return false
	}
}

// TaskPriority expresses how important a task is relative to its siblings.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// Rank returns a numeric rank for priority comparison; higher is more important.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 0
	default:
		return 0
	}
}

// Task is a unit of work within an execution plan. Tasks are produced by
// the generator and mutated only by the optimizer (duration, parallel
// flag) and by runtime adaptation (status, dependency edits).
type Task struct {
	// ID uniquely identifies the task within its plan.
	ID string `json:"id"`

	// Name is the human-readable task name.
	Name string `json:"name"`

	// AgentType names the class of agent expected to execute the task.
	AgentType goal.AgentType `json:"agent_type"`

	// Status is the current execution status. Tasks start pending.
	Status TaskStatus `json:"status"`

	// Priority orders tasks within a layer.
	Priority TaskPriority `json:"priority"`

	// Dependencies lists ids of tasks that must complete first.
	// Every id must reference a task in the same plan.
	Dependencies []string `json:"dependencies"`

	// CanRunInParallel marks the task safe to dispatch alongside other
	// tasks in its dependency layer.
	CanRunInParallel bool `json:"can_run_in_parallel"`

	// EstimatedDuration is the effort estimate in minutes. Always > 0.
	EstimatedDuration int `json:"estimated_duration"`

	// Outputs are the artifacts the task produces. Never empty.
	Outputs []string `json:"outputs"`

	// AcceptanceCriteria define when the task counts as done. Never empty.
	AcceptanceCriteria []string `json:"acceptance_criteria"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	c.Dependencies = append([]string(nil), t.Dependencies...)
	c.Outputs = append([]string(nil), t.Outputs...)
	c.AcceptanceCriteria = append([]string(nil), t.AcceptanceCriteria...)
	return c
}

// DependsOn reports whether the task directly depends on the given task id.
func (t *Task) DependsOn(id string) bool {
	for _, dep := range t.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}
