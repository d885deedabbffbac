// Package plan defines the execution plan model and the capability-driven
// plan generator. A plan is a directed acyclic task graph with layers,
// a critical path, milestones, parallelization opportunities and a risk
// assessment, produced deterministically from a parsed goal.
package plan

import (
	"time"

	"github.com/HR-AR/Project-Conductor-sub004/internal/goal"
	"github.com/HR-AR/Project-Conductor-sub004/internal/types"
)

// PlanStatus represents the lifecycle status of an execution plan.
type PlanStatus string

const (
	// PlanStatusDraft indicates the plan has been generated but not accepted.
	PlanStatusDraft PlanStatus = "draft"

	// PlanStatusActive indicates the plan has been accepted for execution.
	PlanStatusActive PlanStatus = "active"

	// PlanStatusExecuting indicates the plan is currently being executed.
	PlanStatusExecuting PlanStatus = "executing"

	// PlanStatusCompleted indicates all plan tasks finished successfully.
	PlanStatusCompleted PlanStatus = "completed"

	// PlanStatusFailed indicates plan execution failed.
	PlanStatusFailed PlanStatus = "failed"

	// PlanStatusCancelled indicates the plan was cancelled.
	PlanStatusCancelled PlanStatus = "cancelled"
)

// String returns the string representation of the plan status.
func (s PlanStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the status is a terminal state.
func (s PlanStatus) IsTerminal() bool {
	switch s {
	case PlanStatusCompleted, PlanStatusFailed, PlanStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo validates whether the current status can transition to
// the target status. The state machine is:
//
//	draft -> active, cancelled
//	active -> executing, cancelled
//	executing -> completed, failed, cancelled
//
// Terminal states cannot transition anywhere.
func (s PlanStatus) CanTransitionTo(target PlanStatus) bool {
	if s.IsTerminal() {
		return false
	}

	allowed := map[PlanStatus][]PlanStatus{
		PlanStatusDraft:     {PlanStatusActive, PlanStatusCancelled},
		PlanStatusActive:    {PlanStatusExecuting, PlanStatusCancelled},
		PlanStatusExecuting: {PlanStatusCompleted, PlanStatusFailed, PlanStatusCancelled},
	}

	for _, t := range allowed[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Edge is a directed dependency edge: To depends on From.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DependencyGraph captures the structure of a plan's task dependencies.
type DependencyGraph struct {
	// Nodes lists every task id in the plan.
	Nodes []string `json:"nodes"`

	// Edges lists dependency edges (From must finish before To starts).
	Edges []Edge `json:"edges"`

	// Layers groups task ids by dependency depth. Layer 0 holds tasks
	// with no dependencies; layer k holds tasks whose dependencies all
	// lie in layers < k.
	Layers [][]string `json:"layers"`

	// CriticalPath is the longest cumulative-duration root-to-sink path.
	CriticalPath []string `json:"critical_path"`
}

// Clone returns a deep copy of the graph.
func (g DependencyGraph) Clone() DependencyGraph {
	c := DependencyGraph{
		Nodes:        append([]string(nil), g.Nodes...),
		Edges:        append([]Edge(nil), g.Edges...),
		CriticalPath: append([]string(nil), g.CriticalPath...),
	}
	c.Layers = make([][]string, len(g.Layers))
	for i, layer := range g.Layers {
		c.Layers[i] = append([]string(nil), layer...)
	}
	return c
}

// OnCriticalPath reports whether the given task id lies on the critical path.
func (g *DependencyGraph) OnCriticalPath(id string) bool {
	for _, node := range g.CriticalPath {
		if node == id {
			return true
		}
	}
	return false
}

// Milestone groups related tasks into a delivery phase.
type Milestone struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Tasks []string `json:"tasks"`

	// IsBlocking marks milestones that gate downstream phases, either
	// because they contain security-sensitive work or because later
	// milestones depend on their tasks.
	IsBlocking bool `json:"is_blocking"`
}

// ParallelizationOpportunity describes a set of tasks that can be
// dispatched together to save wall-clock time.
type ParallelizationOpportunity struct {
	TaskIDs            []string `json:"task_ids"`
	EstimatedTimeSaved int      `json:"estimated_time_saved"`
	Reason             string   `json:"reason"`
}

// ExecutionPlan is the complete output of the plan generator: the task
// list, its dependency structure, milestones, parallelization
// opportunities, risk assessment and duration estimate. Field names and
// nesting are a serialization contract consumed by other layers.
type ExecutionPlan struct {
	ID         types.ID        `json:"id"`
	Goal       string          `json:"goal"`
	ParsedGoal goal.ParsedGoal `json:"parsed_goal"`

	Tasks        []Task          `json:"tasks"`
	Dependencies DependencyGraph `json:"dependencies"`
	Milestones   []Milestone     `json:"milestones"`

	ParallelizationOpportunities []ParallelizationOpportunity `json:"parallelization_opportunities"`

	RiskAssessment RiskAssessment `json:"risk_assessment"`

	// EstimatedDuration is the parallel-aware schedule length in minutes.
	// Always <= the naive sequential sum of task durations.
	EstimatedDuration int `json:"estimated_duration"`

	// CriticalPathDuration is the cumulative duration in minutes along the
	// critical path. It is a lower bound on EstimatedDuration regardless of
	// how wide the schedule runs.
	CriticalPathDuration int `json:"critical_path_duration"`

	Status    PlanStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TaskByID returns a pointer to the task with the given id, or nil.
func (p *ExecutionPlan) TaskByID(id string) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

// SequentialDuration returns the naive sequential sum of task durations.
func (p *ExecutionPlan) SequentialDuration() int {
	total := 0
	for _, t := range p.Tasks {
		total += t.EstimatedDuration
	}
	return total
}

// Clone returns a deep copy of the plan. The optimizer and adaptation
// paths operate on clones so callers keep the original untouched.
func (p *ExecutionPlan) Clone() *ExecutionPlan {
	c := *p
	c.Tasks = make([]Task, len(p.Tasks))
	for i, t := range p.Tasks {
		c.Tasks[i] = t.Clone()
	}
	c.Dependencies = p.Dependencies.Clone()
	c.Milestones = make([]Milestone, len(p.Milestones))
	for i, m := range p.Milestones {
		c.Milestones[i] = m
		c.Milestones[i].Tasks = append([]string(nil), m.Tasks...)
	}
	c.ParallelizationOpportunities = make([]ParallelizationOpportunity, len(p.ParallelizationOpportunities))
	for i, o := range p.ParallelizationOpportunities {
		c.ParallelizationOpportunities[i] = o
		c.ParallelizationOpportunities[i].TaskIDs = append([]string(nil), o.TaskIDs...)
	}
	c.RiskAssessment = p.RiskAssessment.Clone()
	c.ParsedGoal.Entities = append([]goal.Entity(nil), p.ParsedGoal.Entities...)
	c.ParsedGoal.Capabilities = append([]goal.Capability(nil), p.ParsedGoal.Capabilities...)
	c.ParsedGoal.SuggestedAgents = append([]goal.AgentType(nil), p.ParsedGoal.SuggestedAgents...)
	return &c
}
