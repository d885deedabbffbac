package plan

import (
	"fmt"
	"strings"

	"github.com/HR-AR/Project-Conductor-sub004/internal/types"
)

// ValidationIssue is a single structural problem found in a plan.
type ValidationIssue struct {
	Code    types.ErrorCode `json:"code"`
	Message string          `json:"message"`
	TaskIDs []string        `json:"task_ids,omitempty"`
}

// ValidationResult aggregates errors, warnings and suggestions for a plan.
// A plan is valid when it has no errors; warnings and suggestions are
// advisory.
type ValidationResult struct {
	IsValid     bool              `json:"is_valid"`
	Errors      []ValidationIssue `json:"errors"`
	Warnings    []ValidationIssue `json:"warnings"`
	Suggestions []string          `json:"suggestions"`
}

// Validator performs structural validation of execution plans: missing
// dependencies, dependency cycles, duration ceilings and unclaimed
// parallelization opportunities.
type Validator struct {
	// DurationCeiling is the total plan duration (minutes) past which a
	// warning is emitted. Zero disables the check.
	DurationCeiling int
}

// NewValidator creates a validator with the given duration ceiling.
func NewValidator(durationCeiling int) *Validator {
	return &Validator{DurationCeiling: durationCeiling}
}

// Validate runs all checks against the plan. Structural problems are
// returned, never thrown: a malformed plan yields errors in the result.
func (v *Validator) Validate(p *ExecutionPlan) ValidationResult {
	result := ValidationResult{}

	if len(p.Tasks) == 0 {
		result.Errors = append(result.Errors, ValidationIssue{
			Code:    types.PLAN_EMPTY,
			Message: "plan contains no tasks",
		})
		return result
	}

	index := taskIndex(p.Tasks)

	// Missing dependencies first: cycle detection assumes resolvable edges.
	for _, t := range p.Tasks {
		for _, dep := range t.Dependencies {
			if _, ok := index[dep]; !ok {
				result.Errors = append(result.Errors, ValidationIssue{
					Code:    types.PLAN_MISSING_DEPENDENCY,
					Message: fmt.Sprintf("task %s depends on unknown task %s", t.ID, dep),
					TaskIDs: []string{t.ID, dep},
				})
			}
		}
	}

	if cycle := detectCycle(p.Tasks, index); len(cycle) > 0 {
		result.Errors = append(result.Errors, ValidationIssue{
			Code:    types.PLAN_CYCLE_DETECTED,
			Message: fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")),
			TaskIDs: cycle,
		})
	}

	if v.DurationCeiling > 0 {
		if total := p.SequentialDuration(); total > v.DurationCeiling {
			result.Warnings = append(result.Warnings, ValidationIssue{
				Code:    types.PLAN_VALIDATION_FAILED,
				Message: fmt.Sprintf("total duration %d min exceeds ceiling %d min", total, v.DurationCeiling),
			})
		}
	}

	for _, opp := range FindParallelization(p.Tasks, p.Dependencies.Layers) {
		if !claimed(p.ParallelizationOpportunities, opp) {
			result.Suggestions = append(result.Suggestions, fmt.Sprintf(
				"tasks %s could run in parallel, saving ~%d min",
				strings.Join(opp.TaskIDs, ", "), opp.EstimatedTimeSaved))
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// detectCycle uses depth-first search with color marking to find a
// dependency cycle. Colors: white (0) = unvisited, gray (1) = on the
// recursion stack, black (2) = done. Returns the task-id loop if found.
func detectCycle(tasks []Task, index map[string]*Task) []string {
	color := make(map[string]int, len(tasks))
	parent := make(map[string]string, len(tasks))

	// Adjacency follows the dependency direction: dep -> dependent.
	adj := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if _, ok := index[dep]; ok {
				adj[dep] = append(adj[dep], t.ID)
			}
		}
	}

	var dfs func(id string) []string
	dfs = func(id string) []string {
		color[id] = 1
		for _, next := range adj[id] {
			switch color[next] {
			case 0:
				parent[next] = id
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			case 1:
				// Back edge: reconstruct the loop.
				cycle := []string{next}
				for current := id; current != next; current = parent[current] {
					cycle = append([]string{current}, cycle...)
				}
				return append([]string{next}, cycle...)
			}
		}
		color[id] = 2
		return nil
	}

	for _, t := range tasks {
		if color[t.ID] == 0 {
			if cycle := dfs(t.ID); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

func claimed(existing []ParallelizationOpportunity, opp ParallelizationOpportunity) bool {
	key := strings.Join(opp.TaskIDs, "|")
	for _, e := range existing {
		if strings.Join(e.TaskIDs, "|") == key {
			return true
		}
	}
	return false
}
