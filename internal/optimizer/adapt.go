package optimizer

import (
	"context"
	"log/slog"
	"time"

	"github.com/HR-AR/Project-Conductor-sub004/internal/events"
	"github.com/HR-AR/Project-Conductor-sub004/internal/goal"
	"github.com/HR-AR/Project-Conductor-sub004/internal/observability"
	"github.com/HR-AR/Project-Conductor-sub004/internal/plan"
	"github.com/HR-AR/Project-Conductor-sub004/internal/types"
)

// AdaptationTrigger identifies why a running plan is being adapted.
type AdaptationTrigger string

const (
	TriggerTaskFailure      AdaptationTrigger = "task_failure"
	TriggerConflictDetected AdaptationTrigger = "conflict_detected"
	TriggerTimeOverrun      AdaptationTrigger = "time_overrun"
	TriggerManual           AdaptationTrigger = "manual"
)

// String returns the string representation of the trigger.
func (t AdaptationTrigger) String() string {
	return string(t)
}

// RiskChange describes how an adaptation moved the plan's risk posture.
type RiskChange string

const (
	RiskIncreased RiskChange = "increased"
	RiskDecreased RiskChange = "decreased"
	RiskUnchanged RiskChange = "unchanged"
)

// ExecutionMetrics is runtime telemetry aggregated by the orchestration
// runtime and fed into adaptation decisions.
type ExecutionMetrics struct {
	TotalTasks             int     `json:"total_tasks"`
	CompletedTasks         int     `json:"completed_tasks"`
	FailedTasks            int     `json:"failed_tasks"`
	SkippedTasks           int     `json:"skipped_tasks"`
	AverageTaskDuration    float64 `json:"average_task_duration"`
	PlanProgress           float64 `json:"plan_progress"`
	EstimatedTimeRemaining int     `json:"estimated_time_remaining"`
}

// ExecutionEvent is a single runtime occurrence reported by the runtime.
type ExecutionEvent struct {
	Type      string    `json:"type"`
	TaskID    string    `json:"task_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ExecutionContext is the runtime telemetry supplied by the (external)
// orchestration runtime when requesting an adaptation. A zero value is
// acceptable for manual adaptations.
type ExecutionContext struct {
	PlanID         types.ID         `json:"plan_id"`
	CurrentTask    string           `json:"current_task,omitempty"`
	CompletedTasks []string         `json:"completed_tasks"`
	FailedTasks    []string         `json:"failed_tasks"`
	BlockedTasks   []string         `json:"blocked_tasks"`
	ActiveAgents   []goal.AgentType `json:"active_agents"`
	Metrics        ExecutionMetrics `json:"metrics"`
	Events         []ExecutionEvent `json:"events,omitempty"`
}

// AdaptationImpact quantifies what an adaptation did to the plan.
type AdaptationImpact struct {
	TasksAffected           int        `json:"tasks_affected"`
	EstimatedDurationChange int        `json:"estimated_duration_change"`
	RiskChange              RiskChange `json:"risk_change"`
}

// PlanAdaptation is the immutable audit record of one adaptation.
type PlanAdaptation struct {
	PlanID    types.ID          `json:"plan_id"`
	Trigger   AdaptationTrigger `json:"trigger"`
	Reason    string            `json:"reason,omitempty"`
	Changes   []string          `json:"changes"`
	Impact    AdaptationImpact  `json:"impact"`
	CreatedAt time.Time         `json:"created_at"`
}

// AdaptPlan revises a running plan in response to a runtime trigger and
// returns the revised plan together with an audit record. The input plan
// is never mutated. Adaptation is defensive: an empty context or unknown
// trigger produces a no-op adaptation, never a failure.
func (o *Optimizer) AdaptPlan(ctx context.Context, p *plan.ExecutionPlan, execCtx ExecutionContext, trigger AdaptationTrigger, reason string) (*plan.ExecutionPlan, PlanAdaptation) {
	ctx, span := observability.StartSpan(ctx, "plan.adapt",
		observability.String(observability.AttrPlanID, p.ID.String()),
		observability.String(observability.AttrTrigger, trigger.String()))
	defer span.End()

	adapted := p.Clone()
	adaptation := PlanAdaptation{
		PlanID:    p.ID,
		Trigger:   trigger,
		Reason:    reason,
		Impact:    AdaptationImpact{RiskChange: RiskUnchanged},
		CreatedAt: time.Now(),
	}

	switch trigger {
	case TriggerTaskFailure:
		o.adaptToFailure(adapted, execCtx, &adaptation)
	case TriggerConflictDetected:
		o.adaptToConflict(adapted, execCtx, &adaptation)
	case TriggerTimeOverrun:
		o.adaptToOverrun(adapted, execCtx, &adaptation)
	case TriggerManual:
		adaptation.Changes = append(adaptation.Changes, "manual adaptation recorded")
	}

	adapted.UpdatedAt = time.Now()

	o.logger.Info("adapted plan",
		slog.String("plan_id", p.ID.String()),
		slog.String("trigger", trigger.String()),
		slog.Int("tasks_affected", adaptation.Impact.TasksAffected))

	_ = o.emitter.Emit(ctx, events.Event{
		Type:   events.EventPlanAdapted,
		PlanID: p.ID,
		Payload: map[string]any{
			"trigger":        trigger.String(),
			"tasks_affected": adaptation.Impact.TasksAffected,
			"risk_change":    string(adaptation.Impact.RiskChange),
		},
	})

	return adapted, adaptation
}

// adaptToFailure marks failed tasks for retry. A failure on the critical
// path also resets its critical-path successors so the retried chain
// re-executes in order.
func (o *Optimizer) adaptToFailure(p *plan.ExecutionPlan, execCtx ExecutionContext, adaptation *PlanAdaptation) {
	affected := 0
	for _, failedID := range execCtx.FailedTasks {
		t := p.TaskByID(failedID)
		if t == nil {
			continue
		}
		t.Status = plan.TaskStatusPending
		affected++
		adaptation.Changes = append(adaptation.Changes, "reset failed task "+failedID+" for retry")

		if !p.Dependencies.OnCriticalPath(failedID) {
			continue
		}
		for _, succ := range criticalPathSuccessors(p, failedID) {
			st := p.TaskByID(succ)
			if st == nil || st.Status == plan.TaskStatusPending {
				continue
			}
			st.Status = plan.TaskStatusPending
			affected++
			adaptation.Changes = append(adaptation.Changes, "reset critical-path successor "+succ)
		}
	}
	adaptation.Impact.TasksAffected = affected
}

// adaptToConflict blocks every task causally downstream of the
// conflicting task until a human resolves the conflict.
func (o *Optimizer) adaptToConflict(p *plan.ExecutionPlan, execCtx ExecutionContext, adaptation *PlanAdaptation) {
	conflictID := execCtx.CurrentTask
	if conflictID == "" && len(execCtx.FailedTasks) > 0 {
		conflictID = execCtx.FailedTasks[len(execCtx.FailedTasks)-1]
	}
	if conflictID == "" || p.TaskByID(conflictID) == nil {
		adaptation.Impact.RiskChange = RiskIncreased
		return
	}

	affected := 0
	for _, id := range downstreamOf(p, conflictID) {
		t := p.TaskByID(id)
		if t == nil || t.Status.IsTerminal() {
			continue
		}
		t.Status = plan.TaskStatusBlocked
		affected++
		adaptation.Changes = append(adaptation.Changes, "blocked downstream task "+id)
	}
	adaptation.Impact.TasksAffected = affected
	adaptation.Impact.RiskChange = RiskIncreased
}

// adaptToOverrun recovers schedule by parallelizing the remaining
// incomplete tasks and lifting the width assumption.
func (o *Optimizer) adaptToOverrun(p *plan.ExecutionPlan, execCtx ExecutionContext, adaptation *PlanAdaptation) {
	before := p.EstimatedDuration

	affected := 0
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if t.Status == plan.TaskStatusCompleted || t.Status == plan.TaskStatusSkipped {
			continue
		}
		if !t.CanRunInParallel {
			t.CanRunInParallel = true
			affected++
			adaptation.Changes = append(adaptation.Changes, "parallelized remaining task "+t.ID)
		}
	}
	recompute(p, uncappedParallelTasks)

	adaptation.Impact.TasksAffected = affected
	adaptation.Impact.EstimatedDurationChange = p.EstimatedDuration - before
}

// criticalPathSuccessors returns the critical-path task ids after the
// given task, in path order.
func criticalPathSuccessors(p *plan.ExecutionPlan, id string) []string {
	for i, node := range p.Dependencies.CriticalPath {
		if node == id {
			return append([]string(nil), p.Dependencies.CriticalPath[i+1:]...)
		}
	}
	return nil
}

// downstreamOf returns every task transitively dependent on the given
// task, in task-list order.
func downstreamOf(p *plan.ExecutionPlan, id string) []string {
	downstream := map[string]bool{id: true}
	// Tasks are in dependency order for generated plans, but a single
	// pass is not guaranteed for arbitrary plans; iterate to fixpoint.
	for changed := true; changed; {
		changed = false
		for _, t := range p.Tasks {
			if downstream[t.ID] {
				continue
			}
			for _, dep := range t.Dependencies {
				if downstream[dep] {
					downstream[t.ID] = true
					changed = true
					break
				}
			}
		}
	}

	var ids []string
	for _, t := range p.Tasks {
		if t.ID != id && downstream[t.ID] {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
