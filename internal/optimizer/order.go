package optimizer

import (
	"context"
	"log/slog"

	"github.com/HR-AR/Project-Conductor-sub004/internal/events"
	"github.com/HR-AR/Project-Conductor-sub004/internal/observability"
	"github.com/HR-AR/Project-Conductor-sub004/internal/plan"
)

// GetExecutionOrder partitions the plan's tasks into execution waves. A
// task joins a wave only after all of its dependencies were placed in
// strictly earlier waves, and no wave exceeds maxParallelTasks; overflow
// spills to later waves preserving readiness order. A non-positive
// maxParallelTasks uses the default width. Plans with cyclic
// dependencies cannot be ordered and yield an empty result; the
// validator reports the cycle itself.
func (o *Optimizer) GetExecutionOrder(ctx context.Context, p *plan.ExecutionPlan, maxParallelTasks int) [][]plan.Task {
	ctx, span := observability.StartSpan(ctx, "plan.execution_order",
		observability.String(observability.AttrPlanID, p.ID.String()),
		observability.Int(observability.AttrTaskCount, len(p.Tasks)))
	defer span.End()

	if maxParallelTasks <= 0 {
		maxParallelTasks = defaultMaxParallelTasks
	}

	placed := make(map[string]bool, len(p.Tasks))
	remaining := make([]plan.Task, len(p.Tasks))
	copy(remaining, p.Tasks)

	var waves [][]plan.Task
	for len(remaining) > 0 {
		var wave []plan.Task
		var deferred []plan.Task
		for _, t := range remaining {
			if len(wave) < maxParallelTasks && ready(t, placed) {
				wave = append(wave, t)
			} else {
				deferred = append(deferred, t)
			}
		}
		if len(wave) == 0 {
			o.logger.Warn("execution order aborted, unresolvable dependencies",
				slog.String("plan_id", p.ID.String()),
				slog.Int("unplaced_tasks", len(deferred)))
			return nil
		}
		for _, t := range wave {
			placed[t.ID] = true
		}
		waves = append(waves, wave)
		remaining = deferred
	}

	o.logger.Debug("computed execution order",
		slog.String("plan_id", p.ID.String()),
		slog.Int("waves", len(waves)))

	_ = o.emitter.Emit(ctx, events.Event{
		Type:   events.EventExecutionOrderComputed,
		PlanID: p.ID,
		Payload: map[string]any{
			"waves":              len(waves),
			"max_parallel_tasks": maxParallelTasks,
		},
	})

	return waves
}

// ready reports whether every dependency of the task is already placed.
func ready(t plan.Task, placed map[string]bool) bool {
	for _, dep := range t.Dependencies {
		if !placed[dep] {
			return false
		}
	}
	return true
}
