package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HR-AR/Project-Conductor-sub004/internal/goal"
	"github.com/HR-AR/Project-Conductor-sub004/internal/plan"
	"github.com/HR-AR/Project-Conductor-sub004/internal/types"
)

func generatePlan(t *testing.T, goalText string) *plan.ExecutionPlan {
	t.Helper()
	gen := plan.NewGenerator(goal.NewParser())
	p, err := gen.Generate(context.Background(), goalText)
	require.NoError(t, err)
	require.NotEmpty(t, p.Tasks)
	return p
}

func TestOptimizePlanPreservesTasksAndEdges(t *testing.T) {
	p := generatePlan(t, "Build a RESTful API for user management with authentication")
	o := New()

	for _, s := range []Strategy{StrategyBalanced, StrategyMinimizeDuration, StrategyMinimizeRisk, StrategyMaximizeParallelization} {
		optimized := o.OptimizePlan(context.Background(), p, OptimizationStrategy{Strategy: s})

		assert.Equal(t, p.ID, optimized.ID, "strategy %s must preserve the plan id", s)
		assert.Len(t, optimized.Tasks, len(p.Tasks), "strategy %s must not add or drop tasks", s)
		assert.Equal(t, len(p.Dependencies.Edges), len(optimized.Dependencies.Edges),
			"strategy %s must not rewrite dependency edges", s)
		for _, task := range p.Tasks {
			out := optimized.TaskByID(task.ID)
			require.NotNil(t, out, "strategy %s lost task %s", s, task.ID)
			assert.Equal(t, task.Dependencies, out.Dependencies)
		}
	}
}

func TestOptimizePlanDoesNotMutateInput(t *testing.T) {
	p := generatePlan(t, "Build a RESTful API for user management with authentication")
	before := p.Clone()

	New().OptimizePlan(context.Background(), p, OptimizationStrategy{Strategy: StrategyMinimizeRisk})

	assert.Equal(t, before.EstimatedDuration, p.EstimatedDuration)
	for i := range p.Tasks {
		assert.Equal(t, before.Tasks[i].CanRunInParallel, p.Tasks[i].CanRunInParallel)
	}
	assert.Equal(t, before.RiskAssessment.OverallRisk, p.RiskAssessment.OverallRisk)
}

func TestStrategyDurationOrdering(t *testing.T) {
	o := New()
	goals := []string{
		"Build a RESTful API for user management with authentication and rbac",
		"Add authentication to the project",
		"Build a real-time dashboard with websockets and user interface",
	}

	for _, g := range goals {
		p := generatePlan(t, g)

		minDur := o.OptimizePlan(context.Background(), p, OptimizationStrategy{Strategy: StrategyMinimizeDuration})
		minRisk := o.OptimizePlan(context.Background(), p, OptimizationStrategy{Strategy: StrategyMinimizeRisk})
		balanced := o.OptimizePlan(context.Background(), p, OptimizationStrategy{Strategy: StrategyBalanced})

		assert.LessOrEqual(t, minDur.EstimatedDuration, p.EstimatedDuration,
			"minimize_duration must not lengthen the schedule for %q", g)
		assert.GreaterOrEqual(t, minRisk.EstimatedDuration, p.EstimatedDuration,
			"minimize_risk must not shorten the schedule for %q", g)
		assert.LessOrEqual(t, minDur.EstimatedDuration, balanced.EstimatedDuration)
		assert.LessOrEqual(t, balanced.EstimatedDuration, minRisk.EstimatedDuration)
	}
}

func TestMinimizeRiskSerializesSecurityTasks(t *testing.T) {
	p := generatePlan(t, "Add authentication and rbac to the project")
	optimized := New().OptimizePlan(context.Background(), p, OptimizationStrategy{Strategy: StrategyMinimizeRisk})

	for _, task := range optimized.Tasks {
		if task.AgentType == goal.AgentAuth || task.AgentType == goal.AgentRBAC {
			assert.False(t, task.CanRunInParallel, "security task %s must be serialized", task.ID)
		}
	}
}

func TestMinimizeRiskLowersSecuritySeverity(t *testing.T) {
	p := generatePlan(t, "Add authentication to the project")

	var before plan.RiskLevel
	for _, r := range p.RiskAssessment.Risks {
		if r.Type == "security" {
			before = r.Severity
		}
	}
	require.NotEmpty(t, before, "auth plan must carry a security risk")

	optimized := New().OptimizePlan(context.Background(), p, OptimizationStrategy{Strategy: StrategyMinimizeRisk})
	for _, r := range optimized.RiskAssessment.Risks {
		if r.Type == "security" {
			assert.Less(t, r.Severity.Rank(), before.Rank())
		}
	}
	assert.LessOrEqual(t, optimized.RiskAssessment.OverallRisk.Rank(), p.RiskAssessment.OverallRisk.Rank())
}

func TestMaximizeParallelizationFlagsAllTasks(t *testing.T) {
	p := generatePlan(t, "Build a RESTful API for user management with authentication")
	// Simulate a caller that previously serialized some work.
	p.Tasks[0].CanRunInParallel = false

	optimized := New().OptimizePlan(context.Background(), p, OptimizationStrategy{Strategy: StrategyMaximizeParallelization})
	for _, task := range optimized.Tasks {
		assert.True(t, task.CanRunInParallel)
	}
}

func TestOptimizePlanUnknownStrategyFallsBackToBalanced(t *testing.T) {
	p := generatePlan(t, "Build a RESTful API for user management")
	o := New()

	fallback := o.OptimizePlan(context.Background(), p, OptimizationStrategy{Strategy: Strategy("aggressive")})
	balanced := o.OptimizePlan(context.Background(), p, OptimizationStrategy{Strategy: StrategyBalanced})

	assert.Equal(t, balanced.EstimatedDuration, fallback.EstimatedDuration)
}

func TestGetExecutionOrderInvariants(t *testing.T) {
	p := generatePlan(t, "Build a RESTful API for user management with authentication and rbac")
	o := New()

	for _, k := range []int{1, 2, 3, 10} {
		waves := o.GetExecutionOrder(context.Background(), p, k)
		require.NotEmpty(t, waves, "k=%d", k)

		placed := make(map[string]int)
		for i, wave := range waves {
			assert.LessOrEqual(t, len(wave), k, "wave %d exceeds width %d", i, k)
			assert.NotEmpty(t, wave, "wave %d is empty", i)
			for _, task := range wave {
				_, seen := placed[task.ID]
				assert.False(t, seen, "task %s placed twice", task.ID)
				placed[task.ID] = i
			}
		}
		assert.Len(t, placed, len(p.Tasks), "k=%d must place every task exactly once", k)

		for i, wave := range waves {
			for _, task := range wave {
				for _, dep := range task.Dependencies {
					depWave, ok := placed[dep]
					require.True(t, ok, "dependency %s of %s never placed", dep, task.ID)
					assert.Less(t, depWave, i,
						"dependency %s of %s must run in a strictly earlier wave", dep, task.ID)
				}
			}
		}
	}
}

func TestGetExecutionOrderSpillsOverflow(t *testing.T) {
	p := generatePlan(t, "Build a RESTful API for user management with authentication and a dashboard ui")
	waves := New().GetExecutionOrder(context.Background(), p, 1)

	require.Len(t, waves, len(p.Tasks))
	for _, wave := range waves {
		assert.Len(t, wave, 1)
	}
}

func TestGetExecutionOrderCyclicPlan(t *testing.T) {
	p := generatePlan(t, "Build a RESTful API for user management")
	// Corrupt the plan with a cycle between the first two tasks.
	p.Tasks[0].Dependencies = append(p.Tasks[0].Dependencies, p.Tasks[1].ID)
	p.Tasks[1].Dependencies = append(p.Tasks[1].Dependencies, p.Tasks[0].ID)

	waves := New().GetExecutionOrder(context.Background(), p, 3)
	assert.Nil(t, waves)
}

func TestAdaptPlanTaskFailure(t *testing.T) {
	p := generatePlan(t, "Build a RESTful API for user management with authentication")
	failedID := p.Tasks[0].ID
	p.TaskByID(failedID).Status = plan.TaskStatusFailed

	adapted, record := New().AdaptPlan(context.Background(), p, ExecutionContext{
		PlanID:      p.ID,
		FailedTasks: []string{failedID},
	}, TriggerTaskFailure, "agent crashed")

	assert.Equal(t, TriggerTaskFailure, record.Trigger)
	assert.Greater(t, record.Impact.TasksAffected, 0)
	assert.Equal(t, plan.TaskStatusPending, adapted.TaskByID(failedID).Status)
	// The input plan keeps its failed status.
	assert.Equal(t, plan.TaskStatusFailed, p.TaskByID(failedID).Status)
}

func TestAdaptPlanCriticalPathFailureResetsSuccessors(t *testing.T) {
	p := generatePlan(t, "Build a RESTful API for user management")
	require.NotEmpty(t, p.Dependencies.CriticalPath)

	failedID := p.Dependencies.CriticalPath[0]
	p.TaskByID(failedID).Status = plan.TaskStatusFailed
	for _, id := range p.Dependencies.CriticalPath[1:] {
		p.TaskByID(id).Status = plan.TaskStatusInProgress
	}

	adapted, record := New().AdaptPlan(context.Background(), p, ExecutionContext{
		PlanID:      p.ID,
		FailedTasks: []string{failedID},
	}, TriggerTaskFailure, "")

	for _, id := range p.Dependencies.CriticalPath {
		assert.Equal(t, plan.TaskStatusPending, adapted.TaskByID(id).Status,
			"critical-path task %s must be reset", id)
	}
	assert.GreaterOrEqual(t, record.Impact.TasksAffected, len(p.Dependencies.CriticalPath))
}

func TestAdaptPlanConflictBlocksDownstream(t *testing.T) {
	p := generatePlan(t, "Build a RESTful API for user management")
	conflictID := plan.TaskIDModels
	require.NotNil(t, p.TaskByID(conflictID))

	adapted, record := New().AdaptPlan(context.Background(), p, ExecutionContext{
		PlanID:      p.ID,
		CurrentTask: conflictID,
	}, TriggerConflictDetected, "divergent schema edits")

	assert.Equal(t, RiskIncreased, record.Impact.RiskChange)
	assert.Greater(t, record.Impact.TasksAffected, 0)

	blocked := 0
	for _, task := range adapted.Tasks {
		if task.Status == plan.TaskStatusBlocked {
			blocked++
			assert.NotEqual(t, conflictID, task.ID, "the conflicting task itself is not blocked")
		}
	}
	assert.Equal(t, record.Impact.TasksAffected, blocked)
}

func TestAdaptPlanTimeOverrunShortensSchedule(t *testing.T) {
	p := generatePlan(t, "Build a RESTful API for user management with authentication")
	// Serialize everything so the overrun response has room to recover.
	for i := range p.Tasks {
		p.Tasks[i].CanRunInParallel = false
	}
	optimized := New().OptimizePlan(context.Background(), p, OptimizationStrategy{
		Strategy:   StrategyMinimizeRisk,
		Parameters: Parameters{MaxParallelTasks: 1},
	})

	adapted, record := New().AdaptPlan(context.Background(), optimized, ExecutionContext{
		PlanID: optimized.ID,
		Metrics: ExecutionMetrics{
			AverageTaskDuration: 500,
		},
	}, TriggerTimeOverrun, "tasks running long")

	assert.Less(t, adapted.EstimatedDuration, optimized.EstimatedDuration)
	assert.Negative(t, record.Impact.EstimatedDurationChange)
}

func TestAdaptPlanManualEmptyContext(t *testing.T) {
	p := generatePlan(t, "Build a RESTful API for user management")

	adapted, record := New().AdaptPlan(context.Background(), p, ExecutionContext{}, TriggerManual, "operator request")

	assert.Equal(t, TriggerManual, record.Trigger)
	assert.Equal(t, RiskUnchanged, record.Impact.RiskChange)
	assert.Zero(t, record.Impact.TasksAffected)
	assert.Len(t, adapted.Tasks, len(p.Tasks))
}

func TestComparePlansRecommendsShorterSchedule(t *testing.T) {
	p := generatePlan(t, "Build a RESTful API for user management")
	o := New()

	fast := o.OptimizePlan(context.Background(), p, OptimizationStrategy{Strategy: StrategyMinimizeDuration})
	slow := o.OptimizePlan(context.Background(), p, OptimizationStrategy{
		Strategy:   StrategyMinimizeRisk,
		Parameters: Parameters{MaxParallelTasks: 1},
	})
	slow.ID = types.NewID()
	// Same risk posture, so duration decides.
	require.NotEqual(t, fast.EstimatedDuration, slow.EstimatedDuration)

	cmp, err := ComparePlans([]*plan.ExecutionPlan{slow, fast})
	require.NoError(t, err)

	assert.Equal(t, fast.ID, cmp.Recommended)
	assert.Equal(t, fast.ID, cmp.ByDuration[0])
	assert.Len(t, cmp.Summaries, 2)
	assert.NotEmpty(t, cmp.Recommendation)
}

func comparablePlan(duration int, risk plan.RiskLevel, parallel bool) *plan.ExecutionPlan {
	return &plan.ExecutionPlan{
		ID: types.NewID(),
		Tasks: []plan.Task{{
			ID:                "task-001",
			Name:              "work",
			EstimatedDuration: duration,
			CanRunInParallel:  parallel,
		}},
		EstimatedDuration: duration,
		RiskAssessment:    plan.RiskAssessment{OverallRisk: risk},
	}
}

func TestComparePlansShorterPlanNeverLosesOnParallelism(t *testing.T) {
	shorter := comparablePlan(100, plan.RiskLow, false)
	longer := comparablePlan(120, plan.RiskLow, true)

	cmp, err := ComparePlans([]*plan.ExecutionPlan{longer, shorter})
	require.NoError(t, err)

	assert.Equal(t, shorter.ID, cmp.Recommended)
	assert.Equal(t, shorter.ID, cmp.ByDuration[0])
	assert.Equal(t, longer.ID, cmp.ByParallelism[0])
}

func TestComparePlansParallelismBreaksTies(t *testing.T) {
	serial := comparablePlan(100, plan.RiskLow, false)
	parallel := comparablePlan(100, plan.RiskLow, true)

	cmp, err := ComparePlans([]*plan.ExecutionPlan{serial, parallel})
	require.NoError(t, err)
	assert.Equal(t, parallel.ID, cmp.Recommended)
}

func TestComparePlansTradeoffs(t *testing.T) {
	fast := comparablePlan(100, plan.RiskHigh, false)
	safe := comparablePlan(150, plan.RiskLow, true)

	cmp, err := ComparePlans([]*plan.ExecutionPlan{fast, safe})
	require.NoError(t, err)
	require.Len(t, cmp.Tradeoffs, 2)

	assert.Contains(t, cmp.Tradeoffs[0], fast.ID.String())
	assert.Contains(t, cmp.Tradeoffs[0], "fastest schedule")
	assert.Contains(t, cmp.Tradeoffs[0], "highest risk")
	assert.Contains(t, cmp.Tradeoffs[1], safe.ID.String())
	assert.Contains(t, cmp.Tradeoffs[1], "slowest schedule")
	assert.Contains(t, cmp.Tradeoffs[1], "lowest risk")
	assert.Contains(t, cmp.Tradeoffs[1], "most parallelizable")
}

func TestComparePlansSinglePlan(t *testing.T) {
	p := generatePlan(t, "Build a RESTful API for user management")

	cmp, err := ComparePlans([]*plan.ExecutionPlan{p})
	require.NoError(t, err)
	assert.Equal(t, p.ID, cmp.Recommended)
}

func TestComparePlansEmpty(t *testing.T) {
	_, err := ComparePlans(nil)
	assert.Error(t, err)
}
