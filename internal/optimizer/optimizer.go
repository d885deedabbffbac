// Package optimizer rewrites execution plans under different objective
// strategies, computes bounded-width execution ordering, adapts running
// plans to failures and slippage, and compares candidate plans.
//
// Optimizer operations assume a structurally valid plan; callers must
// validate first. All operations return new plan values and leave their
// input untouched.
package optimizer

import (
	"context"
	"log/slog"
	"time"

	"github.com/HR-AR/Project-Conductor-sub004/internal/events"
	"github.com/HR-AR/Project-Conductor-sub004/internal/goal"
	"github.com/HR-AR/Project-Conductor-sub004/internal/observability"
	"github.com/HR-AR/Project-Conductor-sub004/internal/plan"
)

// Strategy selects the optimization objective.
type Strategy string

const (
	// StrategyBalanced trades duration against risk; its schedule never
	// beats minimize_duration nor exceeds minimize_risk.
	StrategyBalanced Strategy = "balanced"

	// StrategyMinimizeDuration maximizes concurrency to shorten the schedule.
	StrategyMinimizeDuration Strategy = "minimize_duration"

	// StrategyMinimizeRisk serializes security-sensitive work, accepting
	// a longer schedule for a lower risk posture.
	StrategyMinimizeRisk Strategy = "minimize_risk"

	// StrategyMaximizeParallelization flags every dependency-safe task as
	// parallel-eligible without directly targeting duration.
	StrategyMaximizeParallelization Strategy = "maximize_parallelization"
)

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	return string(s)
}

// IsValid checks whether the strategy is a known value.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyBalanced, StrategyMinimizeDuration, StrategyMinimizeRisk, StrategyMaximizeParallelization:
		return true
	default:
		return false
	}
}

// Parameters tune a strategy.
type Parameters struct {
	// MaxParallelTasks caps how many tasks the schedule assumes can run
	// at once. Zero means the optimizer default.
	MaxParallelTasks int `json:"max_parallel_tasks,omitempty"`

	// RiskTolerance in [0,1]; lower tolerance serializes more work under
	// the risk-aware strategies.
	RiskTolerance float64 `json:"risk_tolerance,omitempty"`
}

// OptimizationStrategy pairs a strategy with its parameters.
type OptimizationStrategy struct {
	Strategy   Strategy   `json:"strategy"`
	Parameters Parameters `json:"parameters"`
}

// defaultMaxParallelTasks mirrors the generator's scheduling assumption.
const defaultMaxParallelTasks = 3

// uncappedParallelTasks is the effective cap under minimize_duration.
const uncappedParallelTasks = 64

// Optimizer rewrites plans under objective strategies.
type Optimizer struct {
	logger  *slog.Logger
	emitter events.Emitter
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithLogger sets the optimizer's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Optimizer) {
		o.logger = logger
	}
}

// WithEmitter sets the event emitter.
func WithEmitter(emitter events.Emitter) Option {
	return func(o *Optimizer) {
		o.emitter = emitter
	}
}

// New creates an optimizer.
func New(opts ...Option) *Optimizer {
	o := &Optimizer{
		logger:  slog.Default(),
		emitter: events.NopEmitter{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// OptimizePlan rewrites the plan under the given strategy and returns a
// new plan. The plan id is preserved and updated_at refreshed. Graph
// validity is preserved: no strategy adds or removes dependency edges.
func (o *Optimizer) OptimizePlan(ctx context.Context, p *plan.ExecutionPlan, strategy OptimizationStrategy) *plan.ExecutionPlan {
	if !strategy.Strategy.IsValid() {
		strategy.Strategy = StrategyBalanced
	}

	ctx, span := observability.StartSpan(ctx, "plan.optimize",
		observability.String(observability.AttrPlanID, p.ID.String()),
		observability.String(observability.AttrStrategy, strategy.Strategy.String()))
	defer span.End()

	optimized := p.Clone()
	width := strategy.Parameters.MaxParallelTasks
	if width <= 0 {
		width = defaultMaxParallelTasks
	}

	switch strategy.Strategy {
	case StrategyMinimizeDuration:
		// Every task becomes parallel-eligible and the width cap is
		// lifted, so the schedule can only shrink.
		setAllParallel(optimized)
		if strategy.Parameters.MaxParallelTasks <= 0 {
			width = uncappedParallelTasks
		}

	case StrategyMinimizeRisk:
		// Security-sensitive and high-risk tasks run serialized, which
		// lengthens the schedule but removes concurrent blast radius.
		serializeTasks(optimized, riskSensitive(optimized, strategy.Parameters.RiskTolerance))
		reduceSecurityRisk(optimized)

	case StrategyMaximizeParallelization:
		setAllParallel(optimized)

	case StrategyBalanced:
		// Between the two extremes: only the critical security work is
		// serialized, everything else stays parallel.
		setAllParallel(optimized)
		serializeTasks(optimized, criticalSecurityTasks(optimized))
	}

	recompute(optimized, width)
	optimized.UpdatedAt = time.Now()

	o.logger.Debug("optimized plan",
		slog.String("plan_id", optimized.ID.String()),
		slog.String("strategy", strategy.Strategy.String()),
		slog.Int("duration_before", p.EstimatedDuration),
		slog.Int("duration_after", optimized.EstimatedDuration))

	_ = o.emitter.Emit(ctx, events.Event{
		Type:   events.EventPlanOptimized,
		PlanID: optimized.ID,
		Payload: map[string]any{
			"strategy":        strategy.Strategy.String(),
			"duration_before": p.EstimatedDuration,
			"duration_after":  optimized.EstimatedDuration,
		},
	})

	return optimized
}

// recompute rebuilds the graph, opportunities and schedule after task
// mutations. Dependencies are untouched, so layers stay stable unless a
// task list changed.
func recompute(p *plan.ExecutionPlan, maxParallel int) {
	p.Dependencies = plan.BuildDependencyGraph(p.Tasks)
	p.ParallelizationOpportunities = plan.FindParallelization(p.Tasks, p.Dependencies.Layers)
	p.EstimatedDuration = plan.ScheduleDuration(p.Tasks, p.Dependencies.Layers, maxParallel)
	p.CriticalPathDuration = plan.CriticalPathDuration(p.Tasks, p.Dependencies)
}

func setAllParallel(p *plan.ExecutionPlan) {
	for i := range p.Tasks {
		p.Tasks[i].CanRunInParallel = true
	}
}

func serializeTasks(p *plan.ExecutionPlan, ids map[string]bool) {
	for i := range p.Tasks {
		if ids[p.Tasks[i].ID] {
			p.Tasks[i].CanRunInParallel = false
		}
	}
}

// criticalSecurityTasks returns the ids of critical-priority tasks owned
// by security agents. This is the balanced strategy's serialization set.
func criticalSecurityTasks(p *plan.ExecutionPlan) map[string]bool {
	ids := make(map[string]bool)
	for _, t := range p.Tasks {
		if t.Priority == plan.PriorityCritical && securityAgent(t.AgentType) {
			ids[t.ID] = true
		}
	}
	return ids
}

// riskSensitive returns the serialization set for minimize_risk: all
// security-agent tasks plus, under low risk tolerance, integration tasks
// whose external dependencies can fail independently. The balanced set is
// always a subset of this one, which keeps the duration ordering between
// the two strategies.
func riskSensitive(p *plan.ExecutionPlan, riskTolerance float64) map[string]bool {
	ids := criticalSecurityTasks(p)
	for _, t := range p.Tasks {
		if securityAgent(t.AgentType) {
			ids[t.ID] = true
		}
		if riskTolerance < 0.5 && t.AgentType == goal.AgentIntegration {
			ids[t.ID] = true
		}
	}
	return ids
}

func securityAgent(a goal.AgentType) bool {
	return a == goal.AgentAuth || a == goal.AgentRBAC
}

// reduceSecurityRisk downgrades the security risk one severity step to
// reflect serialized execution of the sensitive tasks.
func reduceSecurityRisk(p *plan.ExecutionPlan) {
	for i := range p.RiskAssessment.Risks {
		r := &p.RiskAssessment.Risks[i]
		if r.Type != "security" {
			continue
		}
		switch r.Severity {
		case plan.RiskCritical:
			r.Severity = plan.RiskHigh
		case plan.RiskHigh:
			r.Severity = plan.RiskMedium
		case plan.RiskMedium:
			r.Severity = plan.RiskLow
		}
	}

	overall := plan.RiskLow
	for _, r := range p.RiskAssessment.Risks {
		if r.Severity.Rank() > overall.Rank() {
			overall = r.Severity
		}
	}
	p.RiskAssessment.OverallRisk = overall
}
