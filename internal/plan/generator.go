package plan

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/HR-AR/Project-Conductor-sub004/internal/events"
	"github.com/HR-AR/Project-Conductor-sub004/internal/goal"
	"github.com/HR-AR/Project-Conductor-sub004/internal/observability"
	"github.com/HR-AR/Project-Conductor-sub004/internal/types"
)

// Task ids emitted by the generator. Stable across runs so downstream
// layers and milestones can reference them deterministically.
const (
	TaskIDModels           = "define-data-models"
	TaskIDSchema           = "create-database-schema"
	TaskIDService          = "implement-service-layer"
	TaskIDControllers      = "implement-api-controllers"
	TaskIDAuth             = "implement-authentication"
	TaskIDRBAC             = "implement-rbac"
	TaskIDWebSocket        = "implement-websocket-server"
	TaskIDUI               = "build-user-interface"
	TaskIDDocumentation    = "write-documentation"
	TaskIDUnitTests        = "write-unit-tests"
	TaskIDIntegrationTests = "write-integration-tests"
)

// baseDurations maps task ids to effort baselines in minutes, before
// complexity scaling.
var baseDurations = map[string]int{
	TaskIDModels:           60,
	TaskIDSchema:           45,
	TaskIDService:          90,
	TaskIDControllers:      75,
	TaskIDAuth:             120,
	TaskIDRBAC:             90,
	TaskIDWebSocket:        90,
	TaskIDUI:               120,
	TaskIDDocumentation:    60,
	TaskIDUnitTests:        60,
	TaskIDIntegrationTests: 90,
}

// baseIntegrationDuration is the baseline for per-entity integration tasks.
const baseIntegrationDuration = 90

// complexityMultiplier scales effort baselines by goal complexity.
func complexityMultiplier(c goal.Complexity) float64 {
	switch c {
	case goal.ComplexitySimple:
		return 0.75
	case goal.ComplexityComplex:
		return 1.25
	case goal.ComplexityVeryComplex:
		return 1.5
	default:
		return 1.0
	}
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLogger sets the generator's logger.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithEmitter sets the event emitter used to announce generated plans.
func WithEmitter(emitter events.Emitter) GeneratorOption {
	return func(g *Generator) {
		g.emitter = emitter
	}
}

// WithMaxParallelTasks sets the concurrency assumption used for the
// plan's duration estimate.
func WithMaxParallelTasks(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.maxParallelTasks = n
		}
	}
}

// defaultMaxParallelTasks is the concurrency assumption when the caller
// does not configure one.
const defaultMaxParallelTasks = 3

// Generator synthesizes execution plans from parsed goals. Generation is
// a pure function of the ParsedGoal (plus configuration): the same goal
// always yields the same task graph.
type Generator struct {
	parser           *goal.Parser
	logger           *slog.Logger
	emitter          events.Emitter
	maxParallelTasks int
}

// NewGenerator creates a plan generator backed by the given goal parser.
func NewGenerator(parser *goal.Parser, opts ...GeneratorOption) *Generator {
	g := &Generator{
		parser:           parser,
		logger:           slog.Default(),
		emitter:          events.NopEmitter{},
		maxParallelTasks: defaultMaxParallelTasks,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate parses the goal text and produces an execution plan.
func (g *Generator) Generate(ctx context.Context, goalText string) (*ExecutionPlan, error) {
	parsed := g.parser.Parse(goalText)
	return g.FromParsedGoal(ctx, parsed)
}

// FromParsedGoal produces an execution plan from an already-parsed goal.
// It never fails on degenerate input: an empty capability set still
// yields a valid minimal plan because the parser defaults capabilities.
func (g *Generator) FromParsedGoal(ctx context.Context, parsed goal.ParsedGoal) (*ExecutionPlan, error) {
	ctx, span := observability.StartSpan(ctx, "plan.generate",
		observability.String(observability.AttrGoalIntent, parsed.Intent.String()))
	defer span.End()

	tasks := g.synthesizeTasks(parsed)
	graph := BuildDependencyGraph(tasks)
	now := time.Now()

	p := &ExecutionPlan{
		ID:                           types.NewID(),
		Goal:                         parsed.OriginalGoal,
		ParsedGoal:                   parsed,
		Tasks:                        tasks,
		Dependencies:                 graph,
		Milestones:                   deriveMilestones(tasks),
		ParallelizationOpportunities: FindParallelization(tasks, graph.Layers),
		EstimatedDuration:            ScheduleDuration(tasks, graph.Layers, g.maxParallelTasks),
		CriticalPathDuration:         CriticalPathDuration(tasks, graph),
		Status:                       PlanStatusDraft,
		CreatedAt:                    now,
		UpdatedAt:                    now,
	}
	p.RiskAssessment = assessRisk(parsed, tasks, p.SequentialDuration())

	span.SetAttributes(
		observability.String(observability.AttrPlanID, p.ID.String()),
		observability.Int(observability.AttrTaskCount, len(tasks)),
	)
	g.logger.Info("generated execution plan",
		slog.String("plan_id", p.ID.String()),
		slog.Int("tasks", len(tasks)),
		slog.Int("estimated_duration", p.EstimatedDuration),
		slog.String("overall_risk", string(p.RiskAssessment.OverallRisk)))

	_ = g.emitter.Emit(ctx, events.Event{
		Type:   events.EventPlanGenerated,
		PlanID: p.ID,
		Payload: map[string]any{
			"task_count":         len(tasks),
			"estimated_duration": p.EstimatedDuration,
			"overall_risk":       string(p.RiskAssessment.OverallRisk),
		},
	})

	return p, nil
}

// synthesizeTasks builds the capability-driven task list. Each present
// capability contributes a fixed sub-template with internal dependencies;
// unit and integration test tasks are always appended last and depend on
// the functional tasks they cover, so tests never lead the graph.
func (g *Generator) synthesizeTasks(parsed goal.ParsedGoal) []Task {
	mult := complexityMultiplier(parsed.EstimatedComplexity)
	var tasks []Task

	add := func(t Task) {
		if t.EstimatedDuration == 0 {
			t.EstimatedDuration = scaled(baseDurations[t.ID], mult)
		}
		t.Status = TaskStatusPending
		t.CanRunInParallel = true
		tasks = append(tasks, t)
	}
	has := func(id string) bool {
		for _, t := range tasks {
			if t.ID == id {
				return true
			}
		}
		return false
	}

	hasData := parsed.HasCapability(goal.CapabilityDatabase) || parsed.HasCapability(goal.CapabilityCRUD)
	if hasData {
		add(Task{
			ID:                 TaskIDModels,
			Name:               "Define Data Models",
			AgentType:          goal.AgentModels,
			Priority:           PriorityHigh,
			Outputs:            []string{"domain model definitions"},
			AcceptanceCriteria: []string{"every goal entity has a typed model with validation rules"},
		})
		add(Task{
			ID:                 TaskIDSchema,
			Name:               "Create Database Schema",
			AgentType:          goal.AgentDatabase,
			Priority:           PriorityHigh,
			Dependencies:       []string{TaskIDModels},
			Outputs:            []string{"schema migration scripts"},
			AcceptanceCriteria: []string{"migrations apply cleanly against an empty database"},
		})
	}

	if parsed.HasCapability(goal.CapabilityAPI) {
		service := Task{
			ID:                 TaskIDService,
			Name:               "Implement Service Layer",
			AgentType:          goal.AgentAPI,
			Priority:           PriorityHigh,
			Outputs:            []string{"service layer with business logic"},
			AcceptanceCriteria: []string{"business rules are enforced behind a service interface"},
		}
		if hasData {
			service.Dependencies = []string{TaskIDModels}
		}
		add(service)
		add(Task{
			ID:                 TaskIDControllers,
			Name:               "Implement API Controllers",
			AgentType:          goal.AgentAPI,
			Priority:           PriorityMedium,
			Dependencies:       []string{TaskIDService},
			Outputs:            []string{"HTTP handlers and route registrations"},
			AcceptanceCriteria: []string{"every service operation is reachable through a route"},
		})
	}

	if parsed.HasCapability(goal.CapabilityAuthentication) {
		add(Task{
			ID:                 TaskIDAuth,
			Name:               "Implement Authentication",
			AgentType:          goal.AgentAuth,
			Priority:           PriorityCritical,
			Outputs:            []string{"authentication middleware and token issuance"},
			AcceptanceCriteria: []string{"unauthenticated requests to protected routes are rejected"},
		})
	}

	if parsed.HasCapability(goal.CapabilityAuthorization) {
		rbac := Task{
			ID:                 TaskIDRBAC,
			Name:               "Implement RBAC",
			AgentType:          goal.AgentRBAC,
			Priority:           PriorityHigh,
			Outputs:            []string{"role and permission enforcement"},
			AcceptanceCriteria: []string{"role checks cover every protected operation"},
		}
		if has(TaskIDAuth) {
			rbac.Dependencies = []string{TaskIDAuth}
		}
		add(rbac)
	}

	if parsed.HasCapability(goal.CapabilityRealTime) || parsed.HasCapability(goal.CapabilityWebSocket) {
		add(Task{
			ID:                 TaskIDWebSocket,
			Name:               "Implement WebSocket Server",
			AgentType:          goal.AgentRealtime,
			Priority:           PriorityMedium,
			Outputs:            []string{"websocket server with event broadcast"},
			AcceptanceCriteria: []string{"connected clients receive change events within one second"},
		})
	}

	if parsed.HasCapability(goal.CapabilityUI) {
		ui := Task{
			ID:                 TaskIDUI,
			Name:               "Build User Interface",
			AgentType:          goal.AgentUI,
			Priority:           PriorityMedium,
			Outputs:            []string{"user-facing screens"},
			AcceptanceCriteria: []string{"every API operation needed by the UI is wired to a screen"},
		}
		if has(TaskIDControllers) {
			ui.Dependencies = []string{TaskIDControllers}
		}
		add(ui)
	}

	if parsed.HasCapability(goal.CapabilityIntegration) {
		integrations := integrationEntities(parsed)
		for _, name := range integrations {
			add(Task{
				ID:                 "integrate-" + name,
				Name:               fmt.Sprintf("Integrate with %s", name),
				AgentType:          goal.AgentIntegration,
				Priority:           PriorityMedium,
				EstimatedDuration:  scaled(baseIntegrationDuration, mult),
				Outputs:            []string{name + " client and webhook handlers"},
				AcceptanceCriteria: []string{"round-trip against the " + name + " sandbox succeeds"},
			})
		}
	}

	// Functional tasks synthesized so far are what tests and docs cover.
	functional := make([]string, 0, len(tasks))
	for _, t := range tasks {
		functional = append(functional, t.ID)
	}

	if parsed.Metadata.RequiresDocumentation {
		add(Task{
			ID:                 TaskIDDocumentation,
			Name:               "Write Documentation",
			AgentType:          goal.AgentDocumentation,
			Priority:           PriorityLow,
			Dependencies:       append([]string(nil), functional...),
			Outputs:            []string{"user and API documentation"},
			AcceptanceCriteria: []string{"every public operation is documented with an example"},
		})
	}

	add(Task{
		ID:                 TaskIDUnitTests,
		Name:               "Write Unit Tests",
		AgentType:          goal.AgentTest,
		Priority:           PriorityMedium,
		Dependencies:       append([]string(nil), functional...),
		Outputs:            []string{"unit test suite"},
		AcceptanceCriteria: []string{"unit tests cover the service and model layers"},
	})
	add(Task{
		ID:                 TaskIDIntegrationTests,
		Name:               "Write Integration Tests",
		AgentType:          goal.AgentTest,
		Priority:           PriorityMedium,
		Dependencies:       append([]string(nil), functional...),
		Outputs:            []string{"integration test suite"},
		AcceptanceCriteria: []string{"integration tests exercise every external boundary"},
	})

	return tasks
}

// FindParallelization reports every dependency layer holding two or more
// parallel-eligible tasks. Time saved is the layer's sequential sum minus
// its widest task, which becomes the effective layer duration.
func FindParallelization(tasks []Task, layers [][]string) []ParallelizationOpportunity {
	index := taskIndex(tasks)
	var opportunities []ParallelizationOpportunity

	for layerNum, layer := range layers {
		var ids []string
		sum, longest := 0, 0
		for _, id := range layer {
			t, ok := index[id]
			if !ok || !t.CanRunInParallel {
				continue
			}
			ids = append(ids, id)
			sum += t.EstimatedDuration
			if t.EstimatedDuration > longest {
				longest = t.EstimatedDuration
			}
		}
		if len(ids) < 2 {
			continue
		}
		opportunities = append(opportunities, ParallelizationOpportunity{
			TaskIDs:            ids,
			EstimatedTimeSaved: sum - longest,
			Reason:             fmt.Sprintf("%d independent tasks share dependency layer %d", len(ids), layerNum),
		})
	}
	return opportunities
}

// integrationEntities returns the integration entity names from the goal,
// or a single generic placeholder when the capability is present without
// a named service.
func integrationEntities(parsed goal.ParsedGoal) []string {
	var names []string
	for _, e := range parsed.Entities {
		if e.Type == goal.EntityIntegration {
			names = append(names, e.Name)
		}
	}
	if len(names) == 0 {
		names = append(names, "external-service")
	}
	return names
}

func scaled(base int, mult float64) int {
	if base <= 0 {
		base = 60
	}
	v := int(math.Round(float64(base) * mult))
	if v < 1 {
		v = 1
	}
	return v
}
