package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/HR-AR/Project-Conductor-sub004/internal/goal"
	"github.com/HR-AR/Project-Conductor-sub004/internal/optimizer"
	"github.com/HR-AR/Project-Conductor-sub004/internal/plan"
	"github.com/HR-AR/Project-Conductor-sub004/internal/types"
)

var (
	strategyFlag      string
	maxParallelFlag   int
	riskToleranceFlag float64
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate, validate and optimize execution plans",
}

var planGenerateCmd = &cobra.Command{
	Use:   "generate GOAL",
	Short: "Generate an execution plan from a goal",
	Long:  `Parse a natural-language goal and generate a validated execution plan with tasks, dependencies, milestones and risk assessment`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlanGenerate,
}

var planValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Validate a plan file",
	Long:  `Check a plan file (JSON or YAML) for cycles, missing dependencies and duration warnings`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanValidate,
}

var planOptimizeCmd = &cobra.Command{
	Use:   "optimize FILE",
	Short: "Optimize a plan under a strategy",
	Long:  `Rewrite a plan under balanced, minimize_duration, minimize_risk or maximize_parallelization`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanOptimize,
}

var planOrderCmd = &cobra.Command{
	Use:   "order FILE",
	Short: "Compute bounded parallel execution order",
	Long:  `Partition a plan's tasks into execution waves respecting dependencies and the parallelism cap`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanOrder,
}

var planCompareCmd = &cobra.Command{
	Use:   "compare FILE...",
	Short: "Compare candidate plans and recommend one",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlanCompare,
}

func init() {
	planGenerateCmd.Flags().IntVar(&maxParallelFlag, "max-parallel", 0, "Parallelism cap for the schedule (default from config)")

	planOptimizeCmd.Flags().StringVar(&strategyFlag, "strategy", "balanced", "Optimization strategy: balanced, minimize_duration, minimize_risk, maximize_parallelization")
	planOptimizeCmd.Flags().IntVar(&maxParallelFlag, "max-parallel", 0, "Parallelism cap for the schedule (default from config)")
	planOptimizeCmd.Flags().Float64Var(&riskToleranceFlag, "risk-tolerance", 0, "Risk tolerance in [0,1] for risk-aware strategies")

	planOrderCmd.Flags().IntVar(&maxParallelFlag, "max-parallel", 0, "Maximum tasks per execution wave (default from config)")

	planCmd.AddCommand(planGenerateCmd)
	planCmd.AddCommand(planValidateCmd)
	planCmd.AddCommand(planOptimizeCmd)
	planCmd.AddCommand(planOrderCmd)
	planCmd.AddCommand(planCompareCmd)
}

func runPlanGenerate(cmd *cobra.Command, args []string) error {
	goalText := strings.Join(args, " ")

	gen := plan.NewGenerator(goal.NewParser(goal.WithLogger(logger)),
		plan.WithLogger(logger),
		plan.WithMaxParallelTasks(effectiveMaxParallel()))

	p, err := gen.Generate(cmd.Context(), goalText)
	if err != nil {
		return err
	}
	return render(cmd, p)
}

func runPlanValidate(cmd *cobra.Command, args []string) error {
	p, err := readPlan(args[0])
	if err != nil {
		return err
	}

	validator := plan.NewValidator(cfg.Planner.DurationWarningCeiling)
	result := validator.Validate(p)
	if err := render(cmd, result); err != nil {
		return err
	}
	if !result.IsValid {
		return types.NewError(types.PLAN_VALIDATION_FAILED, fmt.Sprintf("plan has %d error(s)", len(result.Errors)))
	}
	return nil
}

func runPlanOptimize(cmd *cobra.Command, args []string) error {
	p, err := readPlan(args[0])
	if err != nil {
		return err
	}

	strategy := optimizer.Strategy(strategyFlag)
	if !strategy.IsValid() {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, fmt.Sprintf("unknown strategy %q", strategyFlag))
	}

	opt := optimizer.New(optimizer.WithLogger(logger))
	optimized := opt.OptimizePlan(cmd.Context(), p, optimizer.OptimizationStrategy{
		Strategy: strategy,
		Parameters: optimizer.Parameters{
			MaxParallelTasks: effectiveMaxParallel(),
			RiskTolerance:    riskToleranceFlag,
		},
	})
	return render(cmd, optimized)
}

func runPlanOrder(cmd *cobra.Command, args []string) error {
	p, err := readPlan(args[0])
	if err != nil {
		return err
	}

	opt := optimizer.New(optimizer.WithLogger(logger))
	waves := opt.GetExecutionOrder(cmd.Context(), p, effectiveMaxParallel())
	if waves == nil {
		return types.NewError(types.PLAN_CYCLE_DETECTED, "plan cannot be ordered, check for dependency cycles")
	}

	type wave struct {
		Wave  int      `json:"wave"`
		Tasks []string `json:"tasks"`
	}
	out := make([]wave, len(waves))
	for i, w := range waves {
		ids := make([]string, len(w))
		for j, t := range w {
			ids[j] = t.ID
		}
		out[i] = wave{Wave: i + 1, Tasks: ids}
	}
	return render(cmd, out)
}

func runPlanCompare(cmd *cobra.Command, args []string) error {
	plans := make([]*plan.ExecutionPlan, 0, len(args))
	for _, path := range args {
		p, err := readPlan(path)
		if err != nil {
			return err
		}
		plans = append(plans, p)
	}

	comparison, err := optimizer.ComparePlans(plans)
	if err != nil {
		return err
	}
	return render(cmd, comparison)
}

// effectiveMaxParallel resolves the parallelism cap from the flag,
// falling back to the loaded config.
func effectiveMaxParallel() int {
	if maxParallelFlag > 0 {
		return maxParallelFlag
	}
	return cfg.Planner.MaxParallelTasks
}

// readPlan loads a plan from a JSON or YAML file.
func readPlan(path string) (*plan.ExecutionPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var p plan.ExecutionPlan
	if jsonErr := json.Unmarshal(data, &p); jsonErr == nil {
		return &p, nil
	}

	// YAML input is converted through JSON so the struct tags apply.
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("plan file is neither valid JSON nor YAML: %w", err)
	}
	jsonData, err := json.Marshal(normalizeYAML(tree))
	if err != nil {
		return nil, fmt.Errorf("failed to convert plan file: %w", err)
	}
	if err := json.Unmarshal(jsonData, &p); err != nil {
		return nil, fmt.Errorf("failed to decode plan file: %w", err)
	}
	return &p, nil
}

// render writes the value to stdout in the selected output format.
func render(cmd *cobra.Command, v any) error {
	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil

	case "yaml", "":
		// Round-trip through JSON so the json struct tags drive the
		// YAML field names.
		jsonData, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var tree any
		if err := json.Unmarshal(jsonData, &tree); err != nil {
			return err
		}
		data, err := yaml.Marshal(tree)
		if err != nil {
			return err
		}
		cmd.Print(string(data))
		return nil

	default:
		return types.NewError(types.CONFIG_VALIDATION_FAILED, fmt.Sprintf("unknown output format %q", outputFormat))
	}
}

// normalizeYAML rewrites yaml map keys to strings so the tree is
// JSON-serializable.
func normalizeYAML(v any) any {
	switch node := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for k, val := range node {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, val := range node {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, val := range node {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}
