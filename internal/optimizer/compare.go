package optimizer

import (
	"fmt"
	"strings"

	"github.com/HR-AR/Project-Conductor-sub004/internal/plan"
	"github.com/HR-AR/Project-Conductor-sub004/internal/types"
)

// PlanSummary captures the comparable facts of one candidate plan.
type PlanSummary struct {
	PlanID              types.ID `json:"plan_id"`
	EstimatedDuration   int      `json:"estimated_duration"`
	OverallRisk         string   `json:"overall_risk"`
	ParallelizableRatio float64  `json:"parallelizable_ratio"`
	TaskCount           int      `json:"task_count"`
	Score               float64  `json:"score"`
}

// PlanComparison ranks candidate plans across duration, risk and
// parallelization and recommends one.
type PlanComparison struct {
	Summaries      []PlanSummary `json:"summaries"`
	ByDuration     []types.ID    `json:"by_duration"`
	ByRisk         []types.ID    `json:"by_risk"`
	ByParallelism  []types.ID    `json:"by_parallelism"`
	Recommended    types.ID      `json:"recommended"`
	Recommendation string        `json:"recommendation"`
	Tradeoffs      []string      `json:"tradeoffs"`
}

// Weights of the composite score. Lower scores are better. Parallelism
// never enters the score: a dominated plan must not win on
// parallelizability alone, so it only breaks exact score ties.
const (
	durationWeight = 0.5
	riskWeight     = 0.35
)

// ComparePlans scores candidate plans and recommends the best one. The
// score prefers shorter schedules, then lower risk; plans with equal
// duration and risk are broken by higher parallelism. Comparing a
// single plan trivially recommends it.
func ComparePlans(plans []*plan.ExecutionPlan) (PlanComparison, error) {
	if len(plans) == 0 {
		return PlanComparison{}, types.NewError(types.PLAN_EMPTY, "no plans to compare")
	}

	maxDuration := 0
	for _, p := range plans {
		if p.EstimatedDuration > maxDuration {
			maxDuration = p.EstimatedDuration
		}
	}

	cmp := PlanComparison{Summaries: make([]PlanSummary, 0, len(plans))}
	for _, p := range plans {
		s := PlanSummary{
			PlanID:              p.ID,
			EstimatedDuration:   p.EstimatedDuration,
			OverallRisk:         string(p.RiskAssessment.OverallRisk),
			ParallelizableRatio: parallelizableRatio(p),
			TaskCount:           len(p.Tasks),
		}
		s.Score = score(p, maxDuration)
		cmp.Summaries = append(cmp.Summaries, s)
	}

	cmp.ByDuration = rankBy(cmp.Summaries, func(a, b PlanSummary) bool {
		return a.EstimatedDuration < b.EstimatedDuration
	})
	cmp.ByRisk = rankBy(cmp.Summaries, func(a, b PlanSummary) bool {
		return riskRank(a.OverallRisk) < riskRank(b.OverallRisk)
	})
	cmp.ByParallelism = rankBy(cmp.Summaries, func(a, b PlanSummary) bool {
		return a.ParallelizableRatio > b.ParallelizableRatio
	})

	best := cmp.Summaries[0]
	for _, s := range cmp.Summaries[1:] {
		if s.Score < best.Score ||
			(s.Score == best.Score && s.ParallelizableRatio > best.ParallelizableRatio) {
			best = s
		}
	}
	cmp.Recommended = best.PlanID
	cmp.Recommendation = fmt.Sprintf(
		"plan %s: %d min schedule, %s risk, %.0f%% parallelizable",
		best.PlanID, best.EstimatedDuration, best.OverallRisk, best.ParallelizableRatio*100)
	cmp.Tradeoffs = tradeoffs(cmp.Summaries)

	return cmp, nil
}

// score folds duration and risk into one comparable value. Both are
// normalized to [0,1] so the weights hold across plan sizes.
func score(p *plan.ExecutionPlan, maxDuration int) float64 {
	normDuration := 0.0
	if maxDuration > 0 {
		normDuration = float64(p.EstimatedDuration) / float64(maxDuration)
	}
	normRisk := float64(riskRank(string(p.RiskAssessment.OverallRisk))) / 3.0
	return durationWeight*normDuration + riskWeight*normRisk
}

// tradeoffs produces one note per plan naming where it sits at a field
// extreme. A plan with no extremes just states its facts.
func tradeoffs(summaries []PlanSummary) []string {
	minDur, maxDur := summaries[0].EstimatedDuration, summaries[0].EstimatedDuration
	minRisk, maxRisk := riskRank(summaries[0].OverallRisk), riskRank(summaries[0].OverallRisk)
	minPar, maxPar := summaries[0].ParallelizableRatio, summaries[0].ParallelizableRatio
	for _, s := range summaries[1:] {
		minDur = min(minDur, s.EstimatedDuration)
		maxDur = max(maxDur, s.EstimatedDuration)
		minRisk = min(minRisk, riskRank(s.OverallRisk))
		maxRisk = max(maxRisk, riskRank(s.OverallRisk))
		minPar = min(minPar, s.ParallelizableRatio)
		maxPar = max(maxPar, s.ParallelizableRatio)
	}

	notes := make([]string, 0, len(summaries))
	for _, s := range summaries {
		var attrs []string
		if maxDur > minDur {
			switch s.EstimatedDuration {
			case minDur:
				attrs = append(attrs, "fastest schedule")
			case maxDur:
				attrs = append(attrs, "slowest schedule")
			}
		}
		if maxRisk > minRisk {
			switch riskRank(s.OverallRisk) {
			case minRisk:
				attrs = append(attrs, "lowest risk")
			case maxRisk:
				attrs = append(attrs, "highest risk")
			}
		}
		if maxPar > minPar {
			switch s.ParallelizableRatio {
			case minPar:
				attrs = append(attrs, "least parallelizable")
			case maxPar:
				attrs = append(attrs, "most parallelizable")
			}
		}
		if len(attrs) == 0 {
			notes = append(notes, fmt.Sprintf("plan %s: %d min schedule, %s risk",
				s.PlanID, s.EstimatedDuration, s.OverallRisk))
			continue
		}
		notes = append(notes, fmt.Sprintf("plan %s: %s", s.PlanID, strings.Join(attrs, ", ")))
	}
	return notes
}

func parallelizableRatio(p *plan.ExecutionPlan) float64 {
	if len(p.Tasks) == 0 {
		return 0
	}
	parallel := 0
	for _, t := range p.Tasks {
		if t.CanRunInParallel {
			parallel++
		}
	}
	return float64(parallel) / float64(len(p.Tasks))
}

func riskRank(level string) int {
	return plan.RiskLevel(level).Rank()
}

// rankBy returns plan ids ordered by the given less function, using a
// stable insertion sort so equal plans keep their input order.
func rankBy(summaries []PlanSummary, less func(a, b PlanSummary) bool) []types.ID {
	ordered := make([]PlanSummary, len(summaries))
	copy(ordered, summaries)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && less(ordered[j], ordered[j-1]); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	ids := make([]types.ID, len(ordered))
	for i, s := range ordered {
		ids[i] = s.PlanID
	}
	return ids
}
