package plan

import (
	"fmt"

	"github.com/HR-AR/Project-Conductor-sub004/internal/goal"
)

// RiskLevel classifies risk severity.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Rank returns a numeric rank for severity comparison; higher is worse.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	case RiskLow:
		return 0
	default:
		return 0
	}
}

// Risk is an individual identified risk with its mitigation.
type Risk struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Mitigation  string    `json:"mitigation"`
	Severity    RiskLevel `json:"severity"`
}

// RiskFactor represents an individual factor contributing to the
// numeric risk score. Multiple factors combine into a weighted score.
type RiskFactor struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
	Value       float64 `json:"value"`
}

// RiskAssessment aggregates the risks identified for a plan.
type RiskAssessment struct {
	// OverallRisk is the maximum severity across individual risks.
	OverallRisk RiskLevel `json:"overall_risk"`

	// Risks are the individual identified risks.
	Risks []Risk `json:"risks"`

	// Factors back the numeric score with weighted components.
	Factors []RiskFactor `json:"factors,omitempty"`
}

// Score calculates the weighted risk score from all factors.
// Returns a value between 0.0 (no risk) and 1.0 (maximum risk).
func (r *RiskAssessment) Score() float64 {
	if len(r.Factors) == 0 {
		return 0.0
	}

	var totalWeight, weightedSum float64
	for _, f := range r.Factors {
		weightedSum += f.Weight * f.Value
		totalWeight += f.Weight
	}
	if totalWeight == 0 {
		return 0.0
	}
	return weightedSum / totalWeight
}

// Clone returns a deep copy of the assessment.
func (r RiskAssessment) Clone() RiskAssessment {
	c := r
	c.Risks = append([]Risk(nil), r.Risks...)
	c.Factors = append([]RiskFactor(nil), r.Factors...)
	return c
}

// complexityDurationThreshold is the total-duration point (minutes) past
// which sheer plan size becomes its own risk.
const complexityDurationThreshold = 960

// assessRisk identifies risks for the generated task set. Overall risk
// is the maximum severity across the individual risks; a plan with no
// identified risks is low risk.
func assessRisk(parsed goal.ParsedGoal, tasks []Task, totalDuration int) RiskAssessment {
	assessment := RiskAssessment{OverallRisk: RiskLow}

	if parsed.HasCapability(goal.CapabilityAuthentication) || parsed.HasCapability(goal.CapabilityAuthorization) {
		assessment.Risks = append(assessment.Risks, Risk{
			Type:        "security",
			Description: "plan includes authentication or authorization work",
			Mitigation:  "gate the security milestone behind a dedicated security review",
			Severity:    RiskHigh,
		})
		assessment.Factors = append(assessment.Factors, RiskFactor{
			Name:        "security_surface",
			Description: "auth-bearing plans expose credential and session handling",
			Weight:      0.4,
			Value:       0.8,
		})
	}

	for _, t := range tasks {
		if t.AgentType != goal.AgentIntegration {
			continue
		}
		assessment.Risks = append(assessment.Risks, Risk{
			Type:        "external_dependency",
			Description: fmt.Sprintf("task %q depends on a third-party service", t.Name),
			Mitigation:  "add contract tests and a fallback path for the external service",
			Severity:    RiskMedium,
		})
		assessment.Factors = append(assessment.Factors, RiskFactor{
			Name:        "external_dependency",
			Description: "third-party availability is outside the plan's control",
			Weight:      0.25,
			Value:       0.6,
		})
	}

	if parsed.EstimatedComplexity == goal.ComplexityVeryComplex || totalDuration > complexityDurationThreshold {
		assessment.Risks = append(assessment.Risks, Risk{
			Type:        "complexity",
			Description: "plan is very complex or exceeds the single-phase duration budget",
			Mitigation:  "split delivery into phases with a checkpoint after each milestone",
			Severity:    RiskHigh,
		})
		assessment.Factors = append(assessment.Factors, RiskFactor{
			Name:        "plan_size",
			Description: "large plans accumulate estimation error",
			Weight:      0.35,
			Value:       0.7,
		})
	}

	for _, r := range assessment.Risks {
		if r.Severity.Rank() > assessment.OverallRisk.Rank() {
			assessment.OverallRisk = r.Severity
		}
	}
	return assessment
}
