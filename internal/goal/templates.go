package goal

import (
	"fmt"
	"regexp"
)

// Template is a known-pattern matcher for common goal phrasings.
// Templates are tried against the normalized goal text in registration
// order; the first match wins and yields high-confidence parsing with
// entities extracted from named capture groups.
type Template struct {
	// ID uniquely identifies the template.
	ID string `json:"id"`

	// Name is a human-readable template name.
	Name string `json:"name"`

	// Pattern is matched against the normalized goal text. Named capture
	// groups (resource, integration, feature) become extracted entities.
	Pattern *regexp.Regexp `json:"-"`

	// Intent is the intent assigned to goals matching this template.
	Intent Intent `json:"intent"`

	// Capabilities are the capabilities required by matching goals.
	Capabilities []Capability `json:"capabilities"`

	// SuggestedAgents are the agent types suited to matching goals.
	SuggestedAgents []AgentType `json:"suggested_agents"`

	// Complexity is the baseline complexity for matching goals.
	Complexity Complexity `json:"complexity"`

	// Confidence is the parse confidence assigned on match. Must be >= 0.9.
	Confidence float64 `json:"confidence"`

	// EstimatedDuration is a rough end-to-end estimate in minutes.
	EstimatedDuration int `json:"estimated_duration"`

	// Examples are sample phrasings the template is expected to match.
	Examples []string `json:"examples,omitempty"`
}

// Validate checks that the template is well-formed.
func (t Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("template id cannot be empty")
	}
	if t.Pattern == nil {
		return fmt.Errorf("template %s: pattern cannot be nil", t.ID)
	}
	if t.Confidence < 0.9 {
		return fmt.Errorf("template %s: confidence must be >= 0.9, got %v", t.ID, t.Confidence)
	}
	return nil
}

// builtinTemplates returns the templates registered on every parser.
// Order matters: templates are tried first to last.
func builtinTemplates() []Template {
	return []Template{
		{
			ID:      "crud-api",
			Name:    "CRUD API",
			Pattern: regexp.MustCompile(`(?:build|create|develop)\s+(?:a\s+)?(?:restful\s+|rest\s+)?api\s+for\s+(?:a\s+|the\s+)?(?P<resource>[a-z][a-z0-9-]*)`),
			Intent:  IntentBuild,
			Capabilities: []Capability{
				CapabilityAPI, CapabilityCRUD, CapabilityDatabase,
			},
			SuggestedAgents: []AgentType{
				AgentModels, AgentDatabase, AgentAPI, AgentTest,
			},
			Complexity:        ComplexityModerate,
			Confidence:        0.95,
			EstimatedDuration: 360,
			Examples: []string{
				"Build a RESTful API for user management",
				"create an api for invoices",
			},
		},
		{
			ID:      "add-auth",
			Name:    "Add Authentication",
			Pattern: regexp.MustCompile(`(?:add|implement|build)\s+(?:user\s+)?(?:jwt\s+)?auth(?:entication)?\b`),
			Intent:  IntentAdd,
			Capabilities: []Capability{
				CapabilityAuthentication, CapabilitySecurity, CapabilityAPI,
			},
			SuggestedAgents: []AgentType{
				AgentAuth, AgentAPI, AgentTest,
			},
			Complexity:        ComplexityComplex,
			Confidence:        0.92,
			EstimatedDuration: 300,
			Examples: []string{
				"Add authentication",
				"implement jwt auth",
			},
		},
		{
			ID:      "realtime-feature",
			Name:    "Real-time Feature",
			Pattern: regexp.MustCompile(`(?:add|implement)\s+(?:a\s+)?(?:real[\s-]?time|websocket)\s*(?P<feature>[a-z][a-z0-9-]*)?`),
			Intent:  IntentAdd,
			Capabilities: []Capability{
				CapabilityRealTime, CapabilityWebSocket, CapabilityAPI,
			},
			SuggestedAgents: []AgentType{
				AgentRealtime, AgentAPI, AgentTest,
			},
			Complexity:        ComplexityComplex,
			Confidence:        0.9,
			EstimatedDuration: 300,
			Examples: []string{
				"Add real-time notifications",
				"implement websocket updates",
			},
		},
		{
			ID:      "integrate-service",
			Name:    "Third-party Integration",
			Pattern: regexp.MustCompile(`integrate\s+(?:with\s+)?(?P<integration>[a-z][a-z0-9-]*)`),
			Intent:  IntentAdd,
			Capabilities: []Capability{
				CapabilityIntegration, CapabilityAPI,
			},
			SuggestedAgents: []AgentType{
				AgentIntegration, AgentTest,
			},
			Complexity:        ComplexityModerate,
			Confidence:        0.9,
			EstimatedDuration: 240,
			Examples: []string{
				"Integrate with Stripe",
				"integrate slack notifications",
			},
		},
	}
}
