package goal

// Intent classifies what a goal asks the platform to do.
type Intent string

const (
	IntentBuild   Intent = "build"
	IntentAdd     Intent = "add"
	IntentImprove Intent = "improve"
	IntentFix     Intent = "fix"
)

// String returns the string representation of the intent.
func (i Intent) String() string {
	return string(i)
}

// Complexity estimates how much work a goal implies.
type Complexity string

const (
	ComplexitySimple      Complexity = "simple"
	ComplexityModerate    Complexity = "moderate"
	ComplexityComplex     Complexity = "complex"
	ComplexityVeryComplex Complexity = "very_complex"
)

// String returns the string representation of the complexity.
func (c Complexity) String() string {
	return string(c)
}

// Capability is a functional capability a goal requires from the platform.
type Capability string

const (
	CapabilityAPI            Capability = "API"
	CapabilityCRUD           Capability = "CRUD"
	CapabilityDatabase       Capability = "DATABASE"
	CapabilityAuthentication Capability = "AUTHENTICATION"
	CapabilityAuthorization  Capability = "AUTHORIZATION"
	CapabilityRealTime       Capability = "REAL_TIME"
	CapabilityWebSocket      Capability = "WEBSOCKET"
	CapabilityUI             Capability = "UI"
	CapabilityIntegration    Capability = "INTEGRATION"
	CapabilityTesting        Capability = "TESTING"
	CapabilityDocumentation  Capability = "DOCUMENTATION"
	CapabilitySecurity       Capability = "SECURITY"
)

// AgentType identifies a class of downstream agent that can execute tasks.
// Agents are opaque capability tags to this library; the orchestration
// runtime maps them to concrete executors.
type AgentType string

const (
	AgentModels        AgentType = "models"
	AgentDatabase      AgentType = "database"
	AgentAPI           AgentType = "api"
	AgentAuth          AgentType = "auth"
	AgentRBAC          AgentType = "rbac"
	AgentRealtime      AgentType = "realtime"
	AgentUI            AgentType = "ui"
	AgentIntegration   AgentType = "integration"
	AgentTest          AgentType = "test"
	AgentDocumentation AgentType = "documentation"
)

// String returns the string representation of the agent type.
func (a AgentType) String() string {
	return string(a)
}

// EntityType classifies an entity mentioned in a goal.
type EntityType string

const (
	EntityResource    EntityType = "resource"
	EntitySecurity    EntityType = "security"
	EntityIntegration EntityType = "integration"
	EntityFeature     EntityType = "feature"
)

// Entity is a named thing extracted from the goal text.
type Entity struct {
	Type EntityType `json:"type"`
	Name string     `json:"name"`
}

// Metadata carries derived boolean hints about a parsed goal.
type Metadata struct {
	RequiresAuth          bool `json:"requires_auth"`
	RequiresDatabase      bool `json:"requires_database"`
	RequiresUI            bool `json:"requires_ui"`
	IsIntegration         bool `json:"is_integration"`
	RequiresDocumentation bool `json:"requires_documentation"`
}

// ParsedGoal is the structured result of parsing a free-text goal.
// It is immutable once produced by the parser.
type ParsedGoal struct {
	OriginalGoal        string       `json:"original_goal"`
	NormalizedGoal      string       `json:"normalized_goal"`
	Intent              Intent       `json:"intent"`
	Entities            []Entity     `json:"entities"`
	Capabilities        []Capability `json:"capabilities"`
	EstimatedComplexity Complexity   `json:"estimated_complexity"`
	Confidence          float64      `json:"confidence"`
	SuggestedAgents     []AgentType  `json:"suggested_agents"`
	Metadata            Metadata     `json:"metadata"`
}

// HasCapability reports whether the goal requires the given capability.
func (g *ParsedGoal) HasCapability(c Capability) bool {
	for _, cap := range g.Capabilities {
		if cap == c {
			return true
		}
	}
	return false
}

// appendCapability adds c to caps preserving insertion order, skipping duplicates.
func appendCapability(caps []Capability, c Capability) []Capability {
	for _, existing := range caps {
		if existing == c {
			return caps
		}
	}
	return append(caps, c)
}

// appendAgent adds a to agents preserving insertion order, skipping duplicates.
func appendAgent(agents []AgentType, a AgentType) []AgentType {
	for _, existing := range agents {
		if existing == a {
			return agents
		}
	}
	return append(agents, a)
}
