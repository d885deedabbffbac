// Package goal turns free-text goals into structured parsing results the
// plan generator can consume. Parsing is deterministic and degrades to
// keyword inference when no registered template matches; it never fails
// on malformed input.
package goal

import (
	"log/slog"
	"regexp"
	"strings"
)

var (
	punctuationPattern = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// intentKeywords maps keywords to intents. Scanned in order so that
// build-ish verbs win over add-ish verbs when both appear.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentBuild, []string{"build", "create", "develop", "implement"}},
	{IntentAdd, []string{"add", "include", "integrate"}},
	{IntentImprove, []string{"improve", "enhance", "optimize"}},
	{IntentFix, []string{"fix", "repair", "resolve"}},
}

// capabilityKeywords maps keyword sets to capabilities for generic
// inference. Authorization is checked before authentication so that
// "authorization" is not swallowed by the broader "auth" match.
var capabilityKeywords = []struct {
	capability Capability
	keywords   []string
}{
	{CapabilityAuthorization, []string{"authorization", "rbac", "permission", "role-based"}},
	{CapabilityAuthentication, []string{"authentication", "auth", "login", "signin", "jwt", "oauth"}},
	{CapabilityRealTime, []string{"real-time", "realtime", "live update"}},
	{CapabilityWebSocket, []string{"websocket", "web socket"}},
	{CapabilityDatabase, []string{"database", "schema", "migration", "storage", "persist"}},
	{CapabilityAPI, []string{"api", "endpoint", "rest"}},
	{CapabilityCRUD, []string{"crud", "management", "manage"}},
	{CapabilityUI, []string{"ui", "interface", "dashboard", "frontend", "page", "form"}},
	{CapabilityIntegration, []string{"integrate", "integration", "webhook", "third-party"}},
	{CapabilityTesting, []string{"test", "testing", "coverage"}},
	{CapabilityDocumentation, []string{"documentation", "document", "docs", "readme"}},
	{CapabilitySecurity, []string{"security", "secure", "encrypt", "vulnerability"}},
}

// Parser converts free-text goals into ParsedGoal values.
// It is safe for concurrent use once construction and template
// registration are complete.
type Parser struct {
	templates []Template
	logger    *slog.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLogger sets the logger used by the parser.
func WithLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) {
		p.logger = logger
	}
}

// NewParser creates a parser with the built-in goal templates registered.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		templates: builtinTemplates(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddTemplate registers a custom template. Custom templates are tried
// after the built-ins, in registration order.
func (p *Parser) AddTemplate(t Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	p.templates = append(p.templates, t)
	return nil
}

// Templates returns the registered templates in match order.
func (p *Parser) Templates() []Template {
	out := make([]Template, len(p.templates))
	copy(out, p.templates)
	return out
}

// Parse turns a free-text goal into a ParsedGoal. It is pure and
// deterministic; case and whitespace differences in the input do not
// change the result. Malformed or empty input degrades to default
// capabilities rather than failing.
func (p *Parser) Parse(text string) ParsedGoal {
	normalized := Normalize(text)

	parsed := ParsedGoal{
		OriginalGoal:   text,
		NormalizedGoal: normalized,
	}

	if tpl, groups, ok := p.matchTemplate(normalized); ok {
		parsed.Intent = tpl.Intent
		parsed.Capabilities = append([]Capability(nil), tpl.Capabilities...)
		parsed.SuggestedAgents = append([]AgentType(nil), tpl.SuggestedAgents...)
		parsed.EstimatedComplexity = tpl.Complexity
		parsed.Confidence = tpl.Confidence
		parsed.Entities = entitiesFromGroups(groups)
		p.logger.Debug("goal matched template",
			slog.String("template", tpl.ID),
			slog.Float64("confidence", tpl.Confidence))
	} else {
		parsed.Intent = inferIntent(normalized)
		parsed.Capabilities, parsed.Confidence = inferCapabilities(normalized)
		parsed.SuggestedAgents = suggestAgents(parsed.Capabilities)
		parsed.EstimatedComplexity = estimateComplexity(parsed.Capabilities, normalized)
	}

	parsed.Entities = mergeEntities(parsed.Entities, extractEntities(normalized))

	// Pathological input length escalates complexity regardless of
	// capability count.
	if wordCount(normalized) > longGoalWordThreshold {
		parsed.EstimatedComplexity = ComplexityVeryComplex
	}

	parsed.Metadata = deriveMetadata(parsed.Capabilities)
	return parsed
}

// Normalize lowercases the text, strips punctuation other than
// alphanumerics, spaces and hyphens, and collapses whitespace runs.
func Normalize(text string) string {
	normalized := strings.ToLower(text)
	normalized = punctuationPattern.ReplaceAllString(normalized, "")
	normalized = whitespacePattern.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// matchTemplate tries each registered template against the normalized
// text in order. The first match wins. Returns the matched template and
// its named capture groups.
func (p *Parser) matchTemplate(normalized string) (Template, map[string]string, bool) {
	for _, tpl := range p.templates {
		match := tpl.Pattern.FindStringSubmatch(normalized)
		if match == nil {
			continue
		}
		groups := make(map[string]string)
		for i, name := range tpl.Pattern.SubexpNames() {
			if name != "" && i < len(match) && match[i] != "" {
				groups[name] = match[i]
			}
		}
		return tpl, groups, true
	}
	return Template{}, nil, false
}

// inferIntent derives the intent from the keyword table, defaulting to build.
func inferIntent(normalized string) Intent {
	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if containsWord(normalized, kw) {
				return entry.intent
			}
		}
	}
	return IntentBuild
}

// inferCapabilities scans for capability keywords. If nothing matches,
// the default capability set {API, CRUD} is returned. Confidence is
// proportional to match strength and always below the template threshold.
func inferCapabilities(normalized string) ([]Capability, float64) {
	var caps []Capability
	matches := 0
	for _, entry := range capabilityKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(normalized, kw) {
				caps = appendCapability(caps, entry.capability)
				matches++
				break
			}
		}
	}

	if len(caps) == 0 {
		return []Capability{CapabilityAPI, CapabilityCRUD}, 0.3
	}

	// Auth-bearing goals are always security relevant.
	hasAuth := false
	for _, c := range caps {
		if c == CapabilityAuthentication || c == CapabilityAuthorization {
			hasAuth = true
			break
		}
	}
	if hasAuth {
		caps = appendCapability(caps, CapabilitySecurity)
	}

	confidence := 0.4 + 0.1*float64(matches)
	if confidence > 0.8 {
		confidence = 0.8
	}
	return caps, confidence
}

// suggestAgents maps inferred capabilities to the agent types that cover them.
func suggestAgents(caps []Capability) []AgentType {
	var agents []AgentType
	for _, c := range caps {
		switch c {
		case CapabilityDatabase, CapabilityCRUD:
			agents = appendAgent(agents, AgentModels)
			agents = appendAgent(agents, AgentDatabase)
		case CapabilityAPI:
			agents = appendAgent(agents, AgentAPI)
		case CapabilityAuthentication:
			agents = appendAgent(agents, AgentAuth)
		case CapabilityAuthorization:
			agents = appendAgent(agents, AgentRBAC)
		case CapabilityRealTime, CapabilityWebSocket:
			agents = appendAgent(agents, AgentRealtime)
		case CapabilityUI:
			agents = appendAgent(agents, AgentUI)
		case CapabilityIntegration:
			agents = appendAgent(agents, AgentIntegration)
		case CapabilityDocumentation:
			agents = appendAgent(agents, AgentDocumentation)
		}
	}
	agents = appendAgent(agents, AgentTest)
	return agents
}

// deriveMetadata populates the metadata booleans from capability presence.
func deriveMetadata(caps []Capability) Metadata {
	meta := Metadata{}
	for _, c := range caps {
		switch c {
		case CapabilityAuthentication, CapabilityAuthorization:
			meta.RequiresAuth = true
		case CapabilityDatabase, CapabilityCRUD:
			meta.RequiresDatabase = true
		case CapabilityUI:
			meta.RequiresUI = true
		case CapabilityIntegration:
			meta.IsIntegration = true
		case CapabilityDocumentation:
			meta.RequiresDocumentation = true
		}
	}
	return meta
}

// containsWord reports whether normalized contains kw as a whole word.
func containsWord(normalized, kw string) bool {
	for _, word := range strings.Fields(normalized) {
		if word == kw {
			return true
		}
	}
	return false
}

func wordCount(normalized string) int {
	if normalized == "" {
		return 0
	}
	return len(strings.Fields(normalized))
}
