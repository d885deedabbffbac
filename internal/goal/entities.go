package goal

import (
	"regexp"
	"strings"
)

var (
	resourcePattern    = regexp.MustCompile(`(?:for|with)\s+(?:a\s+|an\s+|the\s+)?([a-z][a-z0-9-]*)`)
	integrationPattern = regexp.MustCompile(`integrate\s+(?:with\s+)?([a-z][a-z0-9-]*)`)
)

// securityTerms are goal words that name a security concern.
var securityTerms = []string{
	"authentication", "authorization", "oauth", "jwt", "rbac",
	"encryption", "sso", "mfa",
}

// featureTerms are UI-ish nouns treated as feature entities.
var featureTerms = []string{
	"dashboard", "form", "page", "interface", "chart", "report",
}

// resourceStopwords are words that follow "for"/"with" without naming a
// resource ("build api for the team with authentication").
var resourceStopwords = map[string]bool{
	"authentication": true,
	"authorization":  true,
	"auth":           true,
	"websocket":      true,
	"real-time":      true,
	"realtime":       true,
	"testing":        true,
}

// extractEntities pulls resource, security, integration and feature
// entities out of normalized goal text using fixed heuristics.
func extractEntities(normalized string) []Entity {
	var entities []Entity

	if m := resourcePattern.FindStringSubmatch(normalized); m != nil {
		if name := m[1]; !resourceStopwords[name] {
			entities = append(entities, Entity{Type: EntityResource, Name: name})
		}
	}

	for _, term := range securityTerms {
		if strings.Contains(normalized, term) {
			entities = append(entities, Entity{Type: EntitySecurity, Name: term})
		}
	}

	if m := integrationPattern.FindStringSubmatch(normalized); m != nil {
		entities = append(entities, Entity{Type: EntityIntegration, Name: strings.ToLower(m[1])})
	}

	for _, term := range featureTerms {
		if containsWord(normalized, term) {
			entities = append(entities, Entity{Type: EntityFeature, Name: term})
		}
	}

	return entities
}

// entitiesFromGroups converts template capture groups into entities.
// Group names map directly onto entity types.
func entitiesFromGroups(groups map[string]string) []Entity {
	var entities []Entity
	for _, name := range []string{"resource", "security", "integration", "feature"} {
		if value, ok := groups[name]; ok {
			entities = append(entities, Entity{
				Type: EntityType(name),
				Name: strings.ToLower(value),
			})
		}
	}
	return entities
}

// mergeEntities combines two entity lists, dropping duplicates by
// type+name while preserving order.
func mergeEntities(primary, secondary []Entity) []Entity {
	seen := make(map[Entity]bool, len(primary))
	merged := make([]Entity, 0, len(primary)+len(secondary))
	for _, e := range primary {
		if !seen[e] {
			seen[e] = true
			merged = append(merged, e)
		}
	}
	for _, e := range secondary {
		if !seen[e] {
			seen[e] = true
			merged = append(merged, e)
		}
	}
	return merged
}
