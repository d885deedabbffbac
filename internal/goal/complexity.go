package goal

// longGoalWordThreshold is the word count past which a goal is always
// treated as very complex, regardless of capability analysis.
const longGoalWordThreshold = 200

// shortGoalWordThreshold is the word count under which a goal with no
// special capabilities counts as simple.
const shortGoalWordThreshold = 6

// specialCapabilities are the capabilities that escalate complexity.
var specialCapabilities = map[Capability]bool{
	CapabilityAuthentication: true,
	CapabilityAuthorization:  true,
	CapabilityRealTime:       true,
	CapabilityWebSocket:      true,
	CapabilityIntegration:    true,
	CapabilitySecurity:       true,
}

// estimateComplexity derives complexity from the capability set and the
// normalized goal text. Security-sensitive combinations escalate: a goal
// needing authentication, authorization and real-time delivery together
// is always very complex.
func estimateComplexity(caps []Capability, normalized string) Complexity {
	words := wordCount(normalized)
	if words > longGoalWordThreshold {
		return ComplexityVeryComplex
	}

	special := 0
	var hasAuth, hasAuthz, hasRealtime bool
	for _, c := range caps {
		if specialCapabilities[c] {
			special++
		}
		switch c {
		case CapabilityAuthentication:
			hasAuth = true
		case CapabilityAuthorization:
			hasAuthz = true
		case CapabilityRealTime, CapabilityWebSocket:
			hasRealtime = true
		}
	}

	if hasAuth && hasAuthz && hasRealtime {
		return ComplexityVeryComplex
	}
	if len(caps) >= 5 {
		return ComplexityVeryComplex
	}
	if len(caps) >= 3 || hasAuth || hasAuthz {
		return ComplexityComplex
	}
	if special == 0 && words < shortGoalWordThreshold {
		return ComplexitySimple
	}
	return ComplexityModerate
}
