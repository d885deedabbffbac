// Package recovery classifies operation failures into a shared taxonomy,
// decides recovery actions, and maintains bounded state checkpoints for
// rollback after failed plan execution.
package recovery

import (
	"regexp"
	"strings"
)

// ErrorType is the top-level failure class. It drives both the recovery
// action and retryability.
type ErrorType string

const (
	// ErrorTypeTransient covers infrastructure hiccups. Always retryable,
	// never needs a human.
	ErrorTypeTransient ErrorType = "TRANSIENT"

	// ErrorTypeRetriable covers logical or resource contention. Retryable
	// with backoff, no human needed.
	ErrorTypeRetriable ErrorType = "RETRIABLE"

	// ErrorTypeFatal covers programmer and configuration errors. Never
	// retried, always needs a human.
	ErrorTypeFatal ErrorType = "FATAL"

	// ErrorTypeConflict covers business, security and policy violations.
	// Never retried, needs a human, and pauses the workflow instead of
	// failing it.
	ErrorTypeConflict ErrorType = "CONFLICT"
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	return string(t)
}

// IsValid checks whether the error type is a known value.
func (t ErrorType) IsValid() bool {
	switch t {
	case ErrorTypeTransient, ErrorTypeRetriable, ErrorTypeFatal, ErrorTypeConflict:
		return true
	default:
		return false
	}
}

// Retryable reports whether errors of this type may be retried.
func (t ErrorType) Retryable() bool {
	switch t {
	case ErrorTypeTransient, ErrorTypeRetriable:
		return true
	default:
		return false
	}
}

// ErrorCategory narrows the error type to a specific failure mode.
type ErrorCategory string

const (
	CategoryNetworkTimeout    ErrorCategory = "NETWORK_TIMEOUT"
	CategoryConnectionReset   ErrorCategory = "CONNECTION_RESET"
	CategoryRateLimited       ErrorCategory = "RATE_LIMITED"
	CategoryServerError       ErrorCategory = "SERVER_ERROR"
	CategoryPermissionDenied  ErrorCategory = "PERMISSION_DENIED"
	CategoryFileNotFound      ErrorCategory = "FILE_NOT_FOUND"
	CategorySyntaxError       ErrorCategory = "SYNTAX_ERROR"
	CategoryInvalidConfig     ErrorCategory = "INVALID_CONFIG"
	CategoryOutOfMemory       ErrorCategory = "OUT_OF_MEMORY"
	CategorySecurityViolation ErrorCategory = "SECURITY_VIOLATION"
	CategoryPolicyViolation   ErrorCategory = "POLICY_VIOLATION"
	CategoryDataIntegrity     ErrorCategory = "DATA_INTEGRITY"
	CategoryResourceLocked    ErrorCategory = "RESOURCE_LOCKED"
	CategoryDependencyFailure ErrorCategory = "DEPENDENCY_FAILURE"
	CategoryValidationFailure ErrorCategory = "VALIDATION_FAILURE"
	CategoryUnknown           ErrorCategory = "UNKNOWN"
)

// Classification is the outcome of classifying one error.
type Classification struct {
	Type                      ErrorType     `json:"type"`
	Category                  ErrorCategory `json:"category"`
	Retryable                 bool          `json:"retryable"`
	RequiresHumanIntervention bool          `json:"requires_human_intervention"`
}

// rule maps message substrings (matched case-insensitively against the
// lowercased message) to a category.
type rule struct {
	category ErrorCategory
	keywords []string
}

// Rule order inside each tier decides the category when several match.
var (
	conflictRules = []rule{
		{CategorySecurityViolation, []string{"security violation", "cve-", "vulnerability", "security policy"}},
		{CategoryPolicyViolation, []string{"policy violation", "business rule", "compliance", "not permitted by policy"}},
		{CategoryDataIntegrity, []string{"data integrity", "integrity constraint", "checksum mismatch", "inconsistent state"}},
	}

	fatalRules = []rule{
		{CategoryPermissionDenied, []string{"permission denied", "access denied", "unauthorized", "forbidden", "eacces"}},
		{CategoryFileNotFound, []string{"enoent", "no such file", "file not found", "not found in registry"}},
		{CategorySyntaxError, []string{"syntax error", "parse error", "unexpected token"}},
		{CategoryInvalidConfig, []string{"invalid config", "invalid configuration", "missing required config"}},
		{CategoryOutOfMemory, []string{"out of memory", "oom", "cannot allocate"}},
	}

	transientRules = []rule{
		{CategoryNetworkTimeout, []string{"timeout", "timed out", "deadline exceeded", "etimedout"}},
		{CategoryConnectionReset, []string{"econnreset", "connection reset", "connection refused", "broken pipe"}},
		{CategoryRateLimited, []string{"rate limit", "too many requests", "429"}},
		{CategoryServerError, []string{"internal server error", "service unavailable", "bad gateway"}},
	}

	retriableRules = []rule{
		{CategoryResourceLocked, []string{"locked", "resource busy", "in use", "lock held"}},
		{CategoryDependencyFailure, []string{"dependency", "upstream failure", "prerequisite"}},
		{CategoryValidationFailure, []string{"validation", "invalid input", "constraint failed"}},
	}

	// Bare HTTP 5xx status codes also count as transient server errors.
	serverStatusPattern = regexp.MustCompile(`\b5\d{2}\b`)
)

// ClassifyError classifies an error by matching its message against the
// taxonomy tiers in priority order: conflict, then fatal, then
// transient, then retriable. Unmatched errors classify as
// RETRIABLE/UNKNOWN so nothing is silently dropped. A nil error
// classifies as RETRIABLE/UNKNOWN as well.
func ClassifyError(err error) Classification {
	message := ""
	if err != nil {
		message = strings.ToLower(err.Error())
	}

	if category, ok := matchRules(conflictRules, message); ok {
		return Classification{
			Type:                      ErrorTypeConflict,
			Category:                  category,
			RequiresHumanIntervention: true,
		}
	}

	if category, ok := matchRules(fatalRules, message); ok {
		return Classification{
			Type:                      ErrorTypeFatal,
			Category:                  category,
			RequiresHumanIntervention: true,
		}
	}

	if category, ok := matchRules(transientRules, message); ok {
		return Classification{
			Type:      ErrorTypeTransient,
			Category:  category,
			Retryable: true,
		}
	}
	if serverStatusPattern.MatchString(message) {
		return Classification{
			Type:      ErrorTypeTransient,
			Category:  CategoryServerError,
			Retryable: true,
		}
	}

	if category, ok := matchRules(retriableRules, message); ok {
		return Classification{
			Type:      ErrorTypeRetriable,
			Category:  category,
			Retryable: true,
		}
	}
	if strings.Contains(message, "temporary") || strings.Contains(message, "temporarily") {
		return Classification{
			Type:      ErrorTypeRetriable,
			Category:  CategoryUnknown,
			Retryable: true,
		}
	}

	return Classification{
		Type:      ErrorTypeRetriable,
		Category:  CategoryUnknown,
		Retryable: true,
	}
}

func matchRules(rules []rule, message string) (ErrorCategory, bool) {
	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(message, keyword) {
				return r.category, true
			}
		}
	}
	return "", false
}
