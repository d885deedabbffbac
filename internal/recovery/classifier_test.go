package recovery

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantType ErrorType
		wantCat  ErrorCategory
	}{
		{"connection timeout", "Connection timeout", ErrorTypeTransient, CategoryNetworkTimeout},
		{"deadline exceeded", "context deadline exceeded", ErrorTypeTransient, CategoryNetworkTimeout},
		{"connection reset", "read tcp: ECONNRESET", ErrorTypeTransient, CategoryConnectionReset},
		{"rate limited", "429 Too Many Requests", ErrorTypeTransient, CategoryRateLimited},
		{"server error phrase", "upstream returned Internal Server Error", ErrorTypeTransient, CategoryServerError},
		{"bare 5xx status", "request failed with status 503", ErrorTypeTransient, CategoryServerError},

		{"permission denied", "Permission denied", ErrorTypeFatal, CategoryPermissionDenied},
		{"unauthorized", "401 Unauthorized", ErrorTypeFatal, CategoryPermissionDenied},
		{"enoent", "open /etc/conductor.yaml: ENOENT", ErrorTypeFatal, CategoryFileNotFound},
		{"syntax error", "syntax error near line 4", ErrorTypeFatal, CategorySyntaxError},
		{"invalid config", "invalid configuration: missing dsn", ErrorTypeFatal, CategoryInvalidConfig},
		{"out of memory", "runtime: out of memory", ErrorTypeFatal, CategoryOutOfMemory},

		{"security violation", "security violation: injection attempt", ErrorTypeConflict, CategorySecurityViolation},
		{"cve", "blocked: matches CVE-2024-3094", ErrorTypeConflict, CategorySecurityViolation},
		{"business rule", "business rule REQ-007 rejected the change", ErrorTypeConflict, CategoryPolicyViolation},
		{"data integrity", "data integrity check failed", ErrorTypeConflict, CategoryDataIntegrity},

		{"resource locked", "requirement document locked by another editor", ErrorTypeRetriable, CategoryResourceLocked},
		{"dependency", "dependency service not ready", ErrorTypeRetriable, CategoryDependencyFailure},
		{"validation", "validation failed for field title", ErrorTypeRetriable, CategoryValidationFailure},
		{"temporary", "temporary glitch, try again", ErrorTypeRetriable, CategoryUnknown},
		{"unmatched", "something inexplicable happened", ErrorTypeRetriable, CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(errors.New(tt.message))
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantCat, got.Category)
			assert.Equal(t, tt.wantType.Retryable(), got.Retryable)
			wantHuman := tt.wantType == ErrorTypeFatal || tt.wantType == ErrorTypeConflict
			assert.Equal(t, wantHuman, got.RequiresHumanIntervention)
		})
	}
}

func TestClassifyErrorPriorityOrdering(t *testing.T) {
	// A message matching several tiers resolves to the highest-priority
	// one: conflict beats fatal beats transient.
	got := ClassifyError(errors.New("security violation: permission denied after timeout"))
	assert.Equal(t, ErrorTypeConflict, got.Type)

	got = ClassifyError(errors.New("permission denied while waiting, timed out"))
	assert.Equal(t, ErrorTypeFatal, got.Type)
	assert.False(t, got.Retryable)
}

func TestClassifyErrorCaseInsensitive(t *testing.T) {
	upper := ClassifyError(errors.New("CONNECTION TIMEOUT"))
	lower := ClassifyError(errors.New("connection timeout"))
	assert.Equal(t, lower, upper)
}

func TestClassifyErrorNil(t *testing.T) {
	got := ClassifyError(nil)
	assert.Equal(t, ErrorTypeRetriable, got.Type)
	assert.Equal(t, CategoryUnknown, got.Category)
	assert.True(t, got.Retryable)
}

func TestClassifyErrorWrapped(t *testing.T) {
	cause := errors.New("connection timeout")
	got := ClassifyError(fmt.Errorf("task execution failed: %w", cause))
	assert.Equal(t, ErrorTypeTransient, got.Type)
}
