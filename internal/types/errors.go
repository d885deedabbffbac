package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for Conductor orchestration errors.
type ErrorCode string

// Goal parsing error codes
const (
	GOAL_EMPTY        ErrorCode = "GOAL_EMPTY"
	GOAL_PARSE_FAILED ErrorCode = "GOAL_PARSE_FAILED"
)

// Plan error codes
const (
	PLAN_VALIDATION_FAILED  ErrorCode = "PLAN_VALIDATION_FAILED"
	PLAN_CYCLE_DETECTED     ErrorCode = "PLAN_CYCLE_DETECTED"
	PLAN_MISSING_DEPENDENCY ErrorCode = "PLAN_MISSING_DEPENDENCY"
	PLAN_TASK_NOT_FOUND     ErrorCode = "PLAN_TASK_NOT_FOUND"
	PLAN_EMPTY              ErrorCode = "PLAN_EMPTY"
)

// Retry and circuit breaker error codes
const (
	RETRY_EXHAUSTED      ErrorCode = "RETRY_EXHAUSTED"
	CIRCUIT_OPEN         ErrorCode = "CIRCUIT_OPEN"
	OPERATION_NOT_FOUND  ErrorCode = "OPERATION_NOT_FOUND"
	CHECKPOINT_NOT_FOUND ErrorCode = "CHECKPOINT_NOT_FOUND"
	CHECKPOINT_FAILED    ErrorCode = "CHECKPOINT_FAILED"
)

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// ConductorError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type ConductorError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *ConductorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *ConductorError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is a ConductorError with the same Code.
func (e *ConductorError) Is(target error) bool {
	var conductorErr *ConductorError
	if errors.As(target, &conductorErr) {
		return e.Code == conductorErr.Code
	}
	return false
}

// NewError creates a new non-retryable ConductorError with the given code and message.
func NewError(code ErrorCode, message string) *ConductorError {
	return &ConductorError{
		Code:    code,
		Message: message,
	}
}

// NewRetryableError creates a new retryable ConductorError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *ConductorError {
	return &ConductorError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a new non-retryable ConductorError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *ConductorError {
	return &ConductorError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
