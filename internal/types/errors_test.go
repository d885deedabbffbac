package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestConductorErrorError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewError(PLAN_EMPTY, "plan has no tasks")
		want := "[PLAN_EMPTY] plan has no tasks"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := WrapError(CHECKPOINT_FAILED, "snapshot failed", cause)
		want := "[CHECKPOINT_FAILED] snapshot failed: disk full"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})
}

func TestConductorErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := WrapError(GOAL_PARSE_FAILED, "parse failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach the wrapped cause")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap did not return the cause")
	}
}

func TestConductorErrorIsMatchesByCode(t *testing.T) {
	err := NewError(PLAN_CYCLE_DETECTED, "cycle a -> b -> a")

	if !errors.Is(err, NewError(PLAN_CYCLE_DETECTED, "different message")) {
		t.Error("errors with the same code did not match")
	}
	if errors.Is(err, NewError(PLAN_EMPTY, "")) {
		t.Error("errors with different codes matched")
	}
}

func TestConductorErrorIsThroughWrapping(t *testing.T) {
	inner := NewError(CIRCUIT_OPEN, "breaker open")
	outer := fmt.Errorf("dispatch failed: %w", inner)

	if !errors.Is(outer, NewError(CIRCUIT_OPEN, "")) {
		t.Error("code match failed through fmt.Errorf wrapping")
	}
}

func TestRetryableFlags(t *testing.T) {
	if NewError(GOAL_EMPTY, "").Retryable {
		t.Error("NewError produced a retryable error")
	}
	if !NewRetryableError(RETRY_EXHAUSTED, "").Retryable {
		t.Error("NewRetryableError produced a non-retryable error")
	}
	if WrapError(CONFIG_LOAD_FAILED, "", errors.New("x")).Retryable {
		t.Error("WrapError produced a retryable error")
	}
}

func TestErrorsAsConductorError(t *testing.T) {
	var conductorErr *ConductorError
	err := fmt.Errorf("outer: %w", NewError(PLAN_TASK_NOT_FOUND, "missing"))

	if !errors.As(err, &conductorErr) {
		t.Fatal("errors.As failed to extract ConductorError")
	}
	if conductorErr.Code != PLAN_TASK_NOT_FOUND {
		t.Errorf("extracted code %s, want PLAN_TASK_NOT_FOUND", conductorErr.Code)
	}
}
