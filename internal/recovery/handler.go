package recovery

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/HR-AR/Project-Conductor-sub004/internal/goal"
	"github.com/HR-AR/Project-Conductor-sub004/internal/types"
)

// RecoveryAction tells the orchestration runtime what to do with a
// failed operation.
type RecoveryAction string

const (
	// ActionRetryWithBackoff retries the operation under the retry policy.
	ActionRetryWithBackoff RecoveryAction = "RETRY_WITH_BACKOFF"

	// ActionFailImmediately fails the task without retrying.
	ActionFailImmediately RecoveryAction = "FAIL_IMMEDIATELY"

	// ActionPauseWorkflow suspends the workflow until a human resolves
	// the conflict.
	ActionPauseWorkflow RecoveryAction = "PAUSE_WORKFLOW"
)

// String returns the string representation of the recovery action.
func (a RecoveryAction) String() string {
	return string(a)
}

// AgentContext carries the execution context of a failed operation.
// All fields are optional; handler functions accept the zero value.
type AgentContext struct {
	AgentType goal.AgentType `json:"agent_type,omitempty"`
	TaskID    string         `json:"task_id,omitempty"`
	PlanID    types.ID       `json:"plan_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// AgentError is the structured record of one agent failure.
type AgentError struct {
	Message   string         `json:"message"`
	Type      ErrorType      `json:"type"`
	Category  ErrorCategory  `json:"category"`
	AgentType goal.AgentType `json:"agent_type,omitempty"`
	TaskID    string         `json:"task_id,omitempty"`
	Retryable bool           `json:"retryable"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("[%s/%s] task %s: %s", e.Type, e.Category, e.TaskID, e.Message)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Type, e.Category, e.Message)
}

// NewAgentError builds a structured agent error. Retryable derives from
// the type alone so it always agrees with ClassifyError for that type.
func NewAgentError(message string, errType ErrorType, category ErrorCategory, agentType goal.AgentType, taskID string, metadata map[string]any) *AgentError {
	if !errType.IsValid() {
		errType = ErrorTypeRetriable
	}
	if category == "" {
		category = CategoryUnknown
	}
	return &AgentError{
		Message:   message,
		Type:      errType,
		Category:  category,
		AgentType: agentType,
		TaskID:    taskID,
		Retryable: errType.Retryable(),
		Metadata:  metadata,
		Timestamp: time.Now(),
	}
}

// RecoveryResult is the handler's verdict on a failed operation.
type RecoveryResult struct {
	Success  bool           `json:"success"`
	Action   RecoveryAction `json:"action"`
	Err      *AgentError    `json:"error"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Handler classifies agent failures and manages checkpoints.
type Handler struct {
	logger      *slog.Logger
	checkpoints *CheckpointStore
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the handler's logger.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithCheckpointCapacity caps the checkpoint ring buffer.
func WithCheckpointCapacity(capacity int) HandlerOption {
	return func(h *Handler) {
		h.checkpoints = NewCheckpointStore(capacity)
	}
}

// NewHandler creates a handler with a default-capacity checkpoint store.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{
		logger:      slog.Default(),
		checkpoints: NewCheckpointStore(defaultCheckpointCapacity),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Checkpoints exposes the handler's checkpoint store.
func (h *Handler) Checkpoints() *CheckpointStore {
	return h.checkpoints
}

// HandleAgentError classifies the error and maps it to a recovery
// action. Conflicts pause the workflow and flag the result for human
// intervention; fatal errors fail immediately; everything else retries
// with backoff.
func (h *Handler) HandleAgentError(err error, agentCtx AgentContext) RecoveryResult {
	classification := ClassifyError(err)

	message := ""
	if err != nil {
		message = err.Error()
	}
	agentErr := NewAgentError(message, classification.Type, classification.Category,
		agentCtx.AgentType, agentCtx.TaskID, agentCtx.Metadata)

	result := RecoveryResult{Success: false, Err: agentErr}
	switch classification.Type {
	case ErrorTypeConflict:
		result.Action = ActionPauseWorkflow
		result.Metadata = map[string]any{"requiresHumanIntervention": true}
	case ErrorTypeFatal:
		result.Action = ActionFailImmediately
	default:
		result.Action = ActionRetryWithBackoff
	}

	h.logger.Warn("handled agent error",
		slog.String("type", classification.Type.String()),
		slog.String("category", string(classification.Category)),
		slog.String("action", result.Action.String()),
		slog.String("task_id", agentCtx.TaskID),
		slog.String("agent_type", string(agentCtx.AgentType)))

	return result
}
