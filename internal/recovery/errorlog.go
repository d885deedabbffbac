package recovery

import (
	"log/slog"
	"time"
)

// ErrorLog is the structured, serialization-ready form of one failure.
type ErrorLog struct {
	Timestamp                 time.Time      `json:"timestamp"`
	Message                   string         `json:"message"`
	Type                      ErrorType      `json:"type"`
	Category                  ErrorCategory  `json:"category"`
	AgentType                 string         `json:"agent_type,omitempty"`
	TaskID                    string         `json:"task_id,omitempty"`
	PlanID                    string         `json:"plan_id,omitempty"`
	Retryable                 bool           `json:"retryable"`
	RequiresHumanIntervention bool           `json:"requires_human_intervention"`
	Metadata                  map[string]any `json:"metadata,omitempty"`
}

// ToErrorLog adapts a raw error plus context into a structured log
// entry. It is defensive: nil errors and zero contexts produce a valid
// entry rather than failing.
func ToErrorLog(err error, agentCtx AgentContext) ErrorLog {
	classification := ClassifyError(err)

	message := "unknown error"
	if err != nil {
		message = err.Error()
	}

	entry := ErrorLog{
		Timestamp:                 time.Now(),
		Message:                   message,
		Type:                      classification.Type,
		Category:                  classification.Category,
		AgentType:                 string(agentCtx.AgentType),
		TaskID:                    agentCtx.TaskID,
		Retryable:                 classification.Retryable,
		RequiresHumanIntervention: classification.RequiresHumanIntervention,
		Metadata:                  agentCtx.Metadata,
	}
	if !agentCtx.PlanID.IsZero() {
		entry.PlanID = agentCtx.PlanID.String()
	}
	return entry
}

// LogError writes the structured form of the error to the handler's
// logger. Safe for minimal or empty context.
func (h *Handler) LogError(err error, agentCtx AgentContext) ErrorLog {
	entry := ToErrorLog(err, agentCtx)

	h.logger.Error("agent operation failed",
		slog.String("message", entry.Message),
		slog.String("type", entry.Type.String()),
		slog.String("category", string(entry.Category)),
		slog.String("agent_type", entry.AgentType),
		slog.String("task_id", entry.TaskID),
		slog.Bool("retryable", entry.Retryable),
		slog.Bool("requires_human_intervention", entry.RequiresHumanIntervention))

	return entry
}
