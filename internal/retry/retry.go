// Package retry executes operations under a classification-driven retry
// policy with configurable backoff, per-operation history, and a
// per-agent circuit breaker.
package retry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/HR-AR/Project-Conductor-sub004/internal/goal"
	"github.com/HR-AR/Project-Conductor-sub004/internal/observability"
	"github.com/HR-AR/Project-Conductor-sub004/internal/recovery"
	"github.com/HR-AR/Project-Conductor-sub004/internal/types"
)

const (
	defaultMaxAttempts             = 3
	defaultBaseDelay               = 100 * time.Millisecond
	defaultMaxDelay                = 30 * time.Second
	defaultCircuitBreakerThreshold = 5
	defaultOpenTimeout             = 30 * time.Second
)

// Config tunes the retry policy.
type Config struct {
	// MaxAttempts counts retries after the first try; total tries are
	// MaxAttempts+1 and zero means a single try with no retries.
	MaxAttempts int `json:"max_attempts" mapstructure:"max_attempts"`

	// Strategy selects the backoff growth scheme.
	Strategy BackoffStrategy `json:"strategy" mapstructure:"strategy"`

	// BaseDelay seeds every backoff scheme.
	BaseDelay time.Duration `json:"base_delay" mapstructure:"base_delay"`

	// MaxDelay clamps the computed delay.
	MaxDelay time.Duration `json:"max_delay" mapstructure:"max_delay"`

	// RetryableErrors allowlists the error types worth retrying. Empty
	// means any classification that reports itself retryable.
	RetryableErrors []recovery.ErrorType `json:"retryable_errors" mapstructure:"retryable_errors"`

	// CircuitBreakerThreshold is the consecutive failure count that
	// opens an agent's circuit. The breaker is shared across calls, so
	// only the manager's own config sets it; per-call overrides via
	// WithCallConfig leave it untouched.
	CircuitBreakerThreshold int `json:"circuit_breaker_threshold" mapstructure:"circuit_breaker_threshold"`
}

// DefaultConfig returns the retry defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:             defaultMaxAttempts,
		Strategy:                BackoffExponential,
		BaseDelay:               defaultBaseDelay,
		MaxDelay:                defaultMaxDelay,
		RetryableErrors:         []recovery.ErrorType{recovery.ErrorTypeTransient, recovery.ErrorTypeRetriable},
		CircuitBreakerThreshold: defaultCircuitBreakerThreshold,
	}
}

// Operation is a caller-supplied unit of work. Retries of one
// operation are strictly sequential.
type Operation func(ctx context.Context) (any, error)

// Manager runs operations under the retry policy. Histories and
// breaker state are process-local and in-memory.
type Manager struct {
	config  Config
	breaker *CircuitBreaker
	logger  *slog.Logger

	mu      sync.Mutex
	history map[string]*OperationHistory

	openTimeout time.Duration

	// sleep is replaceable in tests so backoff waits don't slow them.
	sleep func(ctx context.Context, d time.Duration) error
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithConfig replaces the default retry configuration.
func WithConfig(cfg Config) ManagerOption {
	return func(m *Manager) {
		m.config = cfg
	}
}

// WithOpenTimeout sets how long an opened circuit blocks before a probe.
func WithOpenTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.openTimeout = d
	}
}

// NewManager creates a retry manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		config:      DefaultConfig(),
		logger:      slog.Default(),
		history:     make(map[string]*OperationHistory),
		openTimeout: defaultOpenTimeout,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.breaker = NewCircuitBreaker(m.config.CircuitBreakerThreshold, m.openTimeout)
	return m
}

// CallOption adjusts a single ExecuteWithRetry call.
type CallOption func(*callSettings)

type callSettings struct {
	agentType goal.AgentType
	config    *Config
}

// ForAgent attributes the call to an agent type, engaging that agent's
// circuit breaker.
func ForAgent(agent goal.AgentType) CallOption {
	return func(s *callSettings) {
		s.agentType = agent
	}
}

// WithCallConfig overrides the retry policy for this call: attempts,
// strategy, delays and the retryable allowlist. Breaker settings stay
// manager-level because breaker state is shared across calls.
func WithCallConfig(cfg Config) CallOption {
	return func(s *callSettings) {
		s.config = &cfg
	}
}

// ExecuteWithRetry runs the operation under the retry policy.
//
// When the calling agent's circuit is open the operation is not invoked
// at all and a CircuitOpenError is returned; callers can distinguish it
// from the operation's own failures with errors.As. Otherwise the
// operation is tried up to MaxAttempts+1 times; a failure whose
// classification is not retryable under the config, or exhaustion of
// the attempts, returns the original last error unmasked.
func (m *Manager) ExecuteWithRetry(ctx context.Context, operationID string, op Operation, opts ...CallOption) (any, error) {
	var settings callSettings
	for _, opt := range opts {
		opt(&settings)
	}
	cfg := m.config
	if settings.config != nil {
		cfg = *settings.config
	}

	ctx, span := observability.StartSpan(ctx, "retry.execute",
		observability.String(observability.AttrOperationID, operationID))
	defer span.End()

	if settings.agentType != "" {
		if err := m.breaker.Allow(settings.agentType); err != nil {
			m.logger.Warn("circuit open, rejecting operation",
				slog.String("operation_id", operationID),
				slog.String("agent_type", string(settings.agentType)))
			return nil, types.WrapError(types.CIRCUIT_OPEN, "operation rejected by circuit breaker", err)
		}
	}

	maxTries := cfg.MaxAttempts + 1
	if maxTries < 1 {
		maxTries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxTries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			if settings.agentType != "" {
				m.breaker.RecordSuccess(settings.agentType)
			}
			m.recordAttempt(operationID, Attempt{Number: attempt, Timestamp: time.Now()}, true)
			return result, nil
		}

		lastErr = err
		if settings.agentType != "" {
			m.breaker.RecordFailure(settings.agentType)
		}

		classification := recovery.ClassifyError(err)
		retryable := m.retryAllowed(classification, cfg)
		final := !retryable || attempt == maxTries

		delay := time.Duration(0)
		if !final {
			delay = GetBackoffDelay(attempt, cfg.Strategy, cfg)
		}
		m.recordAttempt(operationID, Attempt{
			Number:    attempt,
			Error:     err.Error(),
			Delay:     delay,
			Timestamp: time.Now(),
		}, false)

		if final {
			m.logger.Warn("operation failed",
				slog.String("operation_id", operationID),
				slog.Int("attempts", attempt),
				slog.String("error_type", classification.Type.String()),
				slog.Bool("retryable", retryable))
			return nil, lastErr
		}

		m.logger.Debug("retrying operation",
			slog.String("operation_id", operationID),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay))

		if err := m.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// GetCircuitBreakerState reports the effective breaker state for the
// agent; ok is false when the agent has no tracked circuit.
func (m *Manager) GetCircuitBreakerState(agent goal.AgentType) (CircuitState, bool) {
	return m.breaker.State(agent)
}

// ResetCircuitBreaker removes the agent's breaker state entirely.
func (m *Manager) ResetCircuitBreaker(agent goal.AgentType) {
	m.breaker.Reset(agent)
}

// retryAllowed checks the classification against the allowlist. An
// empty allowlist defers to the classification's own retryable flag.
func (m *Manager) retryAllowed(c recovery.Classification, cfg Config) bool {
	if len(cfg.RetryableErrors) == 0 {
		return c.Retryable
	}
	for _, t := range cfg.RetryableErrors {
		if t == c.Type {
			return true
		}
	}
	return false
}

// sleepContext waits out the delay or the context, whichever ends
// first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
