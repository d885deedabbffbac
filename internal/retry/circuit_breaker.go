package retry

import (
	"fmt"
	"sync"
	"time"

	"github.com/HR-AR/Project-Conductor-sub004/internal/goal"
)

// CircuitState represents the current state of an agent's circuit.
type CircuitState int

const (
	// StateClosed means normal operation, attempts allowed.
	StateClosed CircuitState = iota

	// StateOpen means too many failures, attempts blocked.
	StateOpen

	// StateHalfOpen means the circuit is probing whether the agent
	// has recovered.
	StateHalfOpen
)

// String returns a human-readable representation of the circuit state.
func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// agentCircuit tracks breaker state for a single agent type.
type agentCircuit struct {
	state       CircuitState
	failures    int
	openedAt    time.Time
	probing     bool
	lastFailure time.Time
}

// CircuitBreaker tracks failures per agent type and blocks attempts
// once an agent crosses its failure threshold.
//
// State transitions:
//   - Closed -> Open: after threshold consecutive failures
//   - Open -> Half-Open: after the open timeout, one probe is allowed
//   - Half-Open -> Closed: the probe succeeds
//   - Half-Open -> Open: the probe fails
//
// Thread-safe: all methods can be called concurrently.
type CircuitBreaker struct {
	threshold   int
	openTimeout time.Duration
	mu          sync.RWMutex
	circuits    map[goal.AgentType]*agentCircuit
}

// NewCircuitBreaker creates a breaker that opens an agent's circuit
// after threshold consecutive failures and allows a recovery probe
// after openTimeout.
func NewCircuitBreaker(threshold int, openTimeout time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = defaultCircuitBreakerThreshold
	}
	if openTimeout <= 0 {
		openTimeout = defaultOpenTimeout
	}
	return &CircuitBreaker{
		threshold:   threshold,
		openTimeout: openTimeout,
		circuits:    make(map[goal.AgentType]*agentCircuit),
	}
}

// Allow checks whether an attempt for the agent may proceed. Returns
// nil to proceed, or a CircuitOpenError while the circuit is open. In
// half-open state a single probe is let through.
func (cb *CircuitBreaker) Allow(agent goal.AgentType) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	circuit := cb.getOrCreate(agent)

	switch circuit.state {
	case StateClosed:
		return nil

	case StateOpen:
		if time.Since(circuit.openedAt) >= cb.openTimeout {
			circuit.state = StateHalfOpen
			circuit.probing = true
			return nil
		}
		return &CircuitOpenError{
			Agent:      agent,
			OpenedAt:   circuit.openedAt,
			RetryAfter: circuit.openedAt.Add(cb.openTimeout),
		}

	case StateHalfOpen:
		if !circuit.probing {
			circuit.probing = true
			return nil
		}
		return &CircuitOpenError{
			Agent:      agent,
			OpenedAt:   circuit.openedAt,
			RetryAfter: circuit.openedAt.Add(cb.openTimeout),
		}

	default:
		return nil
	}
}

// RecordSuccess resets the failure tally, closing a half-open circuit.
func (cb *CircuitBreaker) RecordSuccess(agent goal.AgentType) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	circuit := cb.getOrCreate(agent)
	circuit.state = StateClosed
	circuit.failures = 0
	circuit.probing = false
}

// RecordFailure increments the agent's failure tally and opens the
// circuit once the threshold is crossed. A failed half-open probe
// reopens immediately.
func (cb *CircuitBreaker) RecordFailure(agent goal.AgentType) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	circuit := cb.getOrCreate(agent)
	circuit.lastFailure = time.Now()

	switch circuit.state {
	case StateClosed:
		circuit.failures++
		if circuit.failures >= cb.threshold {
			circuit.state = StateOpen
			circuit.openedAt = time.Now()
		}

	case StateHalfOpen:
		circuit.state = StateOpen
		circuit.openedAt = time.Now()
		circuit.failures = cb.threshold
		circuit.probing = false
	}
}

// State returns the effective state for the agent. The second return
// is false when the agent has no tracked circuit.
func (cb *CircuitBreaker) State(agent goal.AgentType) (CircuitState, bool) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	circuit, exists := cb.circuits[agent]
	if !exists {
		return StateClosed, false
	}
	// An expired open circuit reports half-open; the transition itself
	// happens in Allow.
	if circuit.state == StateOpen && time.Since(circuit.openedAt) >= cb.openTimeout {
		return StateHalfOpen, true
	}
	return circuit.state, true
}

// Reset drops the agent's circuit entirely; a later State call reports
// it as untracked.
func (cb *CircuitBreaker) Reset(agent goal.AgentType) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	delete(cb.circuits, agent)
}

// getOrCreate returns the circuit for the agent, creating it if
// needed. Must be called with mu locked.
func (cb *CircuitBreaker) getOrCreate(agent goal.AgentType) *agentCircuit {
	circuit, exists := cb.circuits[agent]
	if !exists {
		circuit = &agentCircuit{state: StateClosed}
		cb.circuits[agent] = circuit
	}
	return circuit
}

// CircuitOpenError is returned when an agent's circuit is open and
// attempts are blocked. It is distinct from the wrapped operation's own
// error so callers can tell rejection from failure.
type CircuitOpenError struct {
	Agent      goal.AgentType
	OpenedAt   time.Time
	RetryAfter time.Time
}

// Error implements the error interface.
func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit open for agent %s (opened at %s, retry after %s)",
		e.Agent, e.OpenedAt.Format(time.RFC3339), e.RetryAfter.Format(time.RFC3339))
}
