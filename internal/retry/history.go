package retry

import "time"

// Attempt records one invocation of a retried operation.
type Attempt struct {
	Number    int           `json:"number"`
	Error     string        `json:"error,omitempty"`
	Delay     time.Duration `json:"delay"`
	Timestamp time.Time     `json:"timestamp"`
}

// OperationHistory records every attempt of one operation id.
type OperationHistory struct {
	OperationID   string    `json:"operation_id"`
	Attempts      []Attempt `json:"attempts"`
	TotalAttempts int       `json:"total_attempts"`
	FinalSuccess  bool      `json:"final_success"`
	LastUpdated   time.Time `json:"last_updated"`
}

// Statistics aggregates outcomes across all recorded operations.
type Statistics struct {
	TotalOperations      int `json:"total_operations"`
	SuccessfulOperations int `json:"successful_operations"`
	FailedOperations     int `json:"failed_operations"`
	TotalAttempts        int `json:"total_attempts"`
}

// History returns a copy of the retry history for the operation id.
// The second return is false when the id was never executed.
func (m *Manager) History(operationID string) (OperationHistory, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.history[operationID]
	if !ok {
		return OperationHistory{}, false
	}
	out := *h
	out.Attempts = append([]Attempt(nil), h.Attempts...)
	return out, true
}

// GetStatistics aggregates total, successful and failed operation
// counts across the history.
func (m *Manager) GetStatistics() Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := Statistics{TotalOperations: len(m.history)}
	for _, h := range m.history {
		if h.FinalSuccess {
			stats.SuccessfulOperations++
		} else {
			stats.FailedOperations++
		}
		stats.TotalAttempts += h.TotalAttempts
	}
	return stats
}

// ClearHistory drops all recorded operation histories.
func (m *Manager) ClearHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = make(map[string]*OperationHistory)
}

// recordAttempt appends one attempt to the operation's history. Must
// not be called concurrently for the same operation id; retries of one
// operation are strictly sequential.
func (m *Manager) recordAttempt(operationID string, attempt Attempt, finalSuccess bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.history[operationID]
	if !ok {
		h = &OperationHistory{OperationID: operationID}
		m.history[operationID] = h
	}
	h.Attempts = append(h.Attempts, attempt)
	h.TotalAttempts = len(h.Attempts)
	h.FinalSuccess = finalSuccess
	h.LastUpdated = time.Now()
}
