// Package events publishes planning lifecycle events so the surrounding
// orchestration runtime can observe plan generation, optimization and
// adaptation without coupling to the planner internals.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/HR-AR/Project-Conductor-sub004/internal/types"
)

// EventType identifies the type of planning event.
type EventType string

const (
	// EventPlanGenerated indicates a plan was successfully generated.
	EventPlanGenerated EventType = "planning.plan_generated"

	// EventPlanOptimized indicates a plan was rewritten under a strategy.
	EventPlanOptimized EventType = "planning.plan_optimized"

	// EventPlanAdapted indicates a running plan was adapted to a trigger.
	EventPlanAdapted EventType = "planning.plan_adapted"

	// EventExecutionOrderComputed indicates execution waves were computed.
	EventExecutionOrderComputed EventType = "planning.execution_order_computed"
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	return string(t)
}

// Event represents a planning lifecycle event.
type Event struct {
	// Type identifies the event type.
	Type EventType `json:"type"`

	// PlanID is the plan the event concerns.
	PlanID types.ID `json:"plan_id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Payload contains type-specific event data.
	Payload map[string]any `json:"payload,omitempty"`
}

// Emitter publishes planning events to subscribers.
// Implementations must be thread-safe. Emit must be non-blocking: slow
// subscribers drop events rather than stalling the planner.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
	Subscribe(buffer int) (<-chan Event, func())
	Close() error
}

// NewEmitter creates a channel-based emitter.
func NewEmitter() Emitter {
	return &channelEmitter{
		subscribers: make(map[int]chan Event),
	}
}

type channelEmitter struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
	closed      bool
}

func (e *channelEmitter) Emit(_ context.Context, event Event) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return fmt.Errorf("emitter is closed")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	for _, ch := range e.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber buffer full; drop rather than block the planner.
		}
	}
	return nil
}

func (e *channelEmitter) Subscribe(buffer int) (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if buffer < 1 {
		buffer = 1
	}
	id := e.nextID
	e.nextID++
	ch := make(chan Event, buffer)
	e.subscribers[id] = ch

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if sub, ok := e.subscribers[id]; ok {
			delete(e.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (e *channelEmitter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	for id, ch := range e.subscribers {
		delete(e.subscribers, id)
		close(ch)
	}
	return nil
}

// NopEmitter discards all events. It is the default for components
// constructed without an emitter.
type NopEmitter struct{}

// Emit discards the event.
func (NopEmitter) Emit(context.Context, Event) error { return nil }

// Subscribe returns a closed channel; nothing is ever delivered.
func (NopEmitter) Subscribe(int) (<-chan Event, func()) {
	ch := make(chan Event)
	close(ch)
	return ch, func() {}
}

// Close is a no-op.
func (NopEmitter) Close() error { return nil }
