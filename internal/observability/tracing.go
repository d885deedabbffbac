// Package observability provides the tracing plumbing shared by the
// planning components. Spans are created from the global OpenTelemetry
// tracer provider; when no provider is registered the spans are no-ops
// with zero overhead.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies this library's tracer to the provider.
const tracerName = "github.com/HR-AR/Project-Conductor-sub004"

// Span attribute keys used across the planning components.
const (
	AttrPlanID       = "conductor.plan.id"
	AttrTaskCount    = "conductor.plan.task_count"
	AttrStrategy     = "conductor.optimizer.strategy"
	AttrTrigger      = "conductor.adaptation.trigger"
	AttrGoalIntent   = "conductor.goal.intent"
	AttrOperationID  = "conductor.retry.operation_id"
	AttrAttemptCount = "conductor.retry.attempts"
)

// Tracer returns the library tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a span with the given name and attributes.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := Tracer().Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

// String builds a string attribute.
func String(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// Int builds an int attribute.
func Int(key string, value int) attribute.KeyValue {
	return attribute.Int(key, value)
}
