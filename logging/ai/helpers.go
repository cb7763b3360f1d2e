// Package ai defines the event payloads the decision core publishes.
package ai

import (
	"context"

	"deepwarren/server/logging"
)

const (
	// EventOverrideApplied is emitted when a status override replaces an
	// agent's goal stack.
	EventOverrideApplied logging.EventType = "ai.override_applied"
	// EventOverrideCleared is emitted when an override ends and the default
	// behavior is re-seeded.
	EventOverrideCleared logging.EventType = "ai.override_cleared"
	// EventRootFailure is emitted when a root goal with no recorded intent
	// fails; the stack resets to the default fallback.
	EventRootFailure logging.EventType = "ai.root_failure"
	// EventStackExhausted is emitted when turn processing finds an empty
	// stack, which the fallback invariant should make impossible.
	EventStackExhausted logging.EventType = "ai.stack_exhausted"
)

// OverridePayload describes a stack override transition.
type OverridePayload struct {
	Condition string `json:"condition"`
	Goal      string `json:"goal,omitempty"`
}

// OverrideApplied publishes an override application event.
func OverrideApplied(ctx context.Context, pub logging.Publisher, turn uint64, agent logging.EntityRef, payload OverridePayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventOverrideApplied,
		Turn:     turn,
		Actor:    agent,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryAI,
		Payload:  payload,
	})
}

// OverrideCleared publishes an override removal event.
func OverrideCleared(ctx context.Context, pub logging.Publisher, turn uint64, agent logging.EntityRef, payload OverridePayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventOverrideCleared,
		Turn:     turn,
		Actor:    agent,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryAI,
		Payload:  payload,
	})
}

// RootFailurePayload names the goal that failed without an unwind target.
type RootFailurePayload struct {
	Goal string `json:"goal"`
}

// RootFailure publishes a configuration warning for a root-level goal
// failure.
func RootFailure(ctx context.Context, pub logging.Publisher, turn uint64, agent logging.EntityRef, payload RootFailurePayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventRootFailure,
		Turn:     turn,
		Actor:    agent,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryAI,
		Payload:  payload,
	})
}

// StackExhausted publishes the defensive error for an empty goal stack.
func StackExhausted(ctx context.Context, pub logging.Publisher, turn uint64, agent logging.EntityRef) {
	publish(ctx, pub, logging.Event{
		Type:     EventStackExhausted,
		Turn:     turn,
		Actor:    agent,
		Severity: logging.SeverityError,
		Category: logging.CategoryAI,
	})
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, event)
}
