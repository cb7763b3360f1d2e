// Package conditions defines the event payloads the status-effect bridge
// publishes.
package conditions

import (
	"context"

	"deepwarren/server/logging"
)

const (
	// EventApplied is emitted when a condition is applied to an actor.
	EventApplied logging.EventType = "conditions.applied"
	// EventExpired is emitted when a condition runs out naturally.
	EventExpired logging.EventType = "conditions.expired"
	// EventBroken is emitted when a condition is removed before expiry, for
	// example sleep interrupted by damage.
	EventBroken logging.EventType = "conditions.broken"
	// EventMissingMind is emitted when a condition cannot reach the target's
	// goal stack. The entity is malformed; duration bookkeeping continues.
	EventMissingMind logging.EventType = "conditions.missing_mind"
)

// Payload captures details about a condition transition.
type Payload struct {
	Condition     string `json:"condition"`
	InstanceID    string `json:"instanceId,omitempty"`
	SourceID      string `json:"sourceId,omitempty"`
	DurationTurns int    `json:"durationTurns,omitempty"`
}

// Applied publishes a condition application event.
func Applied(ctx context.Context, pub logging.Publisher, turn uint64, source, target logging.EntityRef, payload Payload) {
	publish(ctx, pub, logging.Event{
		Type:     EventApplied,
		Turn:     turn,
		Actor:    source,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryConditions,
		Payload:  payload,
	})
}

// Expired publishes a natural expiry event.
func Expired(ctx context.Context, pub logging.Publisher, turn uint64, target logging.EntityRef, payload Payload) {
	publish(ctx, pub, logging.Event{
		Type:     EventExpired,
		Turn:     turn,
		Actor:    target,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryConditions,
		Payload:  payload,
	})
}

// Broken publishes an early-removal event.
func Broken(ctx context.Context, pub logging.Publisher, turn uint64, target logging.EntityRef, payload Payload) {
	publish(ctx, pub, logging.Event{
		Type:     EventBroken,
		Turn:     turn,
		Actor:    target,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryConditions,
		Payload:  payload,
	})
}

// MissingMind publishes the configuration error for a target without a goal
// stack handle.
func MissingMind(ctx context.Context, pub logging.Publisher, turn uint64, target logging.EntityRef, payload Payload) {
	publish(ctx, pub, logging.Event{
		Type:     EventMissingMind,
		Turn:     turn,
		Actor:    target,
		Severity: logging.SeverityError,
		Category: logging.CategoryConditions,
		Payload:  payload,
	})
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, event)
}
