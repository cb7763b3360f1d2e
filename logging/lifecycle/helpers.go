// Package lifecycle provides typed helpers for spawn and despawn events.
package lifecycle

import (
	"context"

	"deepwarren/server/logging"
)

const (
	// EventSpawned is emitted when a creature enters the dungeon.
	EventSpawned logging.EventType = "lifecycle.spawned"
	// EventDespawned is emitted when a creature is removed from the world.
	EventDespawned logging.EventType = "lifecycle.despawned"
)

// Payload describes the creature entering or leaving.
type Payload struct {
	Kind    string `json:"kind"`
	Faction string `json:"faction"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

// Spawned publishes a creature spawn.
func Spawned(ctx context.Context, pub logging.Publisher, turn uint64, who logging.EntityRef, payload Payload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSpawned,
		Turn:     turn,
		Actor:    who,
		Severity: logging.SeverityInfo,
		Category: "simulation",
		Payload:  payload,
	})
}

// Despawned publishes a creature removal.
func Despawned(ctx context.Context, pub logging.Publisher, turn uint64, who logging.EntityRef, payload Payload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDespawned,
		Turn:     turn,
		Actor:    who,
		Severity: logging.SeverityInfo,
		Category: "simulation",
		Payload:  payload,
	})
}
