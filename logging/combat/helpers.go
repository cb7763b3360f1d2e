// Package combat provides typed helpers for attack and damage events.
package combat

import (
	"context"

	"deepwarren/server/logging"
)

const (
	// EventAttackLanded is emitted when a melee strike or ability hits.
	EventAttackLanded logging.EventType = "combat.attack_landed"
	// EventCreatureDied is emitted when damage drops a creature to zero
	// health.
	EventCreatureDied logging.EventType = "combat.creature_died"
	// EventShout is emitted when a creature calls for help.
	EventShout logging.EventType = "combat.shout"
)

// AttackPayload captures one resolved hit.
type AttackPayload struct {
	Ability string `json:"ability,omitempty"`
	Damage  int    `json:"damage"`
	Healing int    `json:"healing,omitempty"`
}

// AttackLanded publishes a resolved hit against a target.
func AttackLanded(ctx context.Context, pub logging.Publisher, turn uint64, attacker, target logging.EntityRef, payload AttackPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAttackLanded,
		Turn:     turn,
		Actor:    attacker,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: "combat",
		Payload:  payload,
	})
}

// DiedPayload records who struck the killing blow.
type DiedPayload struct {
	KillerID string `json:"killerId,omitempty"`
}

// CreatureDied publishes a death.
func CreatureDied(ctx context.Context, pub logging.Publisher, turn uint64, victim logging.EntityRef, payload DiedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCreatureDied,
		Turn:     turn,
		Actor:    victim,
		Severity: logging.SeverityInfo,
		Category: "combat",
		Payload:  payload,
	})
}

// ShoutPayload counts how many allies were in earshot.
type ShoutPayload struct {
	AlliesAlerted int `json:"alliesAlerted"`
}

// Shout publishes a call for help.
func Shout(ctx context.Context, pub logging.Publisher, turn uint64, shouter logging.EntityRef, payload ShoutPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventShout,
		Turn:     turn,
		Actor:    shouter,
		Severity: logging.SeverityInfo,
		Category: "combat",
		Payload:  payload,
	})
}
