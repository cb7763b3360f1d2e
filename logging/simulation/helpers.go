// Package simulation provides typed helpers for turn-loop events.
package simulation

import (
	"context"

	"deepwarren/server/logging"
)

const (
	// EventTurnBudgetOverrun is emitted when processing a turn exceeds the
	// configured turn interval.
	EventTurnBudgetOverrun logging.EventType = "simulation.turn_budget_overrun"
	// EventItemPicked is emitted when a creature takes a ground item.
	EventItemPicked logging.EventType = "simulation.item_picked"
)

// TurnBudgetOverrunPayload captures timing details for a turn budget breach.
type TurnBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
}

// TurnBudgetOverrun publishes a warning when turn processing outruns the
// interval the loop is paced at.
func TurnBudgetOverrun(ctx context.Context, pub logging.Publisher, turn uint64, payload TurnBudgetOverrunPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTurnBudgetOverrun,
		Turn:     turn,
		Severity: logging.SeverityWarn,
		Category: "simulation",
		Payload:  payload,
	})
}

// ItemPickedPayload names the item taken from the floor.
type ItemPickedPayload struct {
	Item string `json:"item"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// ItemPicked publishes an item pickup.
func ItemPicked(ctx context.Context, pub logging.Publisher, turn uint64, taker logging.EntityRef, payload ItemPickedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventItemPicked,
		Turn:     turn,
		Actor:    taker,
		Severity: logging.SeverityInfo,
		Category: "simulation",
		Payload:  payload,
	})
}
