// Package actor holds the mutable creature state and the registry the
// decision core resolves its non-owning handles against.
package actor

import "deepwarren/server/internal/grid"

// ID is a stable handle to an actor. Holders must re-resolve it against the
// registry every turn; the actor behind it may be gone.
type ID string

// Faction groups actors for hostility and ally checks.
type Faction string

const (
	FactionAdventurers Faction = "adventurers"
	FactionWarren      Faction = "warren"
	FactionVermin      Faction = "vermin"
)

// State is the live record for one creature.
type State struct {
	ID         ID
	Name       string
	Kind       string
	Faction    Faction
	Pos        grid.Point
	Home       grid.Point
	Health     int
	MaxHealth  int
	Initiative int

	// Abilities lists equipped ability IDs. The decision core never reads
	// this directly; ability components subscribe themselves at spawn.
	Abilities []string

	// LeaderID and ProtectID are non-owning references resolved per turn.
	LeaderID  ID
	ProtectID ID

	// PerceptionRange bounds visibility in tiles. Zero means blind.
	PerceptionRange int
}

// Alive reports whether the actor still takes turns.
func (s *State) Alive() bool {
	return s != nil && s.Health > 0
}
