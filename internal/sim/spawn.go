package sim

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"deepwarren/server/internal/abilities"
	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/ai"
	"deepwarren/server/internal/grid"
	loglife "deepwarren/server/logging/lifecycle"
)

// template is the authored species sheet a spawn starts from.
type template struct {
	Name       string
	Faction    actor.Faction
	MaxHealth  int
	Initiative int
	Perception int
	Abilities  []string
	// Wanders subscribes the ad hoc patrol duty so the creature roams its
	// home area when idle.
	Wanders bool
	// FleeBelowPercent subscribes the skittish defensive source at this
	// health threshold. Zero means the creature fights to the death.
	FleeBelowPercent int
	// YellsWhileFleeing makes the flee call nearby allies.
	YellsWhileFleeing bool
}

var templates = map[string]template{
	"goblin": {
		Name:       "goblin",
		Faction:    actor.FactionWarren,
		MaxHealth:  12,
		Initiative: 5,
		Perception: 7,
		Abilities:  []string{"bite", "club", "sling", "heal-draught"},
		Wanders:    true,

		FleeBelowPercent:  40,
		YellsWhileFleeing: true,
	},
	"rat": {
		Name:       "giant rat",
		Faction:    actor.FactionVermin,
		MaxHealth:  6,
		Initiative: 7,
		Perception: 5,
		Abilities:  []string{"bite", "venom-spit"},
		Wanders:    true,

		FleeBelowPercent: 60,
	},
	"warden": {
		Name:       "warren warden",
		Faction:    actor.FactionWarren,
		MaxHealth:  20,
		Initiative: 3,
		Perception: 8,
		Abilities:  []string{"club", "oil-flask"},
	},
	"adventurer": {
		Name:       "adventurer",
		Faction:    actor.FactionAdventurers,
		MaxHealth:  15,
		Initiative: 6,
		Perception: 8,
		Abilities:  []string{"claw", "sling", "heal-draught"},
		Wanders:    true,
	},
}

// Kinds lists the spawnable creature kinds.
func Kinds() []string {
	kinds := make([]string, 0, len(templates))
	for kind := range templates {
		kinds = append(kinds, kind)
	}
	return kinds
}

// Spawn places one creature of the given kind near the requested tile and
// wires up its mind and candidate sources. The actual tile is the nearest
// free one.
func (e *Engine) Spawn(kind string, at grid.Point) (*actor.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spawnLocked(kind, at)
}

func (e *Engine) spawnLocked(kind string, at grid.Point) (*actor.State, error) {
	tpl, ok := templates[kind]
	if !ok {
		return nil, fmt.Errorf("unknown creature kind %q", kind)
	}
	pos, ok := e.freeTileNear(at)
	if !ok {
		return nil, fmt.Errorf("no free tile near (%d,%d)", at.X, at.Y)
	}

	state := &actor.State{
		ID:              actor.ID(uuid.NewString()),
		Name:            tpl.Name,
		Kind:            kind,
		Faction:         tpl.Faction,
		Pos:             pos,
		Home:            pos,
		Health:          tpl.MaxHealth,
		MaxHealth:       tpl.MaxHealth,
		Initiative:      tpl.Initiative,
		Abilities:       tpl.Abilities,
		PerceptionRange: tpl.Perception,
	}
	e.actors.Add(state)

	mind := ai.NewMind(state.ID, e.library.ProfileForKind(kind), nil)
	mind.Subscribe(abilities.Innate())
	mind.Subscribe(abilities.NewSource(tpl.Abilities))
	if tpl.Wanders {
		mind.Subscribe(abilities.WanderDuty())
	}
	if tpl.FleeBelowPercent > 0 {
		mind.Subscribe(abilities.Skittish(tpl.FleeBelowPercent, tpl.YellsWhileFleeing))
	}
	e.minds[state.ID] = mind

	loglife.Spawned(context.Background(), e.publisher, e.turn, creatureRef(state),
		loglife.Payload{Kind: kind, Faction: string(tpl.Faction), X: pos.X, Y: pos.Y})
	return state, nil
}

// SpawnPack places a leader and followers of one kind around a tile. The
// followers reference the leader; when it dies they fall back to idle.
func (e *Engine) SpawnPack(kind string, count int, at grid.Point) ([]*actor.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var pack []*actor.State
	for i := 0; i < count; i++ {
		state, err := e.spawnLocked(kind, at)
		if err != nil {
			return pack, err
		}
		if len(pack) > 0 {
			state.LeaderID = pack[0].ID
		}
		pack = append(pack, state)
	}
	return pack, nil
}

// AssignPatrol replaces a creature's idle duty with a scripted route.
func (e *Engine) AssignPatrol(id actor.ID, route ai.Route, leads bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	mind, ok := e.minds[id]
	if !ok {
		return false
	}
	if leads {
		mind.Subscribe(abilities.LeadDuty(route))
	} else {
		mind.Subscribe(abilities.PatrolDuty(route))
	}
	return true
}

// AssignGuard sets a creature to escort a protected actor.
func (e *Engine) AssignGuard(guard, ward actor.ID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.actors.Get(guard)
	if !ok {
		return false
	}
	state.ProtectID = ward
	return true
}

// Despawn removes a creature and everything referencing it.
func (e *Engine) Despawn(id actor.ID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.actors.Get(id)
	if !ok {
		return
	}
	e.despawnLocked(state)
}

func (e *Engine) despawnLocked(state *actor.State) {
	e.actors.Remove(state.ID)
	delete(e.minds, state.ID)
	e.conds.Drop(state.ID)
	e.items.Drop(state.ID)
	loglife.Despawned(context.Background(), e.publisher, e.turn, creatureRef(state),
		loglife.Payload{Kind: state.Kind, Faction: string(state.Faction), X: state.Pos.X, Y: state.Pos.Y})
}

// freeTileNear searches outward from a tile for the nearest free one.
func (e *Engine) freeTileNear(at grid.Point) (grid.Point, bool) {
	if e.tileFree(at) {
		return at, true
	}
	for radius := 1; radius <= 5; radius++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if abs(dx) != radius && abs(dy) != radius {
					continue
				}
				candidate := grid.Point{X: at.X + dx, Y: at.Y + dy}
				if e.tileFree(candidate) {
					return candidate, true
				}
			}
		}
	}
	return grid.Point{}, false
}

func (e *Engine) tileFree(p grid.Point) bool {
	if !e.dungeon.Walkable(p) {
		return false
	}
	_, occupied := e.actors.OccupantAt(p)
	return !occupied
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
