// Package sim runs the turn-based dungeon simulation: the map, the creature
// roster, the condition manager, and one decision mind per creature.
package sim

import (
	"math/rand"
	"sort"
	"sync"

	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/ai"
	"deepwarren/server/internal/conditions"
	"deepwarren/server/internal/dungeon"
	"deepwarren/server/internal/grid"
	"deepwarren/server/logging"
)

// Engine owns all simulation state. External access goes through Snapshot;
// mutation happens only inside Step, one goroutine at a time.
type Engine struct {
	mu sync.Mutex

	dungeon   *dungeon.Map
	actors    *actor.Registry
	minds     map[actor.ID]*ai.Mind
	conds     *conditions.Manager
	items     *ItemStore
	library   *ai.Library
	rng       *rand.Rand
	publisher logging.Publisher
	turn      uint64

	// acted marks actors that already spent their current turn, enforcing
	// the one-action rule at the executor boundary.
	acted map[actor.ID]bool
}

// NewEngine builds an empty simulation over a map. The seed drives every
// random decision so runs replay exactly.
func NewEngine(m *dungeon.Map, seed int64, publisher logging.Publisher) *Engine {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	e := &Engine{
		dungeon:   m,
		actors:    actor.NewRegistry(),
		minds:     make(map[actor.ID]*ai.Mind),
		items:     NewItemStore(),
		library:   ai.GlobalLibrary,
		rng:       rand.New(rand.NewSource(seed)),
		publisher: publisher,
		acted:     make(map[actor.ID]bool),
	}
	e.conds = conditions.NewManager(e, publisher, e.rng)
	return e
}

// Turn returns the last completed turn number.
func (e *Engine) Turn() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.turn
}

// MindOf resolves the decision mind controlling an actor.
func (e *Engine) MindOf(id actor.ID) (*ai.Mind, bool) {
	mind, ok := e.minds[id]
	return mind, ok
}

// Conditions exposes the condition manager for spawning effects and tests.
func (e *Engine) Conditions() *conditions.Manager {
	return e.conds
}

// Actors exposes the registry for tests and HTTP handlers.
func (e *Engine) Actors() *actor.Registry {
	return e.actors
}

// Items exposes the ground item store.
func (e *Engine) Items() *ItemStore {
	return e.items
}

// Step advances the world one full turn: conditions tick first, then every
// living creature acts once in initiative order.
func (e *Engine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.turn++
	e.conds.Advance(e.turn)
	e.acted = make(map[actor.ID]bool)

	for _, id := range e.initiativeOrder() {
		agent, ok := e.actors.Get(id)
		if !ok || !agent.Alive() {
			continue
		}
		mind, ok := e.minds[id]
		if !ok {
			continue
		}
		ctx := &ai.Context{
			Turn:      e.turn,
			Agent:     agent,
			Terrain:   e.dungeon,
			Paths:     e.dungeon,
			Actors:    e.actors,
			Items:     e.items,
			Exec:      (*executor)(e),
			RNG:       e.rng,
			Publisher: e.publisher,
		}
		mind.RunTurn(ctx)
	}

	e.reapDead()
}

// initiativeOrder snapshots the acting order for this turn: initiative
// descending, ID ascending as the tiebreak.
func (e *Engine) initiativeOrder() []actor.ID {
	states := e.actors.All()
	sort.Slice(states, func(i, j int) bool {
		if states[i].Initiative != states[j].Initiative {
			return states[i].Initiative > states[j].Initiative
		}
		return states[i].ID < states[j].ID
	})
	order := make([]actor.ID, len(states))
	for i, s := range states {
		order[i] = s.ID
	}
	return order
}

// reapDead removes creatures killed this turn along with their minds and
// conditions. Handles held by other minds go stale and resolve to nothing
// next turn, which is exactly how vanished targets are meant to read.
func (e *Engine) reapDead() {
	for _, state := range e.actors.All() {
		if state.Alive() {
			continue
		}
		e.despawnLocked(state)
	}
}

func (e *Engine) earshot(from grid.Point) []*actor.State {
	distances := e.dungeon.FloodDistances(from, shoutRadius)
	var heard []*actor.State
	for _, other := range e.actors.All() {
		if !other.Alive() || other.Pos == from {
			continue
		}
		if _, reachable := distances[other.Pos]; reachable {
			heard = append(heard, other)
		}
	}
	return heard
}
