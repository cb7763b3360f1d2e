package ai

import (
	"math/rand"

	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/grid"
)

// testTerrain is an open rectangle with optional walls and a switch to kill
// line of sight entirely.
type testTerrain struct {
	width, height int
	walls         map[grid.Point]bool
	blind         bool
}

func newTestTerrain(width, height int) *testTerrain {
	return &testTerrain{width: width, height: height, walls: make(map[grid.Point]bool)}
}

func (t *testTerrain) Walkable(p grid.Point) bool {
	if p.X < 0 || p.Y < 0 || p.X >= t.width || p.Y >= t.height {
		return false
	}
	return !t.walls[p]
}

func (t *testTerrain) LineOfSight(a, b grid.Point) bool {
	return !t.blind
}

func (t *testTerrain) FloodDistances(origin grid.Point, maxSteps int) map[grid.Point]int {
	distances := map[grid.Point]int{origin: 0}
	frontier := []grid.Point{origin}
	for steps := 1; steps <= maxSteps; steps++ {
		var next []grid.Point
		for _, p := range frontier {
			for _, dir := range grid.Directions {
				n := p.Add(dir)
				if !t.Walkable(n) {
					continue
				}
				if _, seen := distances[n]; seen {
					continue
				}
				distances[n] = steps
				next = append(next, n)
			}
		}
		frontier = next
	}
	return distances
}

// FindPath walks straight toward the goal one tile at a time, which is
// enough for open test maps.
func (t *testTerrain) FindPath(start, goal grid.Point, blocked map[grid.Point]struct{}) ([]grid.Point, bool) {
	var path []grid.Point
	pos := start
	for pos != goal {
		dir := grid.Toward(pos, goal)
		next := pos.Add(dir)
		if !t.Walkable(next) {
			return nil, false
		}
		if _, hit := blocked[next]; hit && next != goal {
			return nil, false
		}
		path = append(path, next)
		pos = next
		if len(path) > t.width*t.height {
			return nil, false
		}
	}
	return path, true
}

type testRoster struct {
	actors []*actor.State
}

func (r *testRoster) Get(id actor.ID) (*actor.State, bool) {
	for _, a := range r.actors {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

func (r *testRoster) All() []*actor.State {
	return r.actors
}

func (r *testRoster) OccupantAt(p grid.Point) (*actor.State, bool) {
	for _, a := range r.actors {
		if a.Alive() && a.Pos == p {
			return a, true
		}
	}
	return nil, false
}

type testItems struct {
	items map[grid.Point]bool
}

func (i *testItems) ItemAt(p grid.Point) bool {
	return i != nil && i.items[p]
}

// testExec records primitive actions and mutates the acting agent's position
// on successful moves so multi-turn tests see real movement.
type testExec struct {
	terrain *testTerrain
	roster  *testRoster

	moves     int
	attacks   int
	abilities []string
	pickups   int
	waits     int
	shouts    int

	failMoves bool
	lastMove  grid.Direction
	lastHit   actor.ID
}

func (e *testExec) Move(id actor.ID, dir grid.Direction) ActionResult {
	if e.failMoves {
		return ActionResult{OK: false, Message: "blocked"}
	}
	agent, ok := e.roster.Get(id)
	if !ok {
		return ActionResult{OK: false}
	}
	dest := agent.Pos.Add(dir)
	if !e.terrain.Walkable(dest) {
		return ActionResult{OK: false, Message: "blocked"}
	}
	if occupant, occupied := e.roster.OccupantAt(dest); occupied && occupant.ID != id {
		return ActionResult{OK: false, Message: "occupied"}
	}
	agent.Pos = dest
	e.moves++
	e.lastMove = dir
	return ActionResult{OK: true}
}

func (e *testExec) Attack(attacker, target actor.ID) ActionResult {
	e.attacks++
	e.lastHit = target
	return ActionResult{OK: true}
}

func (e *testExec) UseAbility(user actor.ID, ability string, target actor.ID) ActionResult {
	e.abilities = append(e.abilities, ability)
	e.lastHit = target
	return ActionResult{OK: true}
}

func (e *testExec) PickUp(id actor.ID) ActionResult {
	e.pickups++
	return ActionResult{OK: true}
}

func (e *testExec) Wait(id actor.ID) ActionResult {
	e.waits++
	return ActionResult{OK: true}
}

func (e *testExec) Shout(id actor.ID) ActionResult {
	e.shouts++
	return ActionResult{OK: true}
}

// world bundles the stubs behind one context per turn.
type world struct {
	terrain *testTerrain
	roster  *testRoster
	items   *testItems
	exec    *testExec
	rng     *rand.Rand
	turn    uint64
}

func newWorld(actors ...*actor.State) *world {
	terrain := newTestTerrain(20, 20)
	roster := &testRoster{actors: actors}
	return &world{
		terrain: terrain,
		roster:  roster,
		items:   &testItems{items: make(map[grid.Point]bool)},
		exec:    &testExec{terrain: terrain, roster: roster},
		rng:     rand.New(rand.NewSource(1)),
	}
}

// contextFor builds the per-turn facade for one agent, advancing the turn
// counter.
func (w *world) contextFor(agent *actor.State) *Context {
	w.turn++
	return &Context{
		Turn:    w.turn,
		Agent:   agent,
		Terrain: w.terrain,
		Paths:   w.terrain,
		Actors:  w.roster,
		Items:   w.items,
		Exec:    w.exec,
		RNG:     w.rng,
	}
}

func testActor(id string, faction actor.Faction, pos grid.Point) *actor.State {
	return &actor.State{
		ID:              actor.ID(id),
		Name:            id,
		Faction:         faction,
		Pos:             pos,
		Home:            pos,
		Health:          10,
		MaxHealth:       10,
		PerceptionRange: 8,
	}
}
