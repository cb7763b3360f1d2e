package ai

import (
	"math/rand"
	"sort"

	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/grid"
	"deepwarren/server/logging"
)

// Terrain exposes the map geometry queries the decision core needs.
type Terrain interface {
	Walkable(p grid.Point) bool
	LineOfSight(a, b grid.Point) bool
	FloodDistances(origin grid.Point, maxSteps int) map[grid.Point]int
}

// Pathfinder produces ordered tile sequences. Tiles in blocked are treated
// as walls except for the goal tile.
type Pathfinder interface {
	FindPath(start, goal grid.Point, blocked map[grid.Point]struct{}) ([]grid.Point, bool)
}

// Roster resolves actor handles. Results are valid for the current turn
// only.
type Roster interface {
	Get(id actor.ID) (*actor.State, bool)
	All() []*actor.State
	OccupantAt(p grid.Point) (*actor.State, bool)
}

// Items answers whether a ground item sits on a tile.
type Items interface {
	ItemAt(p grid.Point) bool
}

// ActionResult reports the outcome of one primitive action together with a
// display message for observers.
type ActionResult struct {
	OK      bool
	Message string
}

// Executor resolves primitive actions. Exactly one successful call ends an
// agent's turn.
type Executor interface {
	Move(id actor.ID, dir grid.Direction) ActionResult
	Attack(attacker, target actor.ID) ActionResult
	UseAbility(user actor.ID, ability string, target actor.ID) ActionResult
	PickUp(id actor.ID) ActionResult
	Wait(id actor.ID) ActionResult
	Shout(id actor.ID) ActionResult
}

// Context is the per-turn facade handed to every goal step. It is rebuilt
// each turn and must not be retained; mutation capability is limited to the
// owning agent's stack via Push.
type Context struct {
	Turn      uint64
	Agent     *actor.State
	Terrain   Terrain
	Paths     Pathfinder
	Actors    Roster
	Items     Items
	Exec      Executor
	RNG       *rand.Rand
	Publisher logging.Publisher

	mind    *Mind
	current Goal
	pushed  bool
}

// Push places a sub-goal above the currently stepping goal and records that
// goal as the sub-goal's unwind target. Only the first push per step takes
// effect. It returns StepPushed so steps can end with "return ctx.Push(g)".
func (ctx *Context) Push(g Goal) StepResult {
	if ctx == nil || ctx.mind == nil || g == nil {
		return StepFailed
	}
	if ctx.pushed {
		return StepPushed
	}
	ctx.pushed = true
	ctx.mind.stack.push(g, ctx.current)
	return StepPushed
}

// Profile returns the behavior tuning for the agent's creature kind.
func (ctx *Context) Profile() *Profile {
	if ctx == nil || ctx.mind == nil || ctx.mind.profile == nil {
		return defaultProfile()
	}
	return ctx.mind.profile
}

// Mind returns the stack owner's mind for broadcasts.
func (ctx *Context) Mind() *Mind {
	if ctx == nil {
		return nil
	}
	return ctx.mind
}

// CanSee reports whether viewer perceives the target tile: within perception
// range with clear line of sight.
func (ctx *Context) CanSee(viewer *actor.State, target grid.Point) bool {
	if ctx == nil || viewer == nil || ctx.Terrain == nil {
		return false
	}
	if viewer.PerceptionRange <= 0 {
		return false
	}
	if grid.Chebyshev(viewer.Pos, target) > viewer.PerceptionRange {
		return false
	}
	return ctx.Terrain.LineOfSight(viewer.Pos, target)
}

// VisibleEnemies returns the living hostile actors the viewer perceives,
// nearest first with ID as the tiebreak so decisions replay deterministically.
func (ctx *Context) VisibleEnemies(viewer *actor.State) []*actor.State {
	if ctx == nil || viewer == nil || ctx.Actors == nil {
		return nil
	}
	var enemies []*actor.State
	for _, other := range ctx.Actors.All() {
		if !other.Alive() || !actor.Hostile(viewer, other) {
			continue
		}
		if !ctx.CanSee(viewer, other.Pos) {
			continue
		}
		enemies = append(enemies, other)
	}
	sort.Slice(enemies, func(i, j int) bool {
		di := grid.Chebyshev(viewer.Pos, enemies[i].Pos)
		dj := grid.Chebyshev(viewer.Pos, enemies[j].Pos)
		if di != dj {
			return di < dj
		}
		return enemies[i].ID < enemies[j].ID
	})
	return enemies
}

// VisibleAllies returns the living same-faction actors within the given
// flood-distance range of the viewer, walk distance not straight line.
func (ctx *Context) VisibleAllies(viewer *actor.State, floodRange int) []*actor.State {
	if ctx == nil || viewer == nil || ctx.Actors == nil || ctx.Terrain == nil {
		return nil
	}
	distances := ctx.Terrain.FloodDistances(viewer.Pos, floodRange)
	if len(distances) == 0 {
		return nil
	}
	var allies []*actor.State
	for _, other := range ctx.Actors.All() {
		if !other.Alive() || !actor.Allied(viewer, other) {
			continue
		}
		if _, reachable := distances[other.Pos]; reachable {
			allies = append(allies, other)
		}
	}
	sort.Slice(allies, func(i, j int) bool { return allies[i].ID < allies[j].ID })
	return allies
}

// ResolveLiving resolves a handle to a living actor.
func (ctx *Context) ResolveLiving(id actor.ID) (*actor.State, bool) {
	if ctx == nil || ctx.Actors == nil || id == "" {
		return nil, false
	}
	state, ok := ctx.Actors.Get(id)
	if !ok || !state.Alive() {
		return nil, false
	}
	return state, true
}

// TileFree reports whether a tile is walkable and unoccupied.
func (ctx *Context) TileFree(p grid.Point) bool {
	if ctx == nil || ctx.Terrain == nil || !ctx.Terrain.Walkable(p) {
		return false
	}
	if ctx.Actors != nil {
		if _, occupied := ctx.Actors.OccupantAt(p); occupied {
			return false
		}
	}
	return true
}

// BlockedTiles returns the tiles occupied by living actors, excluding the
// listed IDs. Used to keep paths out of occupied squares.
func (ctx *Context) BlockedTiles(except ...actor.ID) map[grid.Point]struct{} {
	if ctx == nil || ctx.Actors == nil {
		return nil
	}
	blocked := make(map[grid.Point]struct{})
	for _, other := range ctx.Actors.All() {
		if !other.Alive() {
			continue
		}
		skip := false
		for _, id := range except {
			if other.ID == id {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		blocked[other.Pos] = struct{}{}
	}
	return blocked
}

// Chance rolls an n-percent chance on the turn RNG.
func (ctx *Context) Chance(percent int) bool {
	if ctx == nil || ctx.RNG == nil || percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return ctx.RNG.Intn(100) < percent
}
