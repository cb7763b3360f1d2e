package ai

import (
	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/grid"
)

// fleeGoal runs from visible enemies, preferring escape directions that also
// lead toward allies. It finishes once the agent has been out of danger for
// the profile's minimum number of turns.
type fleeGoal struct {
	started bool
	since   uint64
}

// Flee builds the escape goal.
func Flee() Goal {
	return &fleeGoal{}
}

func (g *fleeGoal) Name() string { return "flee" }

func (g *fleeGoal) Done(ctx *Context) bool {
	if !g.started {
		return false
	}
	tuning := ctx.Profile().Flee
	if ctx.Turn < g.since+uint64(tuning.SafetyMin) {
		return false
	}
	enemies := ctx.VisibleEnemies(ctx.Agent)
	if len(enemies) == 0 {
		return true
	}
	return grid.Chebyshev(ctx.Agent.Pos, enemies[0].Pos) >= tuning.SafeDistance
}

func (g *fleeGoal) Step(ctx *Context) StepResult {
	if !g.started {
		g.started = true
		g.since = ctx.Turn
	}
	enemies := ctx.VisibleEnemies(ctx.Agent)
	if len(enemies) == 0 {
		// Out of sight but inside the safety window: hold still rather
		// than blunder back into view.
		res := ctx.Exec.Wait(ctx.Agent.ID)
		if !res.OK {
			return StepFailed
		}
		return StepActed
	}
	g.since = ctx.Turn
	dir, ok := fleeDirection(ctx, enemies[0])
	if !ok {
		// Cornered.
		return StepFailed
	}
	return ctx.Push(MoveStep(dir))
}

// fleeDirection picks the escape step: toward a reachable ally when that
// step keeps the threat at least MinThreatDistance away, otherwise directly
// away from the threat with widening rotations, and as a last resort any
// step that does not close on the threat.
func fleeDirection(ctx *Context, threat *actor.State) (grid.Direction, bool) {
	away := grid.Away(ctx.Agent.Pos, threat.Pos)
	candidates := make([]grid.Direction, 0, len(grid.Directions)+1)

	tuning := ctx.Profile().Flee
	if allies := ctx.VisibleAllies(ctx.Agent, tuning.AllyFloodRange); len(allies) > 0 {
		nearest := nearestAlly(ctx.Agent, allies)
		toward := grid.Toward(ctx.Agent.Pos, nearest.Pos)
		dest := ctx.Agent.Pos.Add(toward)
		if grid.Chebyshev(dest, threat.Pos) >= tuning.MinThreatDistance {
			candidates = append(candidates, toward)
		}
	}
	candidates = append(candidates,
		away,
		away.RotateCW(),
		away.RotateCCW(),
		away.RotateCW().RotateCW(),
		away.RotateCCW().RotateCCW(),
	)
	current := grid.Chebyshev(ctx.Agent.Pos, threat.Pos)
	for _, dir := range grid.Directions {
		if grid.Chebyshev(ctx.Agent.Pos.Add(dir), threat.Pos) >= current {
			candidates = append(candidates, dir)
		}
	}

	seen := make(map[grid.Direction]struct{}, len(candidates))
	for _, dir := range candidates {
		if dir.IsZero() {
			continue
		}
		if _, dup := seen[dir]; dup {
			continue
		}
		seen[dir] = struct{}{}
		if ctx.TileFree(ctx.Agent.Pos.Add(dir)) {
			return dir, true
		}
	}
	return grid.None, false
}

func nearestAlly(viewer *actor.State, allies []*actor.State) *actor.State {
	best := allies[0]
	bestDist := grid.Chebyshev(viewer.Pos, best.Pos)
	for _, ally := range allies[1:] {
		if d := grid.Chebyshev(viewer.Pos, ally.Pos); d < bestDist {
			best, bestDist = ally, d
		}
	}
	return best
}

// fleeYellGoal is a flee that periodically shouts for help while running.
type fleeYellGoal struct {
	inner    *fleeGoal
	lastYell uint64
	yelled   bool
}

// FleeYelling builds the escape goal that calls allies while fleeing.
func FleeYelling() Goal {
	return &fleeYellGoal{inner: &fleeGoal{}}
}

func (g *fleeYellGoal) Name() string { return "flee-yelling" }

func (g *fleeYellGoal) Done(ctx *Context) bool {
	return g.inner.Done(ctx)
}

func (g *fleeYellGoal) Step(ctx *Context) StepResult {
	interval := ctx.Profile().Flee.YellInterval
	if interval > 0 && (!g.yelled || ctx.Turn >= g.lastYell+uint64(interval)) {
		res := ctx.Exec.Shout(ctx.Agent.ID)
		if res.OK {
			g.yelled = true
			g.lastYell = ctx.Turn
			return StepActed
		}
	}
	return g.inner.Step(ctx)
}

// searchGoal sweeps around the last known position of a lost quarry. Its
// priority starts at the profile base and decays linearly to zero over the
// search budget; the sweep radius shrinks with it, so a fading search hugs
// the last known position before giving up.
type searchGoal struct {
	lastSeen grid.Point
	started  bool
	since    uint64
}

// Search builds the lost-quarry sweep around a last known position.
func Search(lastSeen grid.Point) Goal {
	return &searchGoal{lastSeen: lastSeen}
}

func (g *searchGoal) Name() string { return "search" }

// priority returns the remaining search drive, linearly decayed.
func (g *searchGoal) priority(ctx *Context) int {
	tuning := ctx.Profile().Search
	if !g.started {
		return tuning.BasePriority
	}
	elapsed := int(ctx.Turn - g.since)
	if tuning.Turns <= 0 {
		return 0
	}
	return tuning.BasePriority - elapsed*tuning.BasePriority/tuning.Turns
}

func (g *searchGoal) Done(ctx *Context) bool {
	if len(ctx.VisibleEnemies(ctx.Agent)) > 0 {
		return true
	}
	if !g.started {
		return false
	}
	return g.priority(ctx) <= 0
}

func (g *searchGoal) Step(ctx *Context) StepResult {
	if !g.started {
		g.started = true
		g.since = ctx.Turn
	}
	if grid.Chebyshev(ctx.Agent.Pos, g.lastSeen) > 1 {
		return ctx.Push(ApproachPoint(g.lastSeen, 1))
	}
	tuning := ctx.Profile().Search
	radius := tuning.Radius
	if tuning.BasePriority > 0 {
		radius = tuning.Radius * g.priority(ctx) / tuning.BasePriority
	}
	if radius < 1 {
		radius = 1
	}
	if dest, ok := sampleDestination(ctx, g.lastSeen, radius); ok {
		return ctx.Push(ApproachPoint(dest, 0))
	}
	res := ctx.Exec.Wait(ctx.Agent.ID)
	if !res.OK {
		return StepFailed
	}
	return StepActed
}

// returnHomeGoal walks the agent back to its home tile, aborting the moment
// an enemy is sighted.
type returnHomeGoal struct{}

// ReturnHome builds the homeward goal.
func ReturnHome() Goal {
	return returnHomeGoal{}
}

func (returnHomeGoal) Name() string { return "return-home" }

func (returnHomeGoal) Done(ctx *Context) bool {
	return grid.Chebyshev(ctx.Agent.Pos, ctx.Agent.Home) <= ctx.Profile().Patrol.Tolerance
}

func (returnHomeGoal) Step(ctx *Context) StepResult {
	if enemySighted(ctx) {
		return StepFailed
	}
	return ctx.Push(ApproachPoint(ctx.Agent.Home, ctx.Profile().Patrol.Tolerance))
}

// wanderGoal drifts to one random nearby tile and finishes.
type wanderGoal struct {
	dest    grid.Point
	hasDest bool
}

// Wander builds the one-shot drift goal.
func Wander() Goal {
	return &wanderGoal{}
}

func (g *wanderGoal) Name() string { return "wander" }

func (g *wanderGoal) Done(ctx *Context) bool {
	return g.hasDest && ctx.Agent.Pos == g.dest
}

func (g *wanderGoal) Step(ctx *Context) StepResult {
	if !g.hasDest {
		dest, ok := sampleDestination(ctx, ctx.Agent.Pos, ctx.Profile().Wander.Radius)
		if !ok {
			return StepFailed
		}
		g.dest = dest
		g.hasDest = true
	}
	return ctx.Push(ApproachPoint(g.dest, 0))
}
