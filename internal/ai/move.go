package ai

import (
	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/grid"
)

// approachGoal closes distance to a fixed tile or a tracked actor. It
// recomputes a full path only periodically or when its step queue runs dry,
// and otherwise pushes one atomic move goal per turn.
type approachGoal struct {
	targetID  actor.ID
	targetPos grid.Point
	within    int
	// sightOnly freezes the tracked position while the target is out of
	// view, so pursuit heads for the last seen tile instead of reading the
	// registry omnisciently.
	sightOnly bool

	path      []grid.Point
	plannedAt uint64
	expected  grid.Point
	hasExpect bool
}

// ApproachPoint builds a goal that finishes within the given Chebyshev
// distance of a fixed tile.
func ApproachPoint(p grid.Point, within int) Goal {
	if within < 0 {
		within = 0
	}
	return &approachGoal{targetPos: p, within: within}
}

// ApproachActor builds a goal that tracks a moving actor, refreshing the
// destination from the registry every evaluation.
func ApproachActor(id actor.ID, within int) Goal {
	if within < 1 {
		within = 1
	}
	return &approachGoal{targetID: id, within: within}
}

// PursueActor is ApproachActor with sight rules: while the target is out of
// view the last seen position stands in for it.
func PursueActor(id actor.ID, within int) Goal {
	if within < 1 {
		within = 1
	}
	return &approachGoal{targetID: id, within: within, sightOnly: true}
}

func (g *approachGoal) Name() string { return "approach" }

func (g *approachGoal) destination(ctx *Context) (grid.Point, bool) {
	if g.targetID == "" {
		return g.targetPos, true
	}
	target, ok := ctx.ResolveLiving(g.targetID)
	if !ok {
		return grid.Point{}, false
	}
	if g.sightOnly && !ctx.CanSee(ctx.Agent, target.Pos) {
		return g.targetPos, true
	}
	g.targetPos = target.Pos
	return target.Pos, true
}

func (g *approachGoal) Done(ctx *Context) bool {
	dest, ok := g.destination(ctx)
	if !ok {
		// Let Step fail so the parent replans; a vanished target is not
		// arrival.
		return false
	}
	return grid.Chebyshev(ctx.Agent.Pos, dest) <= g.within
}

func (g *approachGoal) Step(ctx *Context) StepResult {
	dest, ok := g.destination(ctx)
	if !ok {
		return StepFailed
	}

	// A blocked atomic move unwinds to here without advancing the agent;
	// detect the stall and force a fresh path instead of retrying blindly.
	if g.hasExpect && ctx.Agent.Pos != g.expected {
		g.path = nil
	}
	g.hasExpect = false

	repath := uint64(ctx.Profile().Approach.RepathInterval)
	if len(g.path) == 0 || ctx.Turn-g.plannedAt >= repath {
		blocked := ctx.BlockedTiles(ctx.Agent.ID, g.targetID)
		path, found := ctx.Paths.FindPath(ctx.Agent.Pos, dest, blocked)
		if !found || len(path) == 0 {
			return StepFailed
		}
		g.path = path
		g.plannedAt = ctx.Turn
	}

	next := g.path[0]
	g.path = g.path[1:]
	dir := grid.Toward(ctx.Agent.Pos, next)
	if dir.IsZero() {
		return StepFailed
	}
	g.expected = next
	g.hasExpect = true
	return ctx.Push(MoveStep(dir))
}

// stepGoal performs exactly one primitive move. It finishes immediately on
// success and fails on a blocked or invalid move, which unwinds to the
// approach goal that pushed it.
type stepGoal struct {
	dir   grid.Direction
	moved bool
}

// MoveStep builds the atomic move-one-tile goal.
func MoveStep(dir grid.Direction) Goal {
	return &stepGoal{dir: dir}
}

func (g *stepGoal) Name() string { return "step" }

func (g *stepGoal) Done(*Context) bool { return g.moved }

func (g *stepGoal) Step(ctx *Context) StepResult {
	if g.dir.IsZero() {
		return StepFailed
	}
	res := ctx.Exec.Move(ctx.Agent.ID, g.dir)
	if !res.OK {
		return StepFailed
	}
	g.moved = true
	return StepActed
}
