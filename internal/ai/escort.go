package ai

import (
	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/grid"
)

// escortGoal shadows a protected actor and drills into defense the moment
// either of them sights an enemy.
type escortGoal struct {
	ward actor.ID
}

// Escort builds the bodyguard goal for a protected actor.
func Escort(ward actor.ID) Goal {
	return &escortGoal{ward: ward}
}

func (g *escortGoal) Name() string { return "escort" }

func (g *escortGoal) Done(ctx *Context) bool {
	_, alive := ctx.ResolveLiving(g.ward)
	return !alive
}

func (g *escortGoal) Step(ctx *Context) StepResult {
	ward, ok := ctx.ResolveLiving(g.ward)
	if !ok {
		return StepFailed
	}
	if threatened(ctx, ward) {
		return ctx.Push(Defend(g.ward))
	}
	distance := ctx.Profile().Follow.Distance
	if grid.Chebyshev(ctx.Agent.Pos, ward.Pos) > distance {
		return ctx.Push(ApproachActor(g.ward, distance))
	}
	res := ctx.Exec.Wait(ctx.Agent.ID)
	if !res.OK {
		return StepFailed
	}
	return StepActed
}

// threatened reports whether the agent or the ward perceives any enemy.
func threatened(ctx *Context, ward *actor.State) bool {
	if len(ctx.VisibleEnemies(ctx.Agent)) > 0 {
		return true
	}
	return len(ctx.VisibleEnemies(ward)) > 0
}

// defendGoal fights on behalf of a ward, preferring enemies the ward can see
// over enemies only the defender can see. It finishes when neither of them
// perceives a threat.
type defendGoal struct {
	ward actor.ID
}

// Defend builds the active-defense goal for a protected actor.
func Defend(ward actor.ID) Goal {
	return &defendGoal{ward: ward}
}

func (g *defendGoal) Name() string { return "defend" }

func (g *defendGoal) Done(ctx *Context) bool {
	ward, ok := ctx.ResolveLiving(g.ward)
	if !ok {
		return true
	}
	return !threatened(ctx, ward)
}

func (g *defendGoal) Step(ctx *Context) StepResult {
	ward, ok := ctx.ResolveLiving(g.ward)
	if !ok {
		return StepFailed
	}
	if wardThreats := ctx.VisibleEnemies(ward); len(wardThreats) > 0 {
		return ctx.Push(KillTarget(wardThreats[0].ID))
	}
	if ownThreats := ctx.VisibleEnemies(ctx.Agent); len(ownThreats) > 0 {
		return ctx.Push(KillTarget(ownThreats[0].ID))
	}
	return StepFailed
}
