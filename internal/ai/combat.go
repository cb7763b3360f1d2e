package ai

import (
	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/grid"
)

// combatCategories is the strict priority order of candidate tiers a combat
// step consults before falling back to movement.
var combatCategories = [4]Category{CategoryMelee, CategoryDefensive, CategoryRanged, CategoryItem}

// killGoal pursues a target until it is gone or dead. Each step consults the
// candidate tiers in priority order; the first non-empty tier claims the
// turn via weighted random selection. Only when every tier is empty does the
// goal push movement toward the target.
type killGoal struct {
	target actor.ID

	lastSeen grid.Point
	seen     bool
	searched bool
}

// KillTarget builds the top-level combat engagement goal.
func KillTarget(target actor.ID) Goal {
	return &killGoal{target: target}
}

func (g *killGoal) Name() string { return "kill" }

func (g *killGoal) Done(ctx *Context) bool {
	_, alive := ctx.ResolveLiving(g.target)
	return !alive
}

func (g *killGoal) Step(ctx *Context) StepResult {
	target, ok := ctx.ResolveLiving(g.target)
	if !ok {
		return StepFailed
	}

	// Pursuit runs on sight, not registry omniscience. Losing contact buys
	// one sweep of the last known position; losing it again ends the hunt.
	if !ctx.CanSee(ctx.Agent, target.Pos) {
		if !g.seen {
			return StepFailed
		}
		if g.searched {
			return StepFailed
		}
		g.searched = true
		return ctx.Push(Search(g.lastSeen))
	}
	g.seen = true
	g.searched = false
	g.lastSeen = target.Pos

	adjacent := grid.Adjacent(ctx.Agent.Pos, target.Pos)
	for _, category := range combatCategories {
		if category == CategoryMelee && !adjacent {
			continue
		}
		req := NewRequest(category, g.target)
		ctx.Mind().Broadcast(ctx, req)
		if req.Handled() {
			return req.Outcome()
		}
		candidates := req.Candidates()
		if len(candidates) == 0 {
			continue
		}
		chosen, ok := pickWeighted(ctx.RNG, candidates)
		if !ok {
			continue
		}
		return chosen.Invoke(ctx)
	}

	return ctx.Push(PursueActor(g.target, 1))
}
