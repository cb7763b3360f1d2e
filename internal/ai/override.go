package ai

import (
	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/grid"
)

// Override goals are installed via Mind.ForceOverride while a status
// condition holds an agent. They never finish on their own; the condition's
// expiry restores the default stack. They also never fail, since failure
// would unwind an override that only the condition may lift.

// skipTurnGoal spends every turn waiting.
type skipTurnGoal struct {
	name string
}

// SkipTurn builds a generic do-nothing override.
func SkipTurn() Goal {
	return &skipTurnGoal{name: "skip-turn"}
}

// Asleep builds the sleep override. Waking on damage is handled by the
// condition, not the goal.
func Asleep() Goal {
	return &skipTurnGoal{name: "asleep"}
}

func (g *skipTurnGoal) Name() string { return g.name }

func (g *skipTurnGoal) Done(ctx *Context) bool { return false }

func (g *skipTurnGoal) Step(ctx *Context) StepResult {
	ctx.Exec.Wait(ctx.Agent.ID)
	return StepActed
}

// stunnedGoal flips a coin each turn: stand frozen, or stagger one random
// step.
type stunnedGoal struct{}

// Stunned builds the stun override.
func Stunned() Goal {
	return stunnedGoal{}
}

func (stunnedGoal) Name() string { return "stunned" }

func (stunnedGoal) Done(ctx *Context) bool { return false }

func (stunnedGoal) Step(ctx *Context) StepResult {
	if ctx.Chance(50) {
		if dir, ok := randomFreeStep(ctx); ok {
			res := ctx.Exec.Move(ctx.Agent.ID, dir)
			if res.OK {
				return StepActed
			}
		}
	}
	ctx.Exec.Wait(ctx.Agent.ID)
	return StepActed
}

// fearfulGoal runs from the actor that inflicted the fear, and paces
// nervously once that actor is gone.
type fearfulGoal struct {
	source actor.ID
}

// Fearful builds the fear override. The victim flees the given actor for as
// long as it stays alive.
func Fearful(source actor.ID) Goal {
	return fearfulGoal{source: source}
}

func (fearfulGoal) Name() string { return "fearful" }

func (fearfulGoal) Done(ctx *Context) bool { return false }

func (g fearfulGoal) Step(ctx *Context) StepResult {
	if threat, alive := ctx.ResolveLiving(g.source); alive {
		if dir, ok := fleeDirection(ctx, threat); ok {
			res := ctx.Exec.Move(ctx.Agent.ID, dir)
			if res.OK {
				return StepActed
			}
		}
	} else if dir, ok := randomFreeStep(ctx); ok {
		res := ctx.Exec.Move(ctx.Agent.ID, dir)
		if res.OK {
			return StepActed
		}
	}
	ctx.Exec.Wait(ctx.Agent.ID)
	return StepActed
}

// confusedGoal lurches one random step each turn with no regard for threats.
type confusedGoal struct{}

// Confused builds the confusion override.
func Confused() Goal {
	return confusedGoal{}
}

func (confusedGoal) Name() string { return "confused" }

func (confusedGoal) Done(ctx *Context) bool { return false }

func (confusedGoal) Step(ctx *Context) StepResult {
	if dir, ok := randomFreeStep(ctx); ok {
		res := ctx.Exec.Move(ctx.Agent.ID, dir)
		if res.OK {
			return StepActed
		}
	}
	ctx.Exec.Wait(ctx.Agent.ID)
	return StepActed
}

// randomFreeStep picks a uniformly random free adjacent tile, if any.
func randomFreeStep(ctx *Context) (grid.Direction, bool) {
	if ctx.RNG == nil {
		return grid.None, false
	}
	var free []grid.Direction
	for _, dir := range grid.Directions {
		if ctx.TileFree(ctx.Agent.Pos.Add(dir)) {
			free = append(free, dir)
		}
	}
	if len(free) == 0 {
		return grid.None, false
	}
	return free[ctx.RNG.Intn(len(free))], true
}
