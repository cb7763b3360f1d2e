package ai

import "deepwarren/server/internal/grid"

// idleGoal is the permanent root fallback. It never finishes; every turn it
// asks the candidate bus for idle work, then falls through a fixed ladder of
// default behaviors ending in a plain wait.
type idleGoal struct{}

// IdleFallback builds the root fallback goal.
func IdleFallback() Goal {
	return idleGoal{}
}

func (idleGoal) Name() string { return "idle" }

func (idleGoal) Done(ctx *Context) bool { return false }

func (idleGoal) Step(ctx *Context) StepResult {
	if result, ok := idleBroadcast(ctx); ok {
		return result
	}

	agent := ctx.Agent
	if agent.ProtectID != "" {
		if _, alive := ctx.ResolveLiving(agent.ProtectID); alive {
			return ctx.Push(Escort(agent.ProtectID))
		}
	}
	if enemies := ctx.VisibleEnemies(agent); len(enemies) > 0 {
		return ctx.Push(KillTarget(enemies[0].ID))
	}
	// Combat outranks formation: FollowLeader refuses to hold formation
	// while an enemy is in sight, so following only claims quiet turns.
	if agent.LeaderID != "" && agent.LeaderID != agent.ID {
		if _, alive := ctx.ResolveLiving(agent.LeaderID); alive {
			return ctx.Push(FollowLeader(agent.LeaderID))
		}
	}
	if ctx.Items != nil {
		if ctx.Items.ItemAt(agent.Pos) {
			res := ctx.Exec.PickUp(agent.ID)
			if res.OK {
				return StepActed
			}
		} else if tile, found := adjacentItem(ctx); found {
			return ctx.Push(ApproachPoint(tile, 0))
		}
	}
	if grid.Chebyshev(agent.Pos, agent.Home) > ctx.Profile().Patrol.WanderRange {
		return ctx.Push(ReturnHome())
	}
	if ctx.Chance(ctx.Profile().Wander.ChancePercent) {
		return ctx.Push(Wander())
	}

	res := ctx.Exec.Wait(agent.ID)
	if !res.OK {
		return StepFailed
	}
	return StepActed
}

// idleBroadcast gives subscribers first claim on an idle turn. A subscriber
// either commits directly and marks the request handled, or contributes
// weighted candidates for the goal to draw from.
func idleBroadcast(ctx *Context) (StepResult, bool) {
	mind := ctx.Mind()
	if mind == nil {
		return StepFailed, false
	}
	req := NewRequest(CategoryIdle, "")
	mind.Broadcast(ctx, req)
	if req.Handled() {
		return req.Outcome(), true
	}
	if candidate, ok := pickWeighted(ctx.RNG, req.Candidates()); ok {
		return candidate.Invoke(ctx), true
	}
	return StepFailed, false
}

// adjacentItem scans the agent's ring for a ground item.
func adjacentItem(ctx *Context) (grid.Point, bool) {
	for _, dir := range grid.Directions {
		tile := ctx.Agent.Pos.Add(dir)
		if ctx.Items.ItemAt(tile) && ctx.Terrain.Walkable(tile) {
			return tile, true
		}
	}
	return grid.Point{}, false
}
