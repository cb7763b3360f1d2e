package ai

import (
	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/grid"
)

// Route is an ordered waypoint list from map content. A cycling route never
// exhausts; a one-shot route finishes when its last waypoint is reached.
type Route struct {
	Waypoints []grid.Point
	Cycle     bool
}

// enemySighted is the shared patrol abort guard: every patrol variant cedes
// to combat the instant any enemy becomes visible.
func enemySighted(ctx *Context) bool {
	return len(ctx.VisibleEnemies(ctx.Agent)) > 0
}

// wanderPatrolGoal is the ad hoc patrol: one randomly sampled distant
// destination per invocation.
type wanderPatrolGoal struct {
	dest    grid.Point
	hasDest bool
}

// PatrolWander builds the ad hoc patrol goal.
func PatrolWander() Goal {
	return &wanderPatrolGoal{}
}

func (g *wanderPatrolGoal) Name() string { return "patrol-wander" }

func (g *wanderPatrolGoal) Done(ctx *Context) bool {
	if !g.hasDest {
		return false
	}
	return grid.Chebyshev(ctx.Agent.Pos, g.dest) <= ctx.Profile().Patrol.Tolerance
}

func (g *wanderPatrolGoal) Step(ctx *Context) StepResult {
	if enemySighted(ctx) {
		return StepFailed
	}
	if !g.hasDest {
		dest, ok := sampleDestination(ctx, ctx.Agent.Home, ctx.Profile().Patrol.WanderRange)
		if !ok {
			return StepFailed
		}
		g.dest = dest
		g.hasDest = true
	}
	return ctx.Push(ApproachPoint(g.dest, ctx.Profile().Patrol.Tolerance))
}

// sampleDestination draws a free tile within range of a center, preferring
// distant picks. A handful of rejected samples fails the lookup.
func sampleDestination(ctx *Context, center grid.Point, within int) (grid.Point, bool) {
	if ctx.RNG == nil || within <= 0 {
		return grid.Point{}, false
	}
	const attempts = 8
	for i := 0; i < attempts; i++ {
		candidate := grid.Point{
			X: center.X + ctx.RNG.Intn(2*within+1) - within,
			Y: center.Y + ctx.RNG.Intn(2*within+1) - within,
		}
		if candidate == ctx.Agent.Pos {
			continue
		}
		if grid.Chebyshev(candidate, ctx.Agent.Pos) < within/2 {
			continue
		}
		if ctx.TileFree(candidate) {
			return candidate, true
		}
	}
	return grid.Point{}, false
}

// routePatrolGoal follows scripted waypoints, either one-shot or cycling.
type routePatrolGoal struct {
	route Route
	index int
}

// PatrolRoute builds the scripted patrol goal.
func PatrolRoute(route Route) Goal {
	return &routePatrolGoal{route: route}
}

func (g *routePatrolGoal) Name() string { return "patrol-route" }

// Done advances past waypoints already within tolerance and reports whether
// a one-shot route is exhausted. A cycling route never finishes.
func (g *routePatrolGoal) Done(ctx *Context) bool {
	if len(g.route.Waypoints) == 0 {
		return true
	}
	tolerance := ctx.Profile().Patrol.Tolerance
	for checked := 0; checked < len(g.route.Waypoints); checked++ {
		if g.exhausted() {
			return true
		}
		wp := g.route.Waypoints[g.index]
		if grid.Chebyshev(ctx.Agent.Pos, wp) > tolerance {
			return false
		}
		g.advance()
	}
	return g.exhausted()
}

func (g *routePatrolGoal) exhausted() bool {
	return !g.route.Cycle && g.index >= len(g.route.Waypoints)
}

func (g *routePatrolGoal) advance() {
	g.index++
	if g.route.Cycle && g.index >= len(g.route.Waypoints) {
		g.index = 0
	}
}

func (g *routePatrolGoal) Step(ctx *Context) StepResult {
	if enemySighted(ctx) {
		return StepFailed
	}
	if g.exhausted() || g.index >= len(g.route.Waypoints) {
		return StepFailed
	}
	return ctx.Push(ApproachPoint(g.route.Waypoints[g.index], ctx.Profile().Patrol.Tolerance))
}

// leadPackGoal follows a scripted route but pauses at each waypoint so pack
// followers can catch up.
type leadPackGoal struct {
	route     Route
	index     int
	pauseLeft int
	pausing   bool
}

// LeadPack builds the pack-leader patrol goal.
func LeadPack(route Route) Goal {
	return &leadPackGoal{route: route}
}

func (g *leadPackGoal) Name() string { return "lead-pack" }

func (g *leadPackGoal) Done(ctx *Context) bool {
	if len(g.route.Waypoints) == 0 {
		return true
	}
	return !g.route.Cycle && g.index >= len(g.route.Waypoints)
}

func (g *leadPackGoal) Step(ctx *Context) StepResult {
	if enemySighted(ctx) {
		return StepFailed
	}
	if g.index >= len(g.route.Waypoints) {
		return StepFailed
	}
	profile := ctx.Profile().Patrol
	wp := g.route.Waypoints[g.index]
	if grid.Chebyshev(ctx.Agent.Pos, wp) > profile.Tolerance {
		return ctx.Push(ApproachPoint(wp, profile.Tolerance))
	}

	if !g.pausing {
		g.pausing = true
		g.pauseLeft = profile.PauseTurns
	}
	if g.pauseLeft > 0 {
		g.pauseLeft--
		res := ctx.Exec.Wait(ctx.Agent.ID)
		if !res.OK {
			return StepFailed
		}
		return StepActed
	}

	g.pausing = false
	g.index++
	if g.route.Cycle && g.index >= len(g.route.Waypoints) {
		g.index = 0
	}
	if g.index >= len(g.route.Waypoints) {
		// One-shot route finished; spend the turn so Done pops us next
		// evaluation.
		res := ctx.Exec.Wait(ctx.Agent.ID)
		if !res.OK {
			return StepFailed
		}
		return StepActed
	}
	return ctx.Push(ApproachPoint(g.route.Waypoints[g.index], profile.Tolerance))
}

// followLeaderGoal keeps a pack follower within follow distance of its
// leader. It finishes when the leader becomes invalid, forcing the idle
// fallback to re-evaluate, which is where leadership promotion happens.
type followLeaderGoal struct {
	leader actor.ID
}

// FollowLeader builds the pack-follower goal.
func FollowLeader(leader actor.ID) Goal {
	return &followLeaderGoal{leader: leader}
}

func (g *followLeaderGoal) Name() string { return "follow-leader" }

func (g *followLeaderGoal) Done(ctx *Context) bool {
	_, alive := ctx.ResolveLiving(g.leader)
	return !alive
}

func (g *followLeaderGoal) Step(ctx *Context) StepResult {
	if enemySighted(ctx) {
		return StepFailed
	}
	leader, ok := ctx.ResolveLiving(g.leader)
	if !ok {
		return StepFailed
	}
	distance := ctx.Profile().Follow.Distance
	if grid.Chebyshev(ctx.Agent.Pos, leader.Pos) > distance {
		return ctx.Push(ApproachActor(g.leader, distance))
	}
	res := ctx.Exec.Wait(ctx.Agent.ID)
	if !res.OK {
		return StepFailed
	}
	return StepActed
}
