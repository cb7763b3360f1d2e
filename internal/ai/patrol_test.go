package ai

import (
	"testing"

	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/grid"
)

func TestRoutePatrolVisitsWaypointsInOrder(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 2, Y: 2})
	w := newWorld(agent)

	route := Route{Waypoints: []grid.Point{{X: 5, Y: 2}, {X: 5, Y: 5}}}
	m := NewMind(agent.ID, nil, func() Goal { return PatrolRoute(route) })

	visitedFirst := false
	for turn := 0; turn < 30; turn++ {
		m.RunTurn(w.contextFor(agent))
		if grid.Chebyshev(agent.Pos, grid.Point{X: 5, Y: 2}) <= 1 {
			visitedFirst = true
		}
		if grid.Chebyshev(agent.Pos, grid.Point{X: 5, Y: 5}) <= 1 {
			if !visitedFirst {
				t.Fatalf("expected the first waypoint before the second")
			}
			return
		}
	}
	t.Fatalf("expected the patrol to reach the final waypoint, at %v", agent.Pos)
}

func TestCyclingRouteNeverFinishes(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 2})
	w := newWorld(agent)

	route := Route{Waypoints: []grid.Point{{X: 5, Y: 2}, {X: 5, Y: 4}}, Cycle: true}
	goal := PatrolRoute(route)

	ctx := w.contextFor(agent)
	ctx.mind = NewMind(agent.ID, nil, nil)
	if goal.Done(ctx) {
		t.Fatalf("expected a cycling route to stay active at a waypoint")
	}
}

func TestPatrolAbortsWhenEnemySighted(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 2, Y: 2})
	enemy := testActor("e", actor.FactionAdventurers, grid.Point{X: 4, Y: 2})
	w := newWorld(agent, enemy)

	goal := PatrolRoute(Route{Waypoints: []grid.Point{{X: 10, Y: 2}}})
	m := NewMind(agent.ID, nil, nil)
	ctx := w.contextFor(agent)
	ctx.mind = m
	ctx.current = goal

	if got := goal.Step(ctx); got != StepFailed {
		t.Fatalf("expected the patrol to fail with an enemy in sight, got %v", got)
	}
}

func TestLeadPackPausesAtWaypoints(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 2})
	w := newWorld(agent)

	route := Route{Waypoints: []grid.Point{{X: 5, Y: 2}, {X: 10, Y: 2}}, Cycle: true}
	m := NewMind(agent.ID, nil, func() Goal { return LeadPack(route) })

	// The leader starts on the first waypoint, so the profile's pause must
	// elapse before it moves at all.
	pause := defaultProfile().Patrol.PauseTurns
	for turn := 0; turn < pause; turn++ {
		m.RunTurn(w.contextFor(agent))
		if w.exec.moves != 0 {
			t.Fatalf("expected the leader to hold position during its pause, moved on turn %d", turn)
		}
	}
	m.RunTurn(w.contextFor(agent))
	if w.exec.moves == 0 {
		t.Fatalf("expected the leader to move once the pause elapsed")
	}
}

func TestFollowLeaderKeepsDistanceAndFinishesWhenLeaderDies(t *testing.T) {
	leader := testActor("lead", actor.FactionWarren, grid.Point{X: 10, Y: 10})
	follower := testActor("tail", actor.FactionWarren, grid.Point{X: 2, Y: 10})
	w := newWorld(leader, follower)

	m := NewMind(follower.ID, nil, func() Goal { return FollowLeader(leader.ID) })
	m.RunTurn(w.contextFor(follower))
	if w.exec.moves != 1 {
		t.Fatalf("expected the distant follower to close up, got %d moves", w.exec.moves)
	}

	follower.Pos = grid.Point{X: 9, Y: 10}
	m.RunTurn(w.contextFor(follower))
	if w.exec.waits != 1 {
		t.Fatalf("expected the close follower to hold, got %d waits", w.exec.waits)
	}

	leader.Health = 0
	ctx := w.contextFor(follower)
	ctx.mind = m
	if !FollowLeader(leader.ID).Done(ctx) {
		t.Fatalf("expected following a dead leader to be finished")
	}
}
