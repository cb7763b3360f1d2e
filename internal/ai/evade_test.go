package ai

import (
	"testing"

	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/grid"
)

func TestFleeMovesAwayFromThreat(t *testing.T) {
	agent := testActor("a", actor.FactionVermin, grid.Point{X: 5, Y: 5})
	enemy := testActor("e", actor.FactionAdventurers, grid.Point{X: 4, Y: 5})
	w := newWorld(agent, enemy)

	m := NewMind(agent.ID, nil, func() Goal { return Flee() })
	m.RunTurn(w.contextFor(agent))

	if w.exec.moves != 1 {
		t.Fatalf("expected one escape step, got %d moves", w.exec.moves)
	}
	if agent.Pos.X <= 5 {
		t.Fatalf("expected the agent to move away from the threat, at %v", agent.Pos)
	}
}

func TestFleePrefersEscapeTowardAllies(t *testing.T) {
	agent := testActor("a", actor.FactionVermin, grid.Point{X: 5, Y: 5})
	enemy := testActor("e", actor.FactionAdventurers, grid.Point{X: 4, Y: 5})
	allies := []*actor.State{
		testActor("friend1", actor.FactionVermin, grid.Point{X: 9, Y: 8}),
		testActor("friend2", actor.FactionVermin, grid.Point{X: 11, Y: 9}),
		testActor("friend3", actor.FactionVermin, grid.Point{X: 10, Y: 11}),
	}
	w := newWorld(append([]*actor.State{agent, enemy}, allies...)...)

	m := NewMind(agent.ID, nil, func() Goal { return Flee() })
	m.RunTurn(w.contextFor(agent))

	if w.exec.lastMove != grid.SouthEast {
		t.Fatalf("expected the escape step to bend toward the allies, got %v", w.exec.lastMove)
	}
}

func TestFleeAcceptsLateralStepTowardAlly(t *testing.T) {
	agent := testActor("a", actor.FactionVermin, grid.Point{X: 5, Y: 5})
	enemy := testActor("e", actor.FactionAdventurers, grid.Point{X: 5, Y: 7})
	ally := testActor("friend", actor.FactionVermin, grid.Point{X: 9, Y: 5})
	w := newWorld(agent, enemy, ally)

	m := NewMind(agent.ID, nil, func() Goal { return Flee() })
	m.RunTurn(w.contextFor(agent))

	// Stepping east keeps the threat at distance two, which the safety
	// floor allows, so the ally-ward step wins over running straight north.
	if w.exec.lastMove != grid.East {
		t.Fatalf("expected the lateral step toward the ally, got %v", w.exec.lastMove)
	}
}

func TestFleeRejectsAllyStepInsideSafetyFloor(t *testing.T) {
	agent := testActor("a", actor.FactionVermin, grid.Point{X: 5, Y: 5})
	enemy := testActor("e", actor.FactionAdventurers, grid.Point{X: 7, Y: 5})
	ally := testActor("friend", actor.FactionVermin, grid.Point{X: 9, Y: 5})
	w := newWorld(agent, enemy, ally)

	m := NewMind(agent.ID, nil, func() Goal { return Flee() })
	m.RunTurn(w.contextFor(agent))

	// The ally sits beyond the threat; closing to distance one is under
	// the floor, so the agent runs directly away instead.
	if w.exec.lastMove != grid.West {
		t.Fatalf("expected the agent to run away from the threat, got %v", w.exec.lastMove)
	}
}

func TestFleeTakesRearwardStepWhenForwardArcBlocked(t *testing.T) {
	agent := testActor("a", actor.FactionVermin, grid.Point{X: 5, Y: 5})
	enemy := testActor("e", actor.FactionAdventurers, grid.Point{X: 5, Y: 4})
	w := newWorld(agent, enemy)
	for _, wall := range []grid.Point{
		{X: 5, Y: 6}, {X: 4, Y: 6}, {X: 6, Y: 6}, {X: 4, Y: 5}, {X: 6, Y: 5},
	} {
		w.terrain.walls[wall] = true
	}

	m := NewMind(agent.ID, nil, func() Goal { return Flee() })
	m.RunTurn(w.contextFor(agent))

	if w.exec.moves != 1 {
		t.Fatalf("expected a sidestep out of the pocket, got %d moves and %d waits", w.exec.moves, w.exec.waits)
	}
	if agent.Pos.Y != 4 {
		t.Fatalf("expected a step that holds distance from the threat, at %v", agent.Pos)
	}
}

func TestFleeEndsAfterSafetyWindow(t *testing.T) {
	agent := testActor("a", actor.FactionVermin, grid.Point{X: 5, Y: 5})
	enemy := testActor("e", actor.FactionAdventurers, grid.Point{X: 4, Y: 5})
	w := newWorld(agent, enemy)

	goal := Flee().(*fleeGoal)
	ctx := w.contextFor(agent)
	ctx.mind = NewMind(agent.ID, nil, nil)
	ctx.current = goal
	goal.Step(ctx)

	enemy.Health = 0
	if goal.Done(w.contextFor(agent)) {
		t.Fatalf("expected the safety window to hold the flee open")
	}
	w.contextFor(agent)
	w.contextFor(agent)
	if !goal.Done(w.contextFor(agent)) {
		t.Fatalf("expected the flee to end once the window elapsed")
	}
}

func TestFleeYellingCallsForHelpFirst(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	enemy := testActor("e", actor.FactionAdventurers, grid.Point{X: 4, Y: 5})
	w := newWorld(agent, enemy)

	profile := defaultProfile()
	profile.Flee.YellInterval = 4
	m := NewMind(agent.ID, profile, func() Goal { return FleeYelling() })
	m.RunTurn(w.contextFor(agent))

	if w.exec.shouts != 1 {
		t.Fatalf("expected the first fleeing turn to shout, got %d shouts", w.exec.shouts)
	}
	m.RunTurn(w.contextFor(agent))
	if w.exec.shouts != 1 {
		t.Fatalf("expected the yell interval to space shouts out, got %d", w.exec.shouts)
	}
	if w.exec.moves != 1 {
		t.Fatalf("expected the second turn to run, got %d moves", w.exec.moves)
	}
}

func TestReturnHomeWalksBack(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 12, Y: 12})
	agent.Home = grid.Point{X: 3, Y: 3}
	w := newWorld(agent)

	m := NewMind(agent.ID, nil, func() Goal { return ReturnHome() })
	for turn := 0; turn < 20; turn++ {
		m.RunTurn(w.contextFor(agent))
		if grid.Chebyshev(agent.Pos, agent.Home) <= 1 {
			return
		}
	}
	t.Fatalf("expected the agent to make it home, at %v", agent.Pos)
}

func TestWanderPicksDestinationWithinRadius(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 10, Y: 10})
	w := newWorld(agent)

	goal := Wander().(*wanderGoal)
	ctx := w.contextFor(agent)
	ctx.mind = NewMind(agent.ID, nil, nil)
	ctx.current = goal

	if got := goal.Step(ctx); got != StepPushed {
		t.Fatalf("expected wander to push an approach, got %v", got)
	}
	radius := defaultProfile().Wander.Radius
	if grid.Chebyshev(agent.Pos, goal.dest) > radius {
		t.Fatalf("expected a destination within %d tiles, got %v", radius, goal.dest)
	}
}

func TestSearchRadiusShrinksAsPriorityDecays(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	w := newWorld(agent)

	goal := Search(grid.Point{X: 5, Y: 5}).(*searchGoal)
	ctx := w.contextFor(agent)
	ctx.mind = NewMind(agent.ID, nil, nil)
	ctx.current = goal
	goal.Step(ctx)

	full := goal.priority(w.contextFor(agent))
	for i := 0; i < 6; i++ {
		w.contextFor(agent)
	}
	decayed := goal.priority(w.contextFor(agent))
	if decayed >= full {
		t.Fatalf("expected the search priority to decay, %d then %d", full, decayed)
	}

	for i := 0; i < 20; i++ {
		w.contextFor(agent)
	}
	if !goal.Done(w.contextFor(agent)) {
		t.Fatalf("expected the search to give up once its priority hit zero")
	}
}
