package ai

import (
	"testing"

	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/grid"
)

func TestIdleBroadcastClaimsTheTurnFirst(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	enemy := testActor("e", actor.FactionAdventurers, grid.Point{X: 6, Y: 5})
	w := newWorld(agent, enemy)

	m := NewMind(agent.ID, nil, nil)
	m.Subscribe(CandidateSourceFunc(func(ctx *Context, req *Request) {
		if req.Category != CategoryIdle {
			return
		}
		ctx.Exec.Shout(ctx.Agent.ID)
		req.MarkHandled(StepActed)
	}))

	m.RunTurn(w.contextFor(agent))

	if w.exec.shouts != 1 {
		t.Fatalf("expected the idle subscriber to claim the turn, got %d shouts", w.exec.shouts)
	}
	if w.exec.attacks != 0 {
		t.Fatalf("expected no combat before the broadcast result, got %d attacks", w.exec.attacks)
	}
}

func TestIdleEngagesVisibleEnemies(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	enemy := testActor("e", actor.FactionAdventurers, grid.Point{X: 8, Y: 5})
	w := newWorld(agent, enemy)

	m := NewMind(agent.ID, nil, nil)
	m.RunTurn(w.contextFor(agent))

	foundKill := false
	for _, name := range m.Stack().Names() {
		if name == "kill" {
			foundKill = true
		}
	}
	if !foundKill {
		t.Fatalf("expected idle to push combat at a visible enemy, stack %v", m.Stack().Names())
	}
}

func TestPackFollowerBreaksFormationToFight(t *testing.T) {
	follower := testActor("f", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	leader := testActor("boss", actor.FactionWarren, grid.Point{X: 5, Y: 6})
	enemy := testActor("e", actor.FactionAdventurers, grid.Point{X: 8, Y: 5})
	w := newWorld(follower, leader, enemy)
	follower.LeaderID = leader.ID

	m := NewMind(follower.ID, nil, nil)
	m.Subscribe(appendSource(CategoryMelee, "bite"))
	for turn := 0; turn < 10; turn++ {
		m.RunTurn(w.contextFor(follower))
	}

	if len(w.exec.abilities) == 0 {
		t.Fatalf("expected the follower to engage the enemy, got %d moves and %d waits", w.exec.moves, w.exec.waits)
	}
}

func TestPackFollowerHoldsFormationWhenQuiet(t *testing.T) {
	follower := testActor("f", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	leader := testActor("boss", actor.FactionWarren, grid.Point{X: 12, Y: 5})
	w := newWorld(follower, leader)
	follower.LeaderID = leader.ID

	m := NewMind(follower.ID, nil, nil)
	m.RunTurn(w.contextFor(follower))

	names := m.Stack().Names()
	if len(names) < 2 || names[1] != "follow-leader" {
		t.Fatalf("expected the follower to fall in behind the leader, got %v", names)
	}
}

func TestIdlePrefersEscortDutyOverCombat(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	ward := testActor("ward", actor.FactionWarren, grid.Point{X: 12, Y: 5})
	enemy := testActor("e", actor.FactionAdventurers, grid.Point{X: 8, Y: 5})
	w := newWorld(agent, ward, enemy)
	agent.ProtectID = ward.ID

	m := NewMind(agent.ID, nil, nil)
	m.RunTurn(w.contextFor(agent))

	names := m.Stack().Names()
	if len(names) < 2 || names[1] != "escort" {
		t.Fatalf("expected the escort duty above idle, got %v", names)
	}
}

func TestIdlePicksUpItemUnderfoot(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	w := newWorld(agent)
	w.items.items[agent.Pos] = true

	m := NewMind(agent.ID, nil, nil)
	m.RunTurn(w.contextFor(agent))

	if w.exec.pickups != 1 {
		t.Fatalf("expected the idle agent to pick up the item, got %d pickups", w.exec.pickups)
	}
}

func TestIdleReturnsHomeWhenFarAfield(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 18, Y: 18})
	agent.Home = grid.Point{X: 2, Y: 2}
	w := newWorld(agent)

	m := NewMind(agent.ID, nil, nil)
	m.RunTurn(w.contextFor(agent))

	names := m.Stack().Names()
	if len(names) < 2 || names[1] != "return-home" {
		t.Fatalf("expected a homeward goal above idle, got %v", names)
	}
}
