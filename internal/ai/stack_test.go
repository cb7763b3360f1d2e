package ai

import (
	"context"
	"testing"

	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/grid"
	"deepwarren/server/logging"
)

// scriptGoal is a hand-driven goal for protocol tests.
type scriptGoal struct {
	name string
	done bool
	step func(ctx *Context) StepResult
}

func (g *scriptGoal) Name() string           { return g.name }
func (g *scriptGoal) Done(ctx *Context) bool { return g.done }
func (g *scriptGoal) Step(ctx *Context) StepResult {
	if g.step == nil {
		return StepFailed
	}
	return g.step(ctx)
}

func runOneTurn(m *Mind, w *world, agent *actor.State) *Context {
	ctx := w.contextFor(agent)
	m.RunTurn(ctx)
	return ctx
}

func TestRunTurnDrillsThroughPushesSameTurn(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	w := newWorld(agent)
	m := NewMind(agent.ID, nil, func() Goal {
		return &scriptGoal{name: "root", step: func(ctx *Context) StepResult {
			return ctx.Push(&scriptGoal{name: "leaf", step: func(ctx *Context) StepResult {
				ctx.Exec.Wait(ctx.Agent.ID)
				return StepActed
			}})
		}}
	})

	runOneTurn(m, w, agent)

	if w.exec.waits != 1 {
		t.Fatalf("expected exactly one primitive action, got %d waits", w.exec.waits)
	}
	names := m.Stack().Names()
	if len(names) != 2 || names[0] != "root" || names[1] != "leaf" {
		t.Fatalf("expected stack [root leaf], got %v", names)
	}
}

func TestFinishedGoalsPopBeforeStepping(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	w := newWorld(agent)

	stepped := false
	root := &scriptGoal{name: "root", step: func(ctx *Context) StepResult {
		stepped = true
		ctx.Exec.Wait(ctx.Agent.ID)
		return StepActed
	}}
	m := NewMind(agent.ID, nil, func() Goal { return root })
	finished := &scriptGoal{name: "finished", done: true}
	m.stack.push(finished, root)

	runOneTurn(m, w, agent)

	if !stepped {
		t.Fatalf("expected the unfinished root to act after the finished goal popped")
	}
	if got := m.Stack().Len(); got != 1 {
		t.Fatalf("expected stack depth 1, got %d", got)
	}
}

func TestFailureUnwindsToOriginalIntent(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	w := newWorld(agent)

	root := &scriptGoal{name: "root"}
	mid := &scriptGoal{name: "mid"}
	leaf := &scriptGoal{name: "leaf", step: func(ctx *Context) StepResult { return StepFailed }}

	m := NewMind(agent.ID, nil, func() Goal { return root })
	m.stack.push(mid, root)
	m.stack.push(&scriptGoal{name: "other"}, mid)
	m.stack.push(leaf, mid)

	runOneTurn(m, w, agent)

	names := m.Stack().Names()
	if len(names) != 2 || names[1] != "mid" {
		t.Fatalf("expected unwind to stop at the failing goal's intent, got %v", names)
	}
	if w.exec.waits != 1 {
		t.Fatalf("expected the failed turn to be spent waiting, got %d waits", w.exec.waits)
	}
}

func TestRootFailureReseedsFallbackAndWarns(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	w := newWorld(agent)

	var warned []logging.Event
	pub := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		if event.Severity >= logging.SeverityWarn {
			warned = append(warned, event)
		}
	})

	m := NewMind(agent.ID, nil, func() Goal {
		return &scriptGoal{name: "root", step: func(ctx *Context) StepResult { return StepFailed }}
	})

	ctx := w.contextFor(agent)
	ctx.Publisher = pub
	m.RunTurn(ctx)

	names := m.Stack().Names()
	if len(names) != 1 || names[0] != "root" {
		t.Fatalf("expected a fresh fallback after root failure, got %v", names)
	}
	if len(warned) != 1 {
		t.Fatalf("expected one warning event for the root failure, got %d", len(warned))
	}
}

func TestOnlyFirstPushPerStepTakesEffect(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	w := newWorld(agent)

	m := NewMind(agent.ID, nil, func() Goal {
		return &scriptGoal{name: "root", step: func(ctx *Context) StepResult {
			ctx.Push(&scriptGoal{name: "first", step: func(ctx *Context) StepResult {
				ctx.Exec.Wait(ctx.Agent.ID)
				return StepActed
			}})
			return ctx.Push(&scriptGoal{name: "second"})
		}}
	})

	runOneTurn(m, w, agent)

	names := m.Stack().Names()
	if names[len(names)-1] != "first" {
		t.Fatalf("expected only the first push to land, got stack %v", names)
	}
}

func TestDrillBoundSpendsTheTurn(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	w := newWorld(agent)

	var pusher func(ctx *Context) StepResult
	pusher = func(ctx *Context) StepResult {
		return ctx.Push(&scriptGoal{name: "deeper", step: pusher})
	}
	m := NewMind(agent.ID, nil, func() Goal {
		return &scriptGoal{name: "root", step: pusher}
	})

	runOneTurn(m, w, agent)

	if w.exec.waits != 1 {
		t.Fatalf("expected the runaway drill to spend the turn waiting, got %d waits", w.exec.waits)
	}
}

func TestForceOverrideReplacesStackAndRestores(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	w := newWorld(agent)

	m := NewMind(agent.ID, nil, nil)
	m.ForceOverride(SkipTurn())
	if !m.Overridden() {
		t.Fatalf("expected the mind to report the override")
	}

	runOneTurn(m, w, agent)
	if w.exec.waits != 1 {
		t.Fatalf("expected the override to wait, got %d waits", w.exec.waits)
	}

	m.Alert(ApproachPoint(grid.Point{X: 1, Y: 1}, 1))
	if got := m.Stack().Len(); got != 1 {
		t.Fatalf("expected alerts to be ignored during an override, stack depth %d", got)
	}

	m.RestoreDefault()
	if m.Overridden() {
		t.Fatalf("expected RestoreDefault to clear the override")
	}
	names := m.Stack().Names()
	if len(names) != 1 || names[0] != "idle" {
		t.Fatalf("expected the default fallback after restore, got %v", names)
	}
}

func TestRunTurnIsIdempotentPerTurnStructure(t *testing.T) {
	agent := testActor("a", actor.FactionWarren, grid.Point{X: 5, Y: 5})
	w := newWorld(agent)

	m := NewMind(agent.ID, nil, func() Goal {
		return &scriptGoal{name: "root", step: func(ctx *Context) StepResult {
			ctx.Exec.Wait(ctx.Agent.ID)
			return StepActed
		}}
	})

	for turn := 0; turn < 5; turn++ {
		runOneTurn(m, w, agent)
		if got := m.Stack().Len(); got != 1 {
			t.Fatalf("turn %d: expected stable stack depth 1, got %d", turn, got)
		}
	}
	if w.exec.waits != 5 {
		t.Fatalf("expected one action per turn over 5 turns, got %d", w.exec.waits)
	}
}
