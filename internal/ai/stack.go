package ai

import (
	"context"

	"deepwarren/server/internal/actor"
	"deepwarren/server/logging"
	logai "deepwarren/server/logging/ai"
)

// maxDrillDepth bounds same-turn drill-down so a misbehaving goal chain can
// waste at most one turn, never hang the loop.
const maxDrillDepth = 16

type stackEntry struct {
	goal Goal
	// intent is the goal that pushed this one, recorded at push time and
	// immutable after. Nil marks a root entry. Used only as the fail-unwind
	// target.
	intent Goal
}

// Stack is the per-agent LIFO of active goals. The last entry is the one
// stepped each turn.
type Stack struct {
	entries []stackEntry
}

func (s *Stack) push(g Goal, intent Goal) {
	s.entries = append(s.entries, stackEntry{goal: g, intent: intent})
}

func (s *Stack) pop() {
	if len(s.entries) == 0 {
		return
	}
	s.entries = s.entries[:len(s.entries)-1]
}

// Top returns the active goal.
func (s *Stack) Top() (Goal, bool) {
	if len(s.entries) == 0 {
		return nil, false
	}
	return s.entries[len(s.entries)-1].goal, true
}

// Len returns the stack depth.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Names lists goal names bottom to top, for snapshots and tests.
func (s *Stack) Names() []string {
	names := make([]string, 0, len(s.entries))
	for _, entry := range s.entries {
		names = append(names, entry.goal.Name())
	}
	return names
}

func (s *Stack) clear() {
	s.entries = s.entries[:0]
}

// Mind owns one agent's goal stack, its candidate subscribers, and its
// behavior profile. All mutation happens on the owning agent's turn; other
// agents only observe.
type Mind struct {
	owner    actor.ID
	stack    Stack
	sources  []CandidateSource
	profile  *Profile
	fallback func() Goal
	override bool
}

// NewMind builds a mind seeded with the default fallback goal. The fallback
// constructor is re-invoked whenever the stack must be re-seeded, so the
// bottom goal is always fresh.
func NewMind(owner actor.ID, profile *Profile, fallback func() Goal) *Mind {
	if fallback == nil {
		fallback = func() Goal { return IdleFallback() }
	}
	m := &Mind{owner: owner, profile: profile, fallback: fallback}
	m.seedFallback()
	return m
}

// Owner returns the controlled agent's handle.
func (m *Mind) Owner() actor.ID {
	if m == nil {
		return ""
	}
	return m.owner
}

// Stack exposes the goal stack for inspection.
func (m *Mind) Stack() *Stack {
	if m == nil {
		return nil
	}
	return &m.stack
}

// Overridden reports whether a status override currently holds the stack.
func (m *Mind) Overridden() bool {
	return m != nil && m.override
}

// Subscribe appends a candidate source. Sources are consulted in
// registration order during broadcasts.
func (m *Mind) Subscribe(src CandidateSource) {
	if m == nil || src == nil {
		return
	}
	m.sources = append(m.sources, src)
}

func (m *Mind) seedFallback() {
	m.stack.clear()
	m.stack.push(m.fallback(), nil)
	m.override = false
}

// RunTurn processes one game turn for the agent: pop finished goals, step
// the top, drill down through pushed sub-goals, and stop at the first
// primitive action or failure. The stack is never empty when this returns.
func (m *Mind) RunTurn(ctx *Context) {
	if m == nil || ctx == nil {
		return
	}
	ctx.mind = m

	if m.stack.Len() == 0 {
		// Should be unreachable given the fallback invariant.
		logai.StackExhausted(context.Background(), ctx.Publisher, ctx.Turn, m.entityRef())
		m.seedFallback()
	}

	for depth := 0; depth < maxDrillDepth; depth++ {
		m.popFinished(ctx)
		top, ok := m.stack.Top()
		if !ok {
			m.seedFallback()
			top, _ = m.stack.Top()
		}

		ctx.current = top
		ctx.pushed = false

		switch top.Step(ctx) {
		case StepActed:
			return
		case StepPushed:
			if !ctx.pushed {
				// The goal claimed a push but never called Push.
				ctx.Exec.Wait(m.owner)
				return
			}
		case StepFailed:
			m.failUnwind(ctx, top)
			ctx.Exec.Wait(m.owner)
			return
		}
	}

	// Drill bound exceeded; spend the turn rather than loop.
	ctx.Exec.Wait(m.owner)
}

// popFinished removes goals at the top whose completion test passes,
// stopping at the first unfinished goal.
func (m *Mind) popFinished(ctx *Context) {
	for {
		top, ok := m.stack.Top()
		if !ok || !top.Done(ctx) {
			return
		}
		m.stack.pop()
	}
}

// failUnwind pops the stack until the failing goal's recorded intent is on
// top. A nil intent is a root failure: the stack resets to the default
// fallback and a configuration warning is published.
func (m *Mind) failUnwind(ctx *Context, failing Goal) {
	idx := -1
	for i := len(m.stack.entries) - 1; i >= 0; i-- {
		if m.stack.entries[i].goal == failing {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	intent := m.stack.entries[idx].intent
	if intent == nil {
		logai.RootFailure(context.Background(), ctx.Publisher, ctx.Turn, m.entityRef(), logai.RootFailurePayload{Goal: failing.Name()})
		m.seedFallback()
		return
	}
	for {
		top, ok := m.stack.Top()
		if !ok {
			// The intent is gone entirely; fall back to defaults.
			m.seedFallback()
			return
		}
		if top == intent {
			return
		}
		m.stack.pop()
	}
}

// Alert pushes a goal from outside the agent's own turn, typically in
// response to an ally's call. The current top goal is recorded as the unwind
// target so a failed response resumes whatever the agent was doing. Alerts
// are ignored while an override holds the stack.
func (m *Mind) Alert(g Goal) {
	if m == nil || g == nil || m.override {
		return
	}
	top, ok := m.stack.Top()
	if !ok {
		m.seedFallback()
		top, _ = m.stack.Top()
	}
	m.stack.push(g, top)
}

// ForceOverride clears the stack and installs a single override goal. Used
// exclusively by the status-effect bridge; no pre-existing goal can act
// underneath the override.
func (m *Mind) ForceOverride(g Goal) {
	if m == nil || g == nil {
		return
	}
	m.stack.clear()
	m.stack.push(g, nil)
	m.override = true
}

// RestoreDefault clears any override and re-seeds the default fallback so
// decision-making resumes as if the agent had just spawned idle.
func (m *Mind) RestoreDefault() {
	if m == nil {
		return
	}
	m.seedFallback()
}

func (m *Mind) entityRef() logging.EntityRef {
	return logging.EntityRef{ID: string(m.owner), Kind: logging.EntityKindCreature}
}
