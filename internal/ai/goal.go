// Package ai implements the hierarchical decision core for non-player
// creatures: per-agent goal stacks, the turn driver, and the candidate
// broadcast that lets abilities and conditions contribute options without the
// planner knowing their types.
package ai

// StepResult reports what a goal's step did with the agent's turn.
type StepResult int

const (
	// StepActed means a primitive world action was performed. Turn
	// processing ends.
	StepActed StepResult = iota
	// StepPushed means a sub-goal was pushed. The driver keeps drilling
	// down within the same turn.
	StepPushed
	// StepFailed means the goal cannot make progress. The stack unwinds to
	// the goal's recorded intent and the turn is spent waiting.
	StepFailed
)

// Goal is one unit of hierarchical behavior. Done is the completion test the
// driver runs before stepping; Step advances the goal by at most one
// decision. A step must either perform a primitive action, push exactly one
// sub-goal, or fail — it never blocks.
//
// Goals hold whatever per-variant state they need (target handles, routes,
// counters). They never hold pointers to other goals; the stack records the
// push relationship used for fail-unwind.
type Goal interface {
	Name() string
	Done(ctx *Context) bool
	Step(ctx *Context) StepResult
}
