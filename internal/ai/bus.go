package ai

import (
	"math/rand"

	"deepwarren/server/internal/actor"
)

// Category names one tier of the action-candidate request. Combat consults
// the first four in strict priority order; the idle fallback uses
// CategoryIdle.
type Category string

const (
	CategoryMelee     Category = "melee"
	CategoryDefensive Category = "defensive"
	CategoryRanged    Category = "ranged"
	CategoryItem      Category = "item"
	CategoryIdle      Category = "idle"
)

// Candidate is one weighted option contributed during a broadcast. Invoke
// performs or pushes the behavior and reports what it did with the turn.
type Candidate struct {
	Name   string
	Weight int
	Target actor.ID
	Invoke func(ctx *Context) StepResult
}

// Request is a transient "what can I do here" query. Subscribers append
// weighted candidates, or commit to an action themselves and mark the
// request handled, which stops the broadcast.
type Request struct {
	Category Category
	Target   actor.ID

	candidates []Candidate
	handled    bool
	outcome    StepResult
}

// NewRequest builds a request for one category with an optional intended
// target.
func NewRequest(category Category, target actor.ID) *Request {
	return &Request{Category: category, Target: target}
}

// Append adds a candidate. Zero and negative weights are dropped so they can
// never be selected.
func (r *Request) Append(c Candidate) {
	if r == nil || c.Invoke == nil || c.Weight <= 0 {
		return
	}
	r.candidates = append(r.candidates, c)
}

// MarkHandled records that the subscriber already committed to an action and
// no further candidates should be requested. The outcome tells the
// requesting goal what happened to the turn.
func (r *Request) MarkHandled(outcome StepResult) {
	if r == nil {
		return
	}
	r.handled = true
	r.outcome = outcome
}

// Handled reports whether a subscriber committed during the broadcast.
func (r *Request) Handled() bool {
	return r != nil && r.handled
}

// Outcome returns the step result recorded by MarkHandled.
func (r *Request) Outcome() StepResult {
	if r == nil {
		return StepFailed
	}
	return r.outcome
}

// Candidates returns the contributed options.
func (r *Request) Candidates() []Candidate {
	if r == nil {
		return nil
	}
	return r.candidates
}

// CandidateSource is the contribution interface abilities, conditions, and
// innate traits implement. Sources must tolerate categories they do not
// understand by contributing nothing.
type CandidateSource interface {
	Contribute(ctx *Context, req *Request)
}

// CandidateSourceFunc adapts a function to CandidateSource.
type CandidateSourceFunc func(ctx *Context, req *Request)

func (f CandidateSourceFunc) Contribute(ctx *Context, req *Request) {
	if f == nil {
		return
	}
	f(ctx, req)
}

// Broadcast walks the subscriber list in registration order, stopping as
// soon as a subscriber marks the request handled.
func (m *Mind) Broadcast(ctx *Context, req *Request) {
	if m == nil || req == nil {
		return
	}
	for _, src := range m.sources {
		src.Contribute(ctx, req)
		if req.Handled() {
			return
		}
	}
}

// pickWeighted selects one candidate by weighted random draw.
func pickWeighted(rng *rand.Rand, candidates []Candidate) (Candidate, bool) {
	total := 0
	for _, c := range candidates {
		total += c.Weight
	}
	if total <= 0 {
		return Candidate{}, false
	}
	roll := 0
	if rng != nil {
		roll = rng.Intn(total)
	}
	for _, c := range candidates {
		roll -= c.Weight
		if roll < 0 {
			return c, true
		}
	}
	return candidates[len(candidates)-1], true
}
