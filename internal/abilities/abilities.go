// Package abilities defines the creature ability catalog and the candidate
// sources that contribute ability uses to the decision bus.
package abilities

import (
	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/ai"
	"deepwarren/server/internal/grid"
)

// Def describes one usable ability: which request category it answers, its
// selection weight, and the gates that must hold before it is offered.
type Def struct {
	Name     string
	Category ai.Category
	Weight   int
	// Range is the maximum Chebyshev distance to the target. Melee
	// abilities use 1.
	Range int
	// MinRange keeps ranged abilities from being offered point blank.
	MinRange int
	// HealthBelowPercent gates defensive abilities on the user's own
	// health. Zero means no gate.
	HealthBelowPercent int
	// NeedsLineOfSight requires a clear line to the target tile.
	NeedsLineOfSight bool
}

// catalog is the authored ability set. Creatures reference entries by name
// in their spawn definitions.
var catalog = map[string]Def{
	"bite": {
		Name:     "bite",
		Category: ai.CategoryMelee,
		Weight:   3,
		Range:    1,
	},
	"club": {
		Name:     "club",
		Category: ai.CategoryMelee,
		Weight:   2,
		Range:    1,
	},
	"claw": {
		Name:     "claw",
		Category: ai.CategoryMelee,
		Weight:   2,
		Range:    1,
	},
	"sling": {
		Name:             "sling",
		Category:         ai.CategoryRanged,
		Weight:           3,
		Range:            6,
		MinRange:         2,
		NeedsLineOfSight: true,
	},
	"venom-spit": {
		Name:             "venom-spit",
		Category:         ai.CategoryRanged,
		Weight:           2,
		Range:            4,
		MinRange:         2,
		NeedsLineOfSight: true,
	},
	"heal-draught": {
		Name:               "heal-draught",
		Category:           ai.CategoryDefensive,
		Weight:             4,
		HealthBelowPercent: 40,
	},
	"oil-flask": {
		Name:             "oil-flask",
		Category:         ai.CategoryItem,
		Weight:           2,
		Range:            5,
		NeedsLineOfSight: true,
	},
}

// Lookup resolves an ability name from the catalog.
func Lookup(name string) (Def, bool) {
	def, ok := catalog[name]
	return def, ok
}

// Names returns the catalog ability names, for schema and authoring tools.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	return names
}

// Source contributes an agent's learned abilities to broadcast requests.
type Source struct {
	defs []Def
}

// NewSource resolves ability names against the catalog. Unknown names are
// skipped.
func NewSource(names []string) *Source {
	s := &Source{}
	for _, name := range names {
		if def, ok := Lookup(name); ok {
			s.defs = append(s.defs, def)
		}
	}
	return s
}

// Contribute appends every ability whose category matches and whose gates
// hold against the request target.
func (s *Source) Contribute(ctx *ai.Context, req *ai.Request) {
	for _, def := range s.defs {
		if def.Category != req.Category {
			continue
		}
		if !s.gatesHold(ctx, def, req.Target) {
			continue
		}
		name := def.Name
		target := req.Target
		req.Append(ai.Candidate{
			Name:   name,
			Weight: def.Weight,
			Target: target,
			Invoke: func(ctx *ai.Context) ai.StepResult {
				res := ctx.Exec.UseAbility(ctx.Agent.ID, name, target)
				if !res.OK {
					return ai.StepFailed
				}
				return ai.StepActed
			},
		})
	}
}

func (s *Source) gatesHold(ctx *ai.Context, def Def, targetID actor.ID) bool {
	agent := ctx.Agent
	if def.HealthBelowPercent > 0 {
		if agent.MaxHealth <= 0 || agent.Health*100 > def.HealthBelowPercent*agent.MaxHealth {
			return false
		}
	}
	if def.Range <= 0 && def.MinRange <= 0 && !def.NeedsLineOfSight {
		return true
	}
	target, ok := ctx.ResolveLiving(targetID)
	if !ok {
		// Untargeted categories such as defensive self-use pass range
		// checks trivially.
		return def.Range <= 0
	}
	dist := grid.Chebyshev(agent.Pos, target.Pos)
	if def.Range > 0 && dist > def.Range {
		return false
	}
	if def.MinRange > 0 && dist < def.MinRange {
		return false
	}
	if def.NeedsLineOfSight && !ctx.Terrain.LineOfSight(agent.Pos, target.Pos) {
		return false
	}
	return true
}

// Innate contributes the basic melee strike every creature has regardless of
// learned abilities.
func Innate() ai.CandidateSource {
	return ai.CandidateSourceFunc(func(ctx *ai.Context, req *ai.Request) {
		if req.Category != ai.CategoryMelee {
			return
		}
		target, ok := ctx.ResolveLiving(req.Target)
		if !ok || !grid.Adjacent(ctx.Agent.Pos, target.Pos) {
			return
		}
		id := target.ID
		req.Append(ai.Candidate{
			Name:   "strike",
			Weight: 2,
			Target: id,
			Invoke: func(ctx *ai.Context) ai.StepResult {
				res := ctx.Exec.Attack(ctx.Agent.ID, id)
				if !res.OK {
					return ai.StepFailed
				}
				return ai.StepActed
			},
		})
	})
}

// Skittish contributes fleeing as a defensive option once the agent's
// health falls below the given percent. Yelling variants call for help while
// running.
func Skittish(healthBelowPercent int, yells bool) ai.CandidateSource {
	return ai.CandidateSourceFunc(func(ctx *ai.Context, req *ai.Request) {
		if req.Category != ai.CategoryDefensive {
			return
		}
		agent := ctx.Agent
		if agent.MaxHealth <= 0 || agent.Health*100 > healthBelowPercent*agent.MaxHealth {
			return
		}
		req.Append(ai.Candidate{
			Name:   "flee",
			Weight: 6,
			Invoke: func(ctx *ai.Context) ai.StepResult {
				if yells {
					return ctx.Push(ai.FleeYelling())
				}
				return ctx.Push(ai.Flee())
			},
		})
	})
}

// PatrolDuty contributes a scripted patrol whenever the agent goes idle. The
// route goal is shared across contributions so a patrol interrupted by
// combat resumes from its last waypoint.
func PatrolDuty(route ai.Route) ai.CandidateSource {
	goal := ai.PatrolRoute(route)
	return idleDuty(goal)
}

// LeadDuty contributes a pack-leader patrol whenever the agent goes idle.
func LeadDuty(route ai.Route) ai.CandidateSource {
	goal := ai.LeadPack(route)
	return idleDuty(goal)
}

// WanderDuty contributes ad hoc patrolling around the agent's home tile.
func WanderDuty() ai.CandidateSource {
	return ai.CandidateSourceFunc(func(ctx *ai.Context, req *ai.Request) {
		if req.Category != ai.CategoryIdle || enemyInSight(ctx) {
			return
		}
		req.MarkHandled(ctx.Push(ai.PatrolWander()))
	})
}

func idleDuty(goal ai.Goal) ai.CandidateSource {
	return ai.CandidateSourceFunc(func(ctx *ai.Context, req *ai.Request) {
		if req.Category != ai.CategoryIdle || enemyInSight(ctx) {
			return
		}
		if goal.Done(ctx) {
			return
		}
		req.MarkHandled(ctx.Push(goal))
	})
}

// enemyInSight keeps patrol duties from claiming idle turns that belong to
// combat. The patrol goals carry the same guard; checking here saves a wasted
// push-and-fail cycle.
func enemyInSight(ctx *ai.Context) bool {
	return len(ctx.VisibleEnemies(ctx.Agent)) > 0
}
