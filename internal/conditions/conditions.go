// Package conditions manages timed status effects and the mind overrides
// they impose while active.
package conditions

import (
	"context"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/ai"
	"deepwarren/server/logging"
	logai "deepwarren/server/logging/ai"
	logcond "deepwarren/server/logging/conditions"
)

// Type names one status condition.
type Type string

const (
	Stun      Type = "stun"
	Sleep     Type = "sleep"
	Fear      Type = "fear"
	Confusion Type = "confusion"
	Daze      Type = "daze"
)

// Definition describes a condition's duration range and the decision
// override it imposes.
type Definition struct {
	Type     Type
	MinTurns int
	MaxTurns int
	// Override builds the goal that replaces the victim's stack while the
	// condition holds, given the actor that inflicted it. Nil means the
	// condition is bookkeeping only.
	Override func(source actor.ID) ai.Goal
	// WakeOnDamage breaks the condition early when the victim takes damage.
	WakeOnDamage bool
	// Priority orders overrides when several conditions hold at once; the
	// highest-priority one controls the mind.
	Priority int
}

var catalog = map[Type]Definition{
	Stun:      {Type: Stun, MinTurns: 2, MaxTurns: 4, Override: ignoreSource(ai.Stunned), Priority: 40},
	Sleep:     {Type: Sleep, MinTurns: 3, MaxTurns: 6, Override: ignoreSource(ai.Asleep), WakeOnDamage: true, Priority: 50},
	Fear:      {Type: Fear, MinTurns: 2, MaxTurns: 5, Override: ai.Fearful, Priority: 20},
	Confusion: {Type: Confusion, MinTurns: 2, MaxTurns: 4, Override: ignoreSource(ai.Confused), Priority: 30},
	Daze:      {Type: Daze, MinTurns: 1, MaxTurns: 2, Override: ignoreSource(ai.SkipTurn), Priority: 10},
}

// ignoreSource adapts a source-blind goal constructor to the override
// signature. Only fear flees a specific tormentor; the rest behave the same
// whoever inflicted them.
func ignoreSource(build func() ai.Goal) func(actor.ID) ai.Goal {
	return func(actor.ID) ai.Goal { return build() }
}

// Lookup resolves a condition definition.
func Lookup(t Type) (Definition, bool) {
	def, ok := catalog[t]
	return def, ok
}

// Instance is one live application of a condition on an actor.
type Instance struct {
	ID        string
	Type      Type
	Source    actor.ID
	Remaining int
}

// Minds resolves the decision mind controlling an actor. Actors without
// minds still take conditions; only the override half is skipped.
type Minds interface {
	MindOf(id actor.ID) (*ai.Mind, bool)
}

// Manager tracks every active condition and keeps each victim's mind
// override in sync with the highest-priority condition it suffers.
type Manager struct {
	minds     Minds
	publisher logging.Publisher
	rng       *rand.Rand
	active    map[actor.ID][]*Instance
	// overriding records which condition type currently holds each mind.
	overriding map[actor.ID]Type
	// warned remembers mindless actors already reported, so the warning
	// fires once per actor rather than every turn.
	warned map[actor.ID]struct{}
}

// NewManager builds an empty condition manager.
func NewManager(minds Minds, publisher logging.Publisher, rng *rand.Rand) *Manager {
	return &Manager{
		minds:      minds,
		publisher:  publisher,
		rng:        rng,
		active:     make(map[actor.ID][]*Instance),
		overriding: make(map[actor.ID]Type),
		warned:     make(map[actor.ID]struct{}),
	}
}

// Apply rolls a duration for the condition and attaches it to the target,
// installing its mind override when it outranks whatever already holds.
func (m *Manager) Apply(turn uint64, t Type, source, target actor.ID) (*Instance, bool) {
	def, ok := catalog[t]
	if !ok {
		return nil, false
	}
	inst := &Instance{
		ID:        uuid.NewString(),
		Type:      t,
		Source:    source,
		Remaining: m.rollDuration(def),
	}
	m.active[target] = append(m.active[target], inst)

	logcond.Applied(context.Background(), m.publisher, turn,
		creatureRef(source), creatureRef(target),
		logcond.Payload{Condition: string(t), InstanceID: inst.ID, SourceID: string(source), DurationTurns: inst.Remaining})

	m.syncOverride(turn, target)
	return inst, true
}

// Remove breaks every instance of a condition type on the target before its
// time is up.
func (m *Manager) Remove(turn uint64, t Type, target actor.ID) {
	remaining := m.active[target][:0]
	for _, inst := range m.active[target] {
		if inst.Type != t {
			remaining = append(remaining, inst)
			continue
		}
		logcond.Broken(context.Background(), m.publisher, turn, creatureRef(target),
			logcond.Payload{Condition: string(inst.Type), InstanceID: inst.ID, SourceID: string(inst.Source)})
	}
	m.setActive(target, remaining)
	m.syncOverride(turn, target)
}

// NotifyDamage breaks wake-on-damage conditions such as sleep.
func (m *Manager) NotifyDamage(turn uint64, target actor.ID) {
	remaining := m.active[target][:0]
	for _, inst := range m.active[target] {
		def := catalog[inst.Type]
		if !def.WakeOnDamage {
			remaining = append(remaining, inst)
			continue
		}
		logcond.Broken(context.Background(), m.publisher, turn, creatureRef(target),
			logcond.Payload{Condition: string(inst.Type), InstanceID: inst.ID, SourceID: string(inst.Source)})
	}
	m.setActive(target, remaining)
	m.syncOverride(turn, target)
}

// Advance ticks every active condition down one turn and expires the ones
// that reach zero.
func (m *Manager) Advance(turn uint64) {
	for target := range m.active {
		remaining := m.active[target][:0]
		for _, inst := range m.active[target] {
			inst.Remaining--
			if inst.Remaining > 0 {
				remaining = append(remaining, inst)
				continue
			}
			logcond.Expired(context.Background(), m.publisher, turn, creatureRef(target),
				logcond.Payload{Condition: string(inst.Type), InstanceID: inst.ID, SourceID: string(inst.Source)})
		}
		m.setActive(target, remaining)
		m.syncOverride(turn, target)
	}
}

// Drop clears all bookkeeping for a removed actor without events.
func (m *Manager) Drop(target actor.ID) {
	delete(m.active, target)
	delete(m.overriding, target)
	delete(m.warned, target)
}

// ActiveOn returns a snapshot of the conditions on an actor.
func (m *Manager) ActiveOn(target actor.ID) []Instance {
	insts := m.active[target]
	out := make([]Instance, len(insts))
	for i, inst := range insts {
		out[i] = *inst
	}
	return out
}

// Suffering reports whether the target has any instance of the given type.
func (m *Manager) Suffering(target actor.ID, t Type) bool {
	for _, inst := range m.active[target] {
		if inst.Type == t {
			return true
		}
	}
	return false
}

func (m *Manager) rollDuration(def Definition) int {
	if def.MaxTurns <= def.MinTurns {
		return def.MinTurns
	}
	span := def.MaxTurns - def.MinTurns + 1
	if m.rng == nil {
		return def.MinTurns
	}
	return def.MinTurns + m.rng.Intn(span)
}

func (m *Manager) setActive(target actor.ID, insts []*Instance) {
	if len(insts) == 0 {
		delete(m.active, target)
		return
	}
	m.active[target] = insts
}

// syncOverride reconciles the target's mind with its highest-priority active
// condition. Condition bookkeeping continues even for mindless actors; only
// the override half is skipped, with a warning the first time.
func (m *Manager) syncOverride(turn uint64, target actor.ID) {
	want, source, wantOK := m.dominantOverride(target)
	have, haveOK := m.overriding[target]
	if wantOK == haveOK && want.Type == have {
		return
	}

	mind, ok := m.minds.MindOf(target)
	if !ok {
		if _, already := m.warned[target]; wantOK && !already {
			m.warned[target] = struct{}{}
			logcond.MissingMind(context.Background(), m.publisher, turn, creatureRef(target),
				logcond.Payload{Condition: string(want.Type)})
		}
		return
	}

	if !wantOK {
		mind.RestoreDefault()
		delete(m.overriding, target)
		logai.OverrideCleared(context.Background(), m.publisher, turn, creatureRef(target),
			logai.OverridePayload{Condition: string(have)})
		return
	}

	goal := want.Override(source)
	mind.ForceOverride(goal)
	m.overriding[target] = want.Type
	logai.OverrideApplied(context.Background(), m.publisher, turn, creatureRef(target),
		logai.OverridePayload{Condition: string(want.Type), Goal: goal.Name()})
}

// dominantOverride picks the highest-priority override-bearing condition on
// the target and the actor that inflicted it. Type name breaks priority ties
// deterministically; within a type, the earliest-applied instance wins.
func (m *Manager) dominantOverride(target actor.ID) (Definition, actor.ID, bool) {
	var insts []*Instance
	for _, inst := range m.active[target] {
		if catalog[inst.Type].Override != nil {
			insts = append(insts, inst)
		}
	}
	if len(insts) == 0 {
		return Definition{}, "", false
	}
	sort.SliceStable(insts, func(i, j int) bool {
		pi, pj := catalog[insts[i].Type].Priority, catalog[insts[j].Type].Priority
		if pi != pj {
			return pi > pj
		}
		return insts[i].Type < insts[j].Type
	})
	return catalog[insts[0].Type], insts[0].Source, true
}

func creatureRef(id actor.ID) logging.EntityRef {
	return logging.EntityRef{ID: string(id), Kind: logging.EntityKindCreature}
}
