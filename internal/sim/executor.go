package sim

import (
	"context"

	"deepwarren/server/internal/abilities"
	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/ai"
	"deepwarren/server/internal/conditions"
	"deepwarren/server/internal/grid"
	"deepwarren/server/logging"
	logcombat "deepwarren/server/logging/combat"
	logsim "deepwarren/server/logging/simulation"
)

const (
	baseMeleeDamage = 3
	shoutRadius     = 10
)

// effect is what an ability does when it lands.
type effect struct {
	Damage   int
	Healing  int
	SelfOnly bool
	Inflicts conditions.Type
}

var abilityEffects = map[string]effect{
	"bite":         {Damage: 3},
	"club":         {Damage: 4},
	"claw":         {Damage: 2},
	"sling":        {Damage: 2},
	"venom-spit":   {Damage: 1, Inflicts: conditions.Daze},
	"heal-draught": {Healing: 5, SelfOnly: true},
	"oil-flask":    {Damage: 2, Inflicts: conditions.Fear},
}

// executor is the Engine acting as the primitive-action resolver. A separate
// type keeps the action surface apart from the engine's own methods while
// sharing its state.
type executor Engine

func (x *executor) engine() *Engine { return (*Engine)(x) }

// spend enforces the one-action rule. The first successful action per turn
// claims the actor's turn; everything after fails closed.
func (x *executor) spend(id actor.ID) (*actor.State, bool) {
	if x.acted[id] {
		return nil, false
	}
	state, ok := x.actors.Get(id)
	if !ok || !state.Alive() {
		return nil, false
	}
	x.acted[id] = true
	return state, true
}

func (x *executor) Move(id actor.ID, dir grid.Direction) ai.ActionResult {
	if dir.IsZero() {
		return ai.ActionResult{OK: false, Message: "no direction"}
	}
	state, ok := x.spend(id)
	if !ok {
		return ai.ActionResult{OK: false, Message: "cannot act"}
	}
	dest := state.Pos.Add(dir)
	if !x.dungeon.Walkable(dest) {
		x.acted[id] = false
		return ai.ActionResult{OK: false, Message: "blocked by wall"}
	}
	if _, occupied := x.actors.OccupantAt(dest); occupied {
		x.acted[id] = false
		return ai.ActionResult{OK: false, Message: "tile occupied"}
	}
	state.Pos = dest
	return ai.ActionResult{OK: true}
}

func (x *executor) Attack(attacker, target actor.ID) ai.ActionResult {
	victim, ok := x.actors.Get(target)
	if !ok || !victim.Alive() {
		return ai.ActionResult{OK: false, Message: "no target"}
	}
	state, ok := x.spend(attacker)
	if !ok {
		return ai.ActionResult{OK: false, Message: "cannot act"}
	}
	if !grid.Adjacent(state.Pos, victim.Pos) {
		x.acted[attacker] = false
		return ai.ActionResult{OK: false, Message: "out of reach"}
	}
	x.applyHit(state, victim, "", effect{Damage: baseMeleeDamage})
	return ai.ActionResult{OK: true}
}

func (x *executor) UseAbility(user actor.ID, ability string, target actor.ID) ai.ActionResult {
	def, ok := abilities.Lookup(ability)
	if !ok {
		return ai.ActionResult{OK: false, Message: "unknown ability"}
	}
	eff, ok := abilityEffects[ability]
	if !ok {
		return ai.ActionResult{OK: false, Message: "unknown ability"}
	}
	state, ok := x.spend(user)
	if !ok {
		return ai.ActionResult{OK: false, Message: "cannot act"}
	}

	if eff.SelfOnly {
		x.applyHit(state, state, ability, eff)
		return ai.ActionResult{OK: true}
	}

	victim, ok := x.actors.Get(target)
	if !ok || !victim.Alive() {
		x.acted[user] = false
		return ai.ActionResult{OK: false, Message: "no target"}
	}
	dist := grid.Chebyshev(state.Pos, victim.Pos)
	if def.Range > 0 && dist > def.Range {
		x.acted[user] = false
		return ai.ActionResult{OK: false, Message: "out of range"}
	}
	if def.NeedsLineOfSight && !x.dungeon.LineOfSight(state.Pos, victim.Pos) {
		x.acted[user] = false
		return ai.ActionResult{OK: false, Message: "no line of sight"}
	}
	x.applyHit(state, victim, ability, eff)
	return ai.ActionResult{OK: true}
}

func (x *executor) PickUp(id actor.ID) ai.ActionResult {
	state, ok := x.spend(id)
	if !ok {
		return ai.ActionResult{OK: false, Message: "cannot act"}
	}
	item, ok := x.items.TakeAt(state.Pos)
	if !ok {
		x.acted[id] = false
		return ai.ActionResult{OK: false, Message: "nothing here"}
	}
	x.items.Give(id, item)
	logsim.ItemPicked(context.Background(), x.publisher, x.turn, creatureRef(state),
		logsim.ItemPickedPayload{Item: item, X: state.Pos.X, Y: state.Pos.Y})
	return ai.ActionResult{OK: true, Message: item}
}

func (x *executor) Wait(id actor.ID) ai.ActionResult {
	if _, ok := x.spend(id); !ok {
		return ai.ActionResult{OK: false, Message: "cannot act"}
	}
	return ai.ActionResult{OK: true}
}

// Shout spends the turn calling for help. Every ally within walking earshot
// is interrupted with an approach toward the shouter.
func (x *executor) Shout(id actor.ID) ai.ActionResult {
	state, ok := x.spend(id)
	if !ok {
		return ai.ActionResult{OK: false, Message: "cannot act"}
	}
	alerted := 0
	for _, other := range x.engine().earshot(state.Pos) {
		if !actor.Allied(state, other) {
			continue
		}
		mind, ok := x.minds[other.ID]
		if !ok {
			continue
		}
		mind.Alert(ai.ApproachActor(state.ID, 1))
		alerted++
	}
	logcombat.Shout(context.Background(), x.publisher, x.turn, creatureRef(state),
		logcombat.ShoutPayload{AlliesAlerted: alerted})
	return ai.ActionResult{OK: true}
}

// applyHit resolves damage, healing, and inflicted conditions for one landed
// action, then checks for death.
func (x *executor) applyHit(attacker, victim *actor.State, ability string, eff effect) {
	if eff.Healing > 0 {
		victim.Health += eff.Healing
		if victim.Health > victim.MaxHealth {
			victim.Health = victim.MaxHealth
		}
	}
	if eff.Damage > 0 {
		victim.Health -= eff.Damage
		x.conds.NotifyDamage(x.turn, victim.ID)
	}
	logcombat.AttackLanded(context.Background(), x.publisher, x.turn,
		creatureRef(attacker), creatureRef(victim),
		logcombat.AttackPayload{Ability: ability, Damage: eff.Damage, Healing: eff.Healing})

	if victim.Alive() {
		if eff.Inflicts != "" {
			x.conds.Apply(x.turn, eff.Inflicts, attacker.ID, victim.ID)
		}
		return
	}
	logcombat.CreatureDied(context.Background(), x.publisher, x.turn, creatureRef(victim),
		logcombat.DiedPayload{KillerID: string(attacker.ID)})
}

func creatureRef(s *actor.State) logging.EntityRef {
	return logging.EntityRef{ID: string(s.ID), Kind: logging.EntityKindCreature}
}
