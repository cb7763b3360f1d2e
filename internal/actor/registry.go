package actor

import (
	"sort"

	"deepwarren/server/internal/grid"
)

// Registry indexes actors by ID with deterministic iteration order.
type Registry struct {
	byID  map[ID]*State
	order []ID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[ID]*State)}
}

// Add registers an actor, replacing any previous entry with the same ID.
func (r *Registry) Add(state *State) {
	if r == nil || state == nil || state.ID == "" {
		return
	}
	if _, exists := r.byID[state.ID]; !exists {
		r.order = append(r.order, state.ID)
		sort.Slice(r.order, func(i, j int) bool { return r.order[i] < r.order[j] })
	}
	r.byID[state.ID] = state
}

// Remove drops an actor from the registry. Handles pointing at it simply stop
// resolving.
func (r *Registry) Remove(id ID) {
	if r == nil {
		return
	}
	if _, exists := r.byID[id]; !exists {
		return
	}
	delete(r.byID, id)
	for i, candidate := range r.order {
		if candidate == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get resolves a handle. The second result is false when the actor was
// removed or never existed.
func (r *Registry) Get(id ID) (*State, bool) {
	if r == nil || id == "" {
		return nil, false
	}
	state, ok := r.byID[id]
	return state, ok
}

// All returns every registered actor in ID order.
func (r *Registry) All() []*State {
	if r == nil {
		return nil
	}
	actors := make([]*State, 0, len(r.order))
	for _, id := range r.order {
		if state, ok := r.byID[id]; ok {
			actors = append(actors, state)
		}
	}
	return actors
}

// OccupantAt returns the living actor standing on a tile, if any. With one
// actor per tile the first match wins; iteration order keeps it stable.
func (r *Registry) OccupantAt(p grid.Point) (*State, bool) {
	if r == nil {
		return nil, false
	}
	for _, id := range r.order {
		state, ok := r.byID[id]
		if !ok || !state.Alive() {
			continue
		}
		if state.Pos == p {
			return state, true
		}
	}
	return nil, false
}

// Hostile reports whether two actors belong to opposing factions.
func Hostile(a, b *State) bool {
	if a == nil || b == nil || a.ID == b.ID {
		return false
	}
	return a.Faction != b.Faction
}

// Allied reports whether two distinct actors share a faction.
func Allied(a, b *State) bool {
	if a == nil || b == nil || a.ID == b.ID {
		return false
	}
	return a.Faction == b.Faction
}
