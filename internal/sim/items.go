package sim

import (
	"sort"

	"deepwarren/server/internal/actor"
	"deepwarren/server/internal/grid"
)

// ItemStore tracks ground items, one per tile, plus per-creature carried
// counts.
type ItemStore struct {
	ground  map[grid.Point]string
	carried map[actor.ID]map[string]int
}

// NewItemStore builds an empty store.
func NewItemStore() *ItemStore {
	return &ItemStore{
		ground:  make(map[grid.Point]string),
		carried: make(map[actor.ID]map[string]int),
	}
}

// ItemAt reports whether a ground item sits on the tile.
func (s *ItemStore) ItemAt(p grid.Point) bool {
	_, ok := s.ground[p]
	return ok
}

// Place drops an item on a tile, replacing anything already there.
func (s *ItemStore) Place(p grid.Point, item string) {
	s.ground[p] = item
}

// TakeAt removes and returns the ground item on a tile.
func (s *ItemStore) TakeAt(p grid.Point) (string, bool) {
	item, ok := s.ground[p]
	if ok {
		delete(s.ground, p)
	}
	return item, ok
}

// Give adds one carried item to a creature.
func (s *ItemStore) Give(id actor.ID, item string) {
	if s.carried[id] == nil {
		s.carried[id] = make(map[string]int)
	}
	s.carried[id][item]++
}

// Carried returns a copy of a creature's inventory counts.
func (s *ItemStore) Carried(id actor.ID) map[string]int {
	out := make(map[string]int, len(s.carried[id]))
	for item, count := range s.carried[id] {
		out[item] = count
	}
	return out
}

// Drop clears a removed creature's inventory.
func (s *ItemStore) Drop(id actor.ID) {
	delete(s.carried, id)
}

// groundView lists ground items in deterministic order for snapshots.
func (s *ItemStore) groundView() []ItemView {
	views := make([]ItemView, 0, len(s.ground))
	for p, item := range s.ground {
		views = append(views, ItemView{Name: item, X: p.X, Y: p.Y})
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Y != views[j].Y {
			return views[i].Y < views[j].Y
		}
		return views[i].X < views[j].X
	})
	return views
}
