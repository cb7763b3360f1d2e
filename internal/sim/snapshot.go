package sim

// Snapshot is the observer-facing view of one completed turn. All fields are
// plain values safe to serialize off the simulation goroutine.
type Snapshot struct {
	Turn      uint64      `json:"turn"`
	MapWidth  int         `json:"mapWidth"`
	MapHeight int         `json:"mapHeight"`
	Actors    []ActorView `json:"actors"`
	Items     []ItemView  `json:"items"`
}

// ActorView is one creature as observers see it.
type ActorView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Faction    string   `json:"faction"`
	X          int      `json:"x"`
	Y          int      `json:"y"`
	Health     int      `json:"health"`
	MaxHealth  int      `json:"maxHealth"`
	Goals      []string `json:"goals"`
	Conditions []string `json:"conditions,omitempty"`
}

// ItemView is one ground item.
type ItemView struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// Snapshot captures the current world state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Turn:      e.turn,
		MapWidth:  e.dungeon.Width(),
		MapHeight: e.dungeon.Height(),
		Items:     e.items.groundView(),
	}
	for _, state := range e.actors.All() {
		view := ActorView{
			ID:        string(state.ID),
			Name:      state.Name,
			Kind:      state.Kind,
			Faction:   string(state.Faction),
			X:         state.Pos.X,
			Y:         state.Pos.Y,
			Health:    state.Health,
			MaxHealth: state.MaxHealth,
		}
		if mind, ok := e.minds[state.ID]; ok {
			view.Goals = mind.Stack().Names()
		}
		for _, inst := range e.conds.ActiveOn(state.ID) {
			view.Conditions = append(view.Conditions, string(inst.Type))
		}
		snap.Actors = append(snap.Actors, view)
	}
	return snap
}
