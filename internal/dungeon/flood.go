package dungeon

import "deepwarren/server/internal/grid"

// FloodDistances runs a breadth-first flood from origin over walkable tiles
// and returns the step count to every tile reached within maxSteps. Diagonal
// and orthogonal steps both cost one, matching movement rules. The origin is
// included with distance zero.
func (m *Map) FloodDistances(origin grid.Point, maxSteps int) map[grid.Point]int {
	if m == nil || !m.InBounds(origin) || maxSteps < 0 {
		return nil
	}
	distances := map[grid.Point]int{origin: 0}
	frontier := []grid.Point{origin}
	for steps := 1; steps <= maxSteps && len(frontier) > 0; steps++ {
		next := frontier[:0:0]
		for _, p := range frontier {
			for _, d := range grid.Directions {
				neighbor := p.Add(d)
				if !m.Walkable(neighbor) {
					continue
				}
				if _, seen := distances[neighbor]; seen {
					continue
				}
				distances[neighbor] = steps
				next = append(next, neighbor)
			}
		}
		frontier = next
	}
	return distances
}
