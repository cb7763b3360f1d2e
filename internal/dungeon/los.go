package dungeon

import "deepwarren/server/internal/grid"

// LineOfSight reports whether a straight line between two tiles stays on
// walkable ground. The endpoints themselves are not required to be walkable
// so an actor standing in a doorway can still be seen.
func (m *Map) LineOfSight(a, b grid.Point) bool {
	if m == nil {
		return false
	}
	if !m.InBounds(a) || !m.InBounds(b) {
		return false
	}
	for _, p := range bresenham(a, b) {
		if p == a || p == b {
			continue
		}
		if !m.Walkable(p) {
			return false
		}
	}
	return true
}

// bresenham traces the integer line from a to b, endpoints included.
func bresenham(a, b grid.Point) []grid.Point {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx := 1
	if a.X > b.X {
		sx = -1
	}
	sy := 1
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy

	points := make([]grid.Point, 0, max(dx, -dy)+1)
	cur := a
	for {
		points = append(points, cur)
		if cur == b {
			return points
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			cur.X += sx
		}
		if e2 <= dx {
			err += dx
			cur.Y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
