// Package dungeon implements the map services consumed by the decision core:
// walkability, line of sight, A* pathfinding, and flood-distance maps.
package dungeon

import (
	"fmt"
	"strings"

	"deepwarren/server/internal/grid"
)

// Map is a rectangular walkability grid. Tiles outside the bounds are never
// walkable.
type Map struct {
	width    int
	height   int
	walkable []bool
}

// NewMap allocates an open map of the given dimensions.
func NewMap(width, height int) *Map {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	m := &Map{
		width:    width,
		height:   height,
		walkable: make([]bool, width*height),
	}
	for i := range m.walkable {
		m.walkable[i] = true
	}
	return m
}

// Parse builds a map from a rune layout: '#' blocks, every other rune is
// floor. Rows may differ in length; short rows are padded with wall.
func Parse(layout string) (*Map, error) {
	lines := strings.Split(strings.Trim(layout, "\n"), "\n")
	if len(lines) == 0 {
		return nil, fmt.Errorf("dungeon: empty layout")
	}
	width := 0
	for _, line := range lines {
		if len(line) > width {
			width = len(line)
		}
	}
	if width == 0 {
		return nil, fmt.Errorf("dungeon: layout has no columns")
	}
	m := &Map{
		width:    width,
		height:   len(lines),
		walkable: make([]bool, width*len(lines)),
	}
	for y, line := range lines {
		for x := 0; x < width; x++ {
			if x >= len(line) {
				continue
			}
			if line[x] != '#' {
				m.walkable[y*width+x] = true
			}
		}
	}
	return m, nil
}

// Width returns the number of columns.
func (m *Map) Width() int {
	if m == nil {
		return 0
	}
	return m.width
}

// Height returns the number of rows.
func (m *Map) Height() int {
	if m == nil {
		return 0
	}
	return m.height
}

// InBounds reports whether the tile lies inside the map rectangle.
func (m *Map) InBounds(p grid.Point) bool {
	return m != nil && p.X >= 0 && p.Y >= 0 && p.X < m.width && p.Y < m.height
}

// Walkable reports whether the tile can be stood on. Out-of-bounds tiles are
// not walkable.
func (m *Map) Walkable(p grid.Point) bool {
	if !m.InBounds(p) {
		return false
	}
	return m.walkable[m.index(p)]
}

// SetWalkable overrides a single tile, ignoring out-of-bounds writes.
func (m *Map) SetWalkable(p grid.Point, walkable bool) {
	if !m.InBounds(p) {
		return
	}
	m.walkable[m.index(p)] = walkable
}

func (m *Map) index(p grid.Point) int {
	return p.Y*m.width + p.X
}
