// Package grid provides the tile geometry shared by the dungeon map and the
// NPC decision core.
package grid

// Point identifies a tile by column and row.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the tile reached by moving one step in the given direction.
func (p Point) Add(d Direction) Point {
	return Point{X: p.X + d.DX, Y: p.Y + d.DY}
}

// Chebyshev returns the chessboard distance between two tiles. Diagonal and
// orthogonal steps both count as one, matching the eight-direction movement
// rules.
func Chebyshev(a, b Point) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Adjacent reports whether two distinct tiles touch, diagonals included.
func Adjacent(a, b Point) bool {
	return a != b && Chebyshev(a, b) <= 1
}

// Direction is a single-tile offset. The zero value means "stay in place".
type Direction struct {
	DX int
	DY int
}

// None is the stay-in-place direction.
var None = Direction{}

// The eight movement directions in clockwise order starting north. The ring
// order is load-bearing: rotation helpers index into it.
var (
	North     = Direction{0, -1}
	NorthEast = Direction{1, -1}
	East      = Direction{1, 0}
	SouthEast = Direction{1, 1}
	South     = Direction{0, 1}
	SouthWest = Direction{-1, 1}
	West      = Direction{-1, 0}
	NorthWest = Direction{-1, -1}
)

// Directions lists the eight movement directions in clockwise ring order.
// Iteration over this slice is deterministic so seeded runs replay exactly.
var Directions = [8]Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// IsZero reports whether the direction is the stay-in-place offset.
func (d Direction) IsZero() bool {
	return d.DX == 0 && d.DY == 0
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	return Direction{DX: -d.DX, DY: -d.DY}
}

// RotateCW returns the direction one 45-degree step clockwise. Stay-in-place
// rotates to itself.
func (d Direction) RotateCW() Direction {
	idx, ok := ringIndex(d)
	if !ok {
		return d
	}
	return Directions[(idx+1)%len(Directions)]
}

// RotateCCW returns the direction one 45-degree step counter-clockwise.
func (d Direction) RotateCCW() Direction {
	idx, ok := ringIndex(d)
	if !ok {
		return d
	}
	return Directions[(idx+len(Directions)-1)%len(Directions)]
}

func ringIndex(d Direction) (int, bool) {
	for i, cand := range Directions {
		if cand == d {
			return i, true
		}
	}
	return 0, false
}

// Toward returns the unit step from one tile toward another, moving
// diagonally when both axes differ. Returns the zero direction when the
// tiles coincide.
func Toward(from, to Point) Direction {
	return Direction{DX: sign(to.X - from.X), DY: sign(to.Y - from.Y)}
}

// Away returns the unit step leading directly away from a threat tile.
func Away(from, threat Point) Direction {
	return Toward(from, threat).Opposite()
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
