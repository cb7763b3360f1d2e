package dungeon

import (
	"container/heap"
	"math"

	"deepwarren/server/internal/grid"
)

type pathNeighbor struct {
	dir      grid.Direction
	cost     float64
	diagonal bool
}

var pathNeighborOffsets = [...]pathNeighbor{
	{dir: grid.North, cost: 1},
	{dir: grid.East, cost: 1},
	{dir: grid.South, cost: 1},
	{dir: grid.West, cost: 1},
	{dir: grid.NorthEast, cost: math.Sqrt2, diagonal: true},
	{dir: grid.SouthEast, cost: math.Sqrt2, diagonal: true},
	{dir: grid.SouthWest, cost: math.Sqrt2, diagonal: true},
	{dir: grid.NorthWest, cost: math.Sqrt2, diagonal: true},
}

// FindPath runs A* over the eight-connected tile grid and returns the ordered
// tiles from just after start up to and including goal. Tiles in blocked are
// treated as walls except for the goal itself, so a path can terminate next
// to an occupied target tile.
func (m *Map) FindPath(start, goal grid.Point, blocked map[grid.Point]struct{}) ([]grid.Point, bool) {
	if m == nil {
		return nil, false
	}
	if !m.Walkable(start) || !m.Walkable(goal) {
		return nil, false
	}
	if start == goal {
		return []grid.Point{}, true
	}

	open := &pathQueue{}
	heap.Init(open)
	heap.Push(open, &pathNode{point: start, g: 0, f: heuristic(start, goal)})
	gScore := map[grid.Point]float64{start: 0}
	closed := make(map[grid.Point]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if _, seen := closed[current.point]; seen {
			continue
		}
		closed[current.point] = struct{}{}
		if current.point == goal {
			return reconstructPath(current), true
		}

		for _, delta := range pathNeighborOffsets {
			next := current.point.Add(delta.dir)
			if !m.Walkable(next) {
				continue
			}
			if delta.diagonal && !m.canCutCorner(current.point, delta.dir, blocked) {
				continue
			}
			if blocked != nil && next != goal {
				if _, exists := blocked[next]; exists {
					continue
				}
			}
			if _, seen := closed[next]; seen {
				continue
			}
			tentativeG := current.g + delta.cost
			if prev, ok := gScore[next]; ok && tentativeG >= prev {
				continue
			}
			gScore[next] = tentativeG
			heap.Push(open, &pathNode{
				point:  next,
				g:      tentativeG,
				f:      tentativeG + heuristic(next, goal),
				parent: current,
			})
		}
	}
	return nil, false
}

// canCutCorner forbids diagonal moves that squeeze between two blocking
// tiles.
func (m *Map) canCutCorner(from grid.Point, d grid.Direction, blocked map[grid.Point]struct{}) bool {
	horiz := grid.Point{X: from.X + d.DX, Y: from.Y}
	vert := grid.Point{X: from.X, Y: from.Y + d.DY}
	if !m.Walkable(horiz) || !m.Walkable(vert) {
		return false
	}
	if blocked == nil {
		return true
	}
	if _, exists := blocked[horiz]; exists {
		return false
	}
	if _, exists := blocked[vert]; exists {
		return false
	}
	return true
}

// heuristic is the octile distance, admissible for eight-direction movement.
func heuristic(a, b grid.Point) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	if dx > dy {
		return dx + (math.Sqrt2-1)*dy
	}
	return dy + (math.Sqrt2-1)*dx
}

type pathNode struct {
	point  grid.Point
	g      float64
	f      float64
	index  int
	parent *pathNode
}

type pathQueue []*pathNode

func (pq pathQueue) Len() int { return len(pq) }

func (pq pathQueue) Less(i, j int) bool { return pq[i].f < pq[j].f }

func (pq pathQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *pathQueue) Push(x any) {
	n := len(*pq)
	item := x.(*pathNode)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// reconstructPath walks the parent chain and returns the tiles after start in
// travel order.
func reconstructPath(end *pathNode) []grid.Point {
	if end == nil {
		return nil
	}
	path := make([]grid.Point, 0)
	for node := end; node.parent != nil; node = node.parent {
		path = append(path, node.point)
	}
	for i := 0; i < len(path)/2; i++ {
		j := len(path) - 1 - i
		path[i], path[j] = path[j], path[i]
	}
	return path
}
