package simulation

import (
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/lao-tseu-is-alive/go-flocking-simulation/pkg/geometry"
)

// IndexKind selects the neighbor query implementation of a Flock.
type IndexKind int

const (
	// IndexNaive scans the full agent slice on every query. This is the
	// reference semantics: O(n) per agent per behavior, O(n^2) per tick.
	// The cost is a documented property of this simulation, not a bug.
	IndexNaive IndexKind = iota
	// IndexGrid buckets agents into a uniform spatial hash rebuilt each
	// tick and scans the 3x3 block of cells around the query point.
	IndexGrid
	// IndexRTree bulk-loads an R-tree each tick and queries it with the
	// radius bounding box.
	IndexRTree
)

// neighborIndex answers radius queries against the frozen pre-tick agent
// snapshot. rebuild is called once per tick after population
// reconciliation; within must return exactly the agents the naive scan
// would return, in ascending slot order, so every implementation is a
// drop-in replacement for the reference one.
type neighborIndex interface {
	rebuild(agents []Agent, cellSize float64)
	within(center geometry.Vector2D, radius float64, exclude int, out []int) []int
}

func newNeighborIndex(kind IndexKind) neighborIndex {
	switch kind {
	case IndexGrid:
		return &gridIndex{cells: make(map[gridKey][]int)}
	case IndexRTree:
		return &rtreeIndex{}
	default:
		return &scanIndex{}
	}
}

// ---------------------------------------------------------------------
// Naive full scan
// ---------------------------------------------------------------------

type scanIndex struct {
	agents []Agent
}

func (s *scanIndex) rebuild(agents []Agent, _ float64) {
	s.agents = agents
}

func (s *scanIndex) within(center geometry.Vector2D, radius float64, exclude int, out []int) []int {
	radiusSqr := radius * radius
	for i := range s.agents {
		if i == exclude {
			continue
		}
		if center.DistanceSquaredTo(s.agents[i].Pos) < radiusSqr {
			out = append(out, i)
		}
	}
	return out
}

// ---------------------------------------------------------------------
// Uniform spatial hash
// ---------------------------------------------------------------------

type gridKey struct {
	x, y int
}

type gridIndex struct {
	agents   []Agent
	cells    map[gridKey][]int
	cellSize float64
}

func (g *gridIndex) rebuild(agents []Agent, cellSize float64) {
	g.agents = agents
	// Cell size must cover the largest query radius so the 3x3 block
	// around a cell contains every candidate. Floor of 10 avoids tiny
	// cells and division by zero.
	if cellSize < 10 {
		cellSize = 10
	}
	g.cellSize = cellSize

	// Reset slices to length 0 but keep capacity, reusing the underlying
	// arrays instead of reallocating every tick.
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	for i := range agents {
		k := g.keyFor(agents[i].Pos)
		g.cells[k] = append(g.cells[k], i)
	}
}

func (g *gridIndex) keyFor(p geometry.Vector2D) gridKey {
	return gridKey{x: int(p.X / g.cellSize), y: int(p.Y / g.cellSize)}
}

func (g *gridIndex) within(center geometry.Vector2D, radius float64, exclude int, out []int) []int {
	radiusSqr := radius * radius
	ck := g.keyFor(center)
	start := len(out)

	for x := ck.x - 1; x <= ck.x+1; x++ {
		for y := ck.y - 1; y <= ck.y+1; y++ {
			for _, i := range g.cells[gridKey{x: x, y: y}] {
				if i == exclude {
					continue
				}
				if center.DistanceSquaredTo(g.agents[i].Pos) < radiusSqr {
					out = append(out, i)
				}
			}
		}
	}
	// Cell iteration order is map order; restore the slot order the
	// naive scan guarantees.
	slices.Sort(out[start:])
	return out
}

// ---------------------------------------------------------------------
// R-tree
// ---------------------------------------------------------------------

type rtreeEntry struct {
	idx  int
	rect rtreego.Rect
}

func (e *rtreeEntry) Bounds() rtreego.Rect {
	return e.rect
}

type rtreeIndex struct {
	agents []Agent
	tree   *rtreego.Rtree
}

func (r *rtreeIndex) rebuild(agents []Agent, _ float64) {
	r.agents = agents
	entries := make([]rtreego.Spatial, len(agents))
	for i := range agents {
		entries[i] = &rtreeEntry{
			idx:  i,
			rect: rtreego.Point{agents[i].Pos.X, agents[i].Pos.Y}.ToRect(0.001),
		}
	}
	r.tree = rtreego.NewTree(2, 25, 50, entries...)
}

func (r *rtreeIndex) within(center geometry.Vector2D, radius float64, exclude int, out []int) []int {
	if radius <= 0 {
		return out
	}
	bb, err := rtreego.NewRect(
		rtreego.Point{center.X - radius, center.Y - radius},
		[]float64{2 * radius, 2 * radius},
	)
	if err != nil {
		return out
	}
	radiusSqr := radius * radius
	start := len(out)

	// The bounding box over-approximates the disc; refine with the exact
	// squared-distance check.
	for _, sp := range r.tree.SearchIntersect(bb) {
		i := sp.(*rtreeEntry).idx
		if i == exclude {
			continue
		}
		if center.DistanceSquaredTo(r.agents[i].Pos) < radiusSqr {
			out = append(out, i)
		}
	}
	slices.Sort(out[start:])
	return out
}
