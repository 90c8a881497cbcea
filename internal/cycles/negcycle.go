// Package cycles implements the iterative depth-first negative-cycle
// search rooted at a fixed start vertex. The algorithm is ported exactly
// from the reference implementation's NegativeCycles iterator: a path
// stack of (vertex, accumulated cost, remaining edges) frames, an ancestor
// revisit rule, and an edge-reuse rule.
package cycles

import "github.com/tonarb/aceton/internal/dexgraph"

// GraphView is the read-only surface the search needs: a vertex count and,
// per vertex, its finite-weight outgoing edges. Both dexgraph.Graph and
// dexgraph.Snapshot satisfy it.
type GraphView interface {
	NumVertices() int
	EdgesFrom(v int) []dexgraph.Edge
}

// Cycle is one emitted negative-weight cycle: the directed edges traversed
// in order, starting and ending at the search's start vertex, plus their
// summed weight (always < 0, see Iterator's doc comment).
type Cycle struct {
	Edges       []dexgraph.Edge
	TotalWeight float64
}

type frame struct {
	vertex int
	cost   float64
	edges  []dexgraph.Edge
	pos    int
}

// Iterator lazily enumerates cycles through start whose edge weights sum to
// a negative number, in edge-order of each vertex's adjacency list. No edge
// is used twice in a cycle; a vertex may recur when the revisit reaches it
// at a strictly lower accumulated cost than its earlier visit.
//
// The algorithm's ancestor revisit rule, applied to every frame on the
// stack including the start frame (whose accumulated cost is always zero),
// means a return to the start is only ever accepted when the accumulated
// cost at that point is strictly negative — so this iterator always emits
// negative-sum cycles, resolving the "accept any cycle vs. sum < 0"
// ambiguity in favor of the latter.
type Iterator struct {
	g         GraphView
	maxLength int // 0 means unbounded
	stack     []frame
	path      []dexgraph.Edge
}

// New starts an iterator rooted at start. maxLength bounds the number of
// edges per cycle; 0 means unbounded.
func New(g GraphView, start int, maxLength int) *Iterator {
	it := &Iterator{g: g, maxLength: maxLength}
	it.Restart(start)
	return it
}

// Restart resets the search to begin again from start.
func (it *Iterator) Restart(start int) {
	it.stack = it.stack[:0]
	it.stack = append(it.stack, frame{vertex: start, cost: 0, edges: it.g.EdgesFrom(start)})
	it.path = it.path[:0]
}

// Next advances the search and returns the next cycle, or ok=false once
// the search space is exhausted.
func (it *Iterator) Next() (Cycle, bool) {
	for {
		if len(it.stack) == 0 {
			return Cycle{}, false
		}
		top := &it.stack[len(it.stack)-1]

		if top.pos >= len(top.edges) {
			if len(it.path) > 0 {
				it.path = it.path[:len(it.path)-1]
			}
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}

		nextEdge := top.edges[top.pos]
		top.pos++
		nextCost := top.cost + nextEdge.Weight

		skip := false
		for i, f := range it.stack {
			if nextEdge.To == f.vertex && nextCost >= f.cost {
				skip = true
				break
			}
			if i > 0 && it.path[i-1].ID() == nextEdge.ID() {
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		if nextEdge.To == it.stack[0].vertex {
			cycle := make([]dexgraph.Edge, len(it.path)+1)
			copy(cycle, it.path)
			cycle[len(cycle)-1] = nextEdge
			return Cycle{Edges: cycle, TotalWeight: nextCost}, true
		}

		if it.maxLength > 0 && len(it.path) == it.maxLength-1 {
			continue
		}

		it.path = append(it.path, nextEdge)
		it.stack = append(it.stack, frame{vertex: nextEdge.To, cost: nextCost, edges: it.g.EdgesFrom(nextEdge.To)})
	}
}

// All drains the iterator into a slice. Intended for tests and small
// graphs; the execution loop should prefer Next for bounded work per
// iteration.
func All(g GraphView, start int, maxLength int) []Cycle {
	it := New(g, start, maxLength)
	var out []Cycle
	for {
		c, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, c)
	}
}
