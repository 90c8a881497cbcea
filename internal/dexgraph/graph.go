// Package dexgraph maps assets to vertex indices and pools to paired
// directed edges, recomputing edge weights whenever reserves change.
package dexgraph

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/tonarb/aceton/internal/asset"
	"github.com/tonarb/aceton/internal/pool"
)

// Edge is one directed traversal of a pool: from the vertex it is stored
// under, to To, weighing Weight, via Pool in the direction that consumes
// AssetIn.
type Edge struct {
	To      int
	Weight  float64
	Pool    *pool.Pool
	AssetIn asset.Asset
}

type edgeLocation struct {
	vertex int
	index  int
}

type poolEntry struct {
	pool *pool.Pool
	fwd  edgeLocation
	rev  edgeLocation
}

// Graph is a directed multigraph over assets: vertex set is every asset
// seen in an active pool, edges are the two directions of each pool. It is
// mutated only by the execution loop (AddPool at startup, UpdatePoolReserves on
// each refresh); concurrent readers should take a Snapshot.
type Graph struct {
	mu         sync.RWMutex
	assets     []asset.Asset
	assetIndex map[asset.Asset]int
	adjacency  [][]Edge
	pools      map[asset.Address]*poolEntry
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		assetIndex: make(map[asset.Asset]int),
		pools:      make(map[asset.Address]*poolEntry),
	}
}

func (g *Graph) addAssetLocked(a asset.Asset) int {
	if id, ok := g.assetIndex[a]; ok {
		return id
	}
	id := len(g.assets)
	g.assets = append(g.assets, a)
	g.assetIndex[a] = id
	g.adjacency = append(g.adjacency, nil)
	return id
}

// AssetVertex returns the vertex id for a, if it has been added.
func (g *Graph) AssetVertex(a asset.Asset) (int, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.assetIndex[a]
	return id, ok
}

// NumVertices returns the number of assets tracked.
func (g *Graph) NumVertices() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.assets)
}

// HasPool reports whether addr is already tracked.
func (g *Graph) HasPool(addr asset.Address) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.pools[addr]
	return ok
}

// AddPool rejects inactive pools, adds any missing asset vertices, and
// appends the pool's two directed edges with their computed weights.
func (g *Graph) AddPool(p *pool.Pool) error {
	if !p.IsActive() {
		return fmt.Errorf("dexgraph: pool %s is not active (reserves must both be >= 1)", p.Address)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.pools[p.Address]; exists {
		return fmt.Errorf("dexgraph: pool %s already added", p.Address)
	}

	a0, a1 := p.Assets[0], p.Assets[1]
	v0 := g.addAssetLocked(a0)
	v1 := g.addAssetLocked(a1)

	fwdEdge := Edge{To: v1, Weight: edgeWeight(p.EffectiveRate(a0)), Pool: p, AssetIn: a0}
	revEdge := Edge{To: v0, Weight: edgeWeight(p.EffectiveRate(a1)), Pool: p, AssetIn: a1}

	g.adjacency[v0] = append(g.adjacency[v0], fwdEdge)
	fwdLoc := edgeLocation{vertex: v0, index: len(g.adjacency[v0]) - 1}

	g.adjacency[v1] = append(g.adjacency[v1], revEdge)
	revLoc := edgeLocation{vertex: v1, index: len(g.adjacency[v1]) - 1}

	g.pools[p.Address] = &poolEntry{pool: p, fwd: fwdLoc, rev: revLoc}
	return nil
}

// UpdatePoolReserves replaces a tracked pool's reserves with a freshly
// built pool value (never mutated in place, so outstanding Snapshots stay
// consistent) and recomputes both of its edges' weights. Returns whether
// the reserves actually changed.
func (g *Graph) UpdatePoolReserves(addr asset.Address, r0, r1 *big.Int) (changed bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.pools[addr]
	if !ok {
		return false, fmt.Errorf("dexgraph: unknown pool %s", addr)
	}

	old := entry.pool
	if old.Reserves[0].Cmp(r0) == 0 && old.Reserves[1].Cmp(r1) == 0 {
		return false, nil
	}

	updated := pool.New(old.Address, old.Type, old.Assets[0], old.Assets[1], r0, r1, old.Fee)
	entry.pool = updated

	a0, a1 := updated.Assets[0], updated.Assets[1]
	g.adjacency[entry.fwd.vertex][entry.fwd.index] = Edge{
		To: entry.rev.vertex, Weight: edgeWeight(updated.EffectiveRate(a0)), Pool: updated, AssetIn: a0,
	}
	g.adjacency[entry.rev.vertex][entry.rev.index] = Edge{
		To: entry.fwd.vertex, Weight: edgeWeight(updated.EffectiveRate(a1)), Pool: updated, AssetIn: a1,
	}
	return true, nil
}

// EdgesFrom returns the finite-weight outgoing edges of vertex v —
// edge_filter_finite_weight applied at read time, so a mid-refresh
// degenerate pool never reaches the cycle search.
func (g *Graph) EdgesFrom(v int) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return filterFinite(g.adjacency[v])
}

func filterFinite(edges []Edge) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if isFiniteWeight(e.Weight) {
			out = append(out, e)
		}
	}
	return out
}

// Pool returns the tracked pool for addr, if any.
func (g *Graph) Pool(addr asset.Address) (*pool.Pool, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	entry, ok := g.pools[addr]
	if !ok {
		return nil, false
	}
	return entry.pool, true
}

// NumPools returns the number of tracked pools.
func (g *Graph) NumPools() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.pools)
}

// PoolAddresses returns every tracked pool's address, for callers that fan
// out a reserve refresh across the whole graph.
func (g *Graph) PoolAddresses() []asset.Address {
	g.mu.RLock()
	defer g.mu.RUnlock()
	addrs := make([]asset.Address, 0, len(g.pools))
	for addr := range g.pools {
		addrs = append(addrs, addr)
	}
	return addrs
}
