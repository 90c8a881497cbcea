package dexgraph

import "github.com/tonarb/aceton/internal/asset"

// Snapshot is an immutable, point-in-time view of a Graph: the cycle
// search reads one snapshot per iteration while the live Graph may be
// concurrently mutated by the next refresh. Pool values referenced by a
// snapshot's edges are never mutated in place (see UpdatePoolReserves), so
// holding a Snapshot across a refresh is safe.
type Snapshot struct {
	assets     []asset.Asset
	assetIndex map[asset.Asset]int
	adjacency  [][]Edge
}

// Snapshot copies the graph's current vertex/edge structure. Adjacency
// slices are copied (not just their headers) so later in-place edge
// replacements in the live graph cannot leak into a held snapshot.
func (g *Graph) Snapshot() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	assets := append([]asset.Asset(nil), g.assets...)
	assetIndex := make(map[asset.Asset]int, len(g.assetIndex))
	for a, id := range g.assetIndex {
		assetIndex[a] = id
	}
	adjacency := make([][]Edge, len(g.adjacency))
	for i, edges := range g.adjacency {
		adjacency[i] = filterFinite(edges)
	}

	return &Snapshot{assets: assets, assetIndex: assetIndex, adjacency: adjacency}
}

// NumVertices returns the number of assets in the snapshot.
func (s *Snapshot) NumVertices() int { return len(s.assets) }

// AssetVertex returns the vertex id for a in this snapshot.
func (s *Snapshot) AssetVertex(a asset.Asset) (int, bool) {
	id, ok := s.assetIndex[a]
	return id, ok
}

// Asset returns the asset at vertex id.
func (s *Snapshot) Asset(id int) asset.Asset { return s.assets[id] }

// EdgesFrom returns the (already finite-weight-filtered) outgoing edges of
// vertex v.
func (s *Snapshot) EdgesFrom(v int) []Edge { return s.adjacency[v] }
