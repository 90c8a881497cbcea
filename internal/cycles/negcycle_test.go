package cycles

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonarb/aceton/internal/asset"
	"github.com/tonarb/aceton/internal/dexgraph"
	"github.com/tonarb/aceton/internal/pool"
)

// fakeGraph is a minimal GraphView built directly from adjacency lists, for
// porting the reference implementation's hand-built fixture graph without
// going through the full Pool/AddPool machinery.
type fakeGraph struct {
	adjacency [][]dexgraph.Edge
}

func (f *fakeGraph) NumVertices() int                      { return len(f.adjacency) }
func (f *fakeGraph) EdgesFrom(v int) []dexgraph.Edge        { return f.adjacency[v] }

// edge builds a dexgraph.Edge whose identity is distinguishable by name —
// good enough for the edge-reuse rule, since dexgraph.Edge.ID() only reads
// Pool.Address and AssetIn.
func edge(name string, to int, weight float64) dexgraph.Edge {
	var addr asset.Address
	copy(addr.Hash[:], name)
	return dexgraph.Edge{
		To:      to,
		Weight:  weight,
		Pool:    &pool.Pool{Address: addr},
		AssetIn: asset.Native,
	}
}

// TestFindsNegativeCycles ports the reference NegativeCycles test fixture
// verbatim: 4 nodes a,b,c,d, the same 11 weighted edges, expecting exactly
// the same 4 negative cycles by edge-name set.
func TestFindsNegativeCycles(t *testing.T) {
	const (
		a = 0
		b = 1
		c = 2
		d = 3
	)

	ab := edge("ab", b, 7.0)
	ad := edge("ad", d, 12.0)
	ba := edge("ba", a, -6.0)
	bd := edge("bd", d, 3.0)
	bc := edge("bc", c, 5.0)
	cb := edge("cb", b, -4.0)
	cd := edge("cd", d, -3.0)
	da := edge("da", a, -11.0)
	db := edge("db", b, -2.0)
	dc := edge("dc", c, 4.0)
	da1 := edge("da1", a, -12.0)

	g := &fakeGraph{adjacency: [][]dexgraph.Edge{
		a: {ab, ad},
		b: {ba, bd, bc},
		c: {cb, cd},
		d: {da, db, dc, da1},
	}}

	cycles := All(g, a, 0)

	got := make([]string, 0, len(cycles))
	for _, cyc := range cycles {
		got = append(got, namesKey(cyc))
	}
	sort.Strings(got)

	want := []string{
		namesKeyFrom("ab", "bc", "cd", "da"),
		namesKeyFrom("ab", "bc", "cd", "da1"),
		namesKeyFrom("ab", "bd", "da"),
		namesKeyFrom("ab", "bd", "da1"),
	}
	sort.Strings(want)

	require.Len(t, got, 4)
	assert.Equal(t, want, got)

	for _, cyc := range cycles {
		assert.True(t, cyc.TotalWeight < 0, "every emitted cycle must be strictly negative")
	}
}

func namePrefix(e dexgraph.Edge) int {
	for i, b := range e.Pool.Address.Hash {
		if b == 0 {
			return i
		}
	}
	return len(e.Pool.Address.Hash)
}

func edgeName(e dexgraph.Edge) string {
	return string(e.Pool.Address.Hash[:namePrefix(e)])
}

func namesKey(cyc Cycle) string {
	names := make([]string, len(cyc.Edges))
	for i, e := range cyc.Edges {
		names[i] = edgeName(e)
	}
	return namesKeyFrom(names...)
}

func namesKeyFrom(names ...string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ","
		}
		out += n
	}
	return out
}
