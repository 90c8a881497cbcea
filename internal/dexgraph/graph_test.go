package dexgraph

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonarb/aceton/internal/asset"
	"github.com/tonarb/aceton/internal/pool"
)

func mustPool(t *testing.T, salt byte, a0, a1 asset.Asset, r0, r1 int64) *pool.Pool {
	t.Helper()
	return pool.New(asset.Address{Hash: [32]byte{salt}}, pool.Volatile, a0, a1,
		big.NewInt(r0), big.NewInt(r1), big.NewRat(0, 1))
}

func TestAddPoolRejectsInactive(t *testing.T) {
	g := New()
	n := asset.Native
	j1 := asset.Token(asset.Address{Hash: [32]byte{1}})
	dead := mustPool(t, 1, n, j1, 0, 10)
	err := g.AddPool(dead)
	assert.Error(t, err)
	assert.Equal(t, 0, g.NumVertices())
}

func TestWeightConsistency(t *testing.T) {
	g := New()
	n := asset.Native
	j1 := asset.Token(asset.Address{Hash: [32]byte{1}})
	p := mustPool(t, 1, n, j1, 10_000, 20_000)
	require.NoError(t, g.AddPool(p))

	v0, _ := g.AssetVertex(n)
	edges := g.EdgesFrom(v0)
	require.Len(t, edges, 1)
	wantWeight := -math.Log2(p.EffectiveRate(n))
	assert.InDelta(t, wantWeight, edges[0].Weight, 1e-9)

	changed, err := g.UpdatePoolReserves(p.Address, big.NewInt(5_000), big.NewInt(20_000))
	require.NoError(t, err)
	assert.True(t, changed)

	updatedPool, _ := g.Pool(p.Address)
	edgesAfter := g.EdgesFrom(v0)
	wantWeightAfter := -math.Log2(updatedPool.EffectiveRate(n))
	assert.InDelta(t, wantWeightAfter, edgesAfter[0].Weight, 1e-9)
	assert.NotEqual(t, edges[0].Weight, edgesAfter[0].Weight)
}

func TestUpdatePoolReservesNoChange(t *testing.T) {
	g := New()
	n := asset.Native
	j1 := asset.Token(asset.Address{Hash: [32]byte{1}})
	p := mustPool(t, 1, n, j1, 10_000, 20_000)
	require.NoError(t, g.AddPool(p))

	changed, err := g.UpdatePoolReserves(p.Address, big.NewInt(10_000), big.NewInt(20_000))
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSnapshotIsolatedFromLiveMutation(t *testing.T) {
	g := New()
	n := asset.Native
	j1 := asset.Token(asset.Address{Hash: [32]byte{1}})
	p := mustPool(t, 1, n, j1, 10_000, 20_000)
	require.NoError(t, g.AddPool(p))

	snap := g.Snapshot()
	v0, _ := snap.AssetVertex(n)
	before := snap.EdgesFrom(v0)[0].Weight

	_, err := g.UpdatePoolReserves(p.Address, big.NewInt(1_000), big.NewInt(20_000))
	require.NoError(t, err)

	after := snap.EdgesFrom(v0)[0].Weight
	assert.Equal(t, before, after, "snapshot must not observe later live updates")
}

func TestAddPoolCreatesBothDirectedEdges(t *testing.T) {
	g := New()
	n := asset.Native
	j1 := asset.Token(asset.Address{Hash: [32]byte{1}})
	p := mustPool(t, 1, n, j1, 10_000, 20_000)
	require.NoError(t, g.AddPool(p))

	v0, _ := g.AssetVertex(n)
	v1, _ := g.AssetVertex(j1)
	assert.Len(t, g.EdgesFrom(v0), 1)
	assert.Len(t, g.EdgesFrom(v1), 1)
}
