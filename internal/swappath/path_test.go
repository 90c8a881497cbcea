package swappath

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonarb/aceton/internal/asset"
	"github.com/tonarb/aceton/internal/pool"
)

func mkPool(t *testing.T, a0, a1 asset.Asset, r0, r1 int64) *pool.Pool {
	t.Helper()
	return pool.New(asset.Address{Hash: [32]byte{byte(r0 % 251)}}, pool.Volatile, a0, a1,
		big.NewInt(r0), big.NewInt(r1), big.NewRat(0, 1))
}

func TestPathIsCycle(t *testing.T) {
	n := asset.Native
	j1 := asset.Token(asset.Address{Hash: [32]byte{1}})
	j2 := asset.Token(asset.Address{Hash: [32]byte{2}})

	p1 := mkPool(t, n, j1, 10_000, 20_000)
	p2 := mkPool(t, j1, j2, 10_000, 10_000)
	p3 := mkPool(t, j2, n, 10_000, 5_000)

	path := New(n)
	path.Push(p1)
	path.Push(p2)
	path.Push(p3)

	assert.True(t, path.IsCycle())
	assert.Equal(t, 3, path.Len())
}

func TestPathEstimateSwapOutFolds(t *testing.T) {
	n := asset.Native
	j1 := asset.Token(asset.Address{Hash: [32]byte{1}})

	p1 := mkPool(t, n, j1, 10_000, 20_000)
	path := New(n)
	path.Push(p1)

	direct := p1.EstimateSwapOut(n, big.NewInt(1000))
	viaPath := path.EstimateSwapOut(big.NewInt(1000))
	assert.Equal(t, 0, direct.Cmp(viaPath))
}

func TestBuildNestedStepList(t *testing.T) {
	n := asset.Native
	j1 := asset.Token(asset.Address{Hash: [32]byte{1}})
	j2 := asset.Token(asset.Address{Hash: [32]byte{2}})

	p1 := mkPool(t, n, j1, 10_000, 20_000)
	p2 := mkPool(t, j1, j2, 10_000, 10_000)

	path := New(n)
	path.Push(p1)
	path.Push(p2)

	root := path.BuildNestedStepList()
	require.NotNil(t, root)
	assert.Equal(t, p1.Address, root.Pool)
	require.NotNil(t, root.Params.Next)
	assert.Equal(t, p2.Address, root.Params.Next.Pool)
	assert.Nil(t, root.Params.Next.Params.Next)
}
