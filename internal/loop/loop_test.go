package loop

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tonarb/aceton/internal/asset"
	"github.com/tonarb/aceton/internal/dexgraph"
	"github.com/tonarb/aceton/internal/pool"
)

func tokenAsset(b byte) asset.Asset {
	var hash [32]byte
	hash[31] = b
	return asset.Token(asset.Address{Workchain: 0, Hash: hash})
}

func ratio(r0, r1 string) (*big.Int, *big.Int) {
	a, _ := new(big.Int).SetString(r0, 10)
	b, _ := new(big.Int).SetString(r1, 10)
	return a, b
}

// graphWithProfitableCycle builds a three-pool ring native -> A -> B ->
// native whose reserves are skewed so the round trip returns more than it
// spent, mirroring the reference fixture's triangular arbitrage setup.
func graphWithProfitableCycle(t *testing.T) *dexgraph.Graph {
	t.Helper()
	g := dexgraph.New()

	tokenA := tokenAsset(1)
	tokenB := tokenAsset(2)
	fee := big.NewRat(3, 1000)

	r0, r1 := ratio("1000000000000", "3000000000000")
	p1 := pool.New(asset.Address{Workchain: 0, Hash: [32]byte{1}}, pool.Volatile, asset.Native, tokenA, r0, r1, fee)

	r0, r1 = ratio("3000000000000", "3100000000000")
	p2 := pool.New(asset.Address{Workchain: 0, Hash: [32]byte{2}}, pool.Volatile, tokenA, tokenB, r0, r1, fee)

	r0, r1 = ratio("3100000000000", "1050000000000")
	p3 := pool.New(asset.Address{Workchain: 0, Hash: [32]byte{3}}, pool.Volatile, tokenB, asset.Native, r0, r1, fee)

	require.NoError(t, g.AddPool(p1))
	require.NoError(t, g.AddPool(p2))
	require.NoError(t, g.AddPool(p3))
	return g
}

func TestSearchBestCycleFindsProfitableRing(t *testing.T) {
	g := graphWithProfitableCycle(t)
	l := &Loop{
		cfg:   Config{BaseAsset: asset.Native, MaxCycleLength: 4}.WithDefaults(),
		graph: g,
	}

	amountIn := big.NewInt(1_000_000_000)
	path, out := l.searchBestCycle(amountIn)
	require.NotNil(t, path)
	require.NotNil(t, out)
	require.Greater(t, out.Cmp(amountIn), 0, "expected the cycle to return more than it spent")
	require.Len(t, path.Steps(), 3)
}

func TestSearchBestCycleNoVertexForBaseAsset(t *testing.T) {
	g := dexgraph.New()
	l := &Loop{
		cfg:   Config{BaseAsset: asset.Native, MaxCycleLength: 4}.WithDefaults(),
		graph: g,
	}

	path, out := l.searchBestCycle(big.NewInt(1))
	require.Nil(t, path)
	require.Nil(t, out)
}

func TestComputeAmountInReservesKeepMin(t *testing.T) {
	l := &Loop{cfg: Config{
		BaseAsset:      asset.Native,
		KeepMinNanoTON: 2_000_000_000,
		BalanceCoef:    big.NewRat(7, 10),
	}.WithDefaults()}

	amount, ok := l.computeAmountIn(10_000_000_000)
	require.True(t, ok)
	require.Equal(t, big.NewInt(5_600_000_000), amount)
}

func TestComputeAmountInBelowKeepMinSkips(t *testing.T) {
	l := &Loop{cfg: Config{
		BaseAsset:      asset.Native,
		KeepMinNanoTON: 2_000_000_000,
		BalanceCoef:    big.NewRat(7, 10),
	}.WithDefaults()}

	_, ok := l.computeAmountIn(1_000_000_000)
	require.False(t, ok)
}

func TestCooldownStaysWithinConfiguredBounds(t *testing.T) {
	l := New(Config{}, dexgraph.New(), nil, nil, nil, nil)
	l.cfg.CooldownMin = time.Nanosecond
	l.cfg.CooldownMax = 2 * time.Nanosecond

	for i := 0; i < 50; i++ {
		d := l.cooldown()
		require.GreaterOrEqual(t, d, l.cfg.CooldownMin)
		require.Less(t, d, l.cfg.CooldownMax)
	}
}

func TestRunIterationRejectsNonNativeBaseAsset(t *testing.T) {
	l := New(Config{BaseAsset: tokenAsset(9)}, dexgraph.New(), nil, nil, nil, nil)

	err := l.runIteration(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnsupportedBaseAsset)
}
