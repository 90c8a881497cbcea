package pool

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonarb/aceton/internal/asset"
)

func newTestPool(t *testing.T, r0, r1 int64, fee *big.Rat) *Pool {
	t.Helper()
	a0 := asset.Native
	a1 := asset.Token(asset.Address{Hash: [32]byte{1}})
	return New(asset.Address{Hash: [32]byte{0xAA}}, Volatile, a0, a1, big.NewInt(r0), big.NewInt(r1), fee)
}

// Constant-product swap scenario with asymmetric fees.
func TestEstimateSwapOut_S1(t *testing.T) {
	p := newTestPool(t, 10_000, 20_000, big.NewRat(3, 1000)) // 0.3% fee on input
	n := p.Assets[0]
	j1 := p.Assets[1]

	out := p.EstimateSwapOut(n, big.NewInt(1_000))
	assert.Equal(t, big.NewInt(1_813).String(), out.String())

	out2 := p.EstimateSwapOut(j1, big.NewInt(1_000))
	assert.Equal(t, big.NewInt(474).String(), out2.String())

	out3 := p.EstimateSwapOut(n, big.NewInt(10_000_000))
	assert.Equal(t, big.NewInt(19_979).String(), out3.String())
}

func TestEstimateSwapOut_ZeroInputsAreZero(t *testing.T) {
	p := newTestPool(t, 10_000, 20_000, big.NewRat(0, 1))
	require.Equal(t, 0, p.EstimateSwapOut(p.Assets[0], big.NewInt(0)).Sign())
}

// Invariant 1: monotonicity.
func TestEstimateSwapOut_Monotone(t *testing.T) {
	p := newTestPool(t, 1_000_000, 2_000_000, big.NewRat(3, 1000))
	in := p.Assets[0]
	prev := big.NewInt(0)
	for _, amt := range []int64{1, 10, 100, 1_000, 50_000, 500_000} {
		out := p.EstimateSwapOut(in, big.NewInt(amt))
		assert.True(t, out.Cmp(prev) >= 0, "expected non-decreasing output for increasing input")
		prev = out
	}
}

// Invariant 2: fee conservation — strictly below the fee-free rate when
// fees are non-trivial and input is positive.
func TestEstimateSwapOut_FeeConservation(t *testing.T) {
	p := newTestPool(t, 10_000, 20_000, big.NewRat(3, 1000))
	in := p.Assets[0]
	amountIn := big.NewInt(1_000)
	out := p.EstimateSwapOut(in, amountIn)

	feeFree := new(big.Rat).Mul(big.NewRat(20_000, 10_000), new(big.Rat).SetInt(amountIn))
	feeFreeOut := new(big.Int).Quo(feeFree.Num(), feeFree.Denom())

	assert.True(t, out.Cmp(feeFreeOut) < 0)
}

func TestEffectiveRateMatchesFees(t *testing.T) {
	p := newTestPool(t, 10_000, 20_000, big.NewRat(3, 1000))
	rate := p.Rate(p.Assets[0])
	effective := p.EffectiveRate(p.Assets[0])
	assert.True(t, effective < rate, "effective rate must be strictly below raw rate when input fee > 0")
}

func TestIsActive(t *testing.T) {
	active := newTestPool(t, 10, 10, big.NewRat(0, 1))
	assert.True(t, active.IsActive())

	inactive := newTestPool(t, 0, 10, big.NewRat(0, 1))
	assert.False(t, inactive.IsActive())
}
