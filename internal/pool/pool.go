// Package pool implements the constant-product pool model: identity, asset
// pair, fee, reserves, and the swap-math and step-construction operations
// that the DEX graph and execution loop build on.
package pool

import (
	"math/big"

	"github.com/tonarb/aceton/internal/asset"
	"github.com/tonarb/aceton/internal/wire"
)

// Type distinguishes the swap-curve family of a pool. Only Volatile's
// constant-product formula is implemented exactly; Stable uses the
// placeholder constant-ratio approximation named in the reference design.
type Type uint8

const (
	Volatile Type = iota
	Stable
)

func (t Type) String() string {
	if t == Stable {
		return "stable"
	}
	return "volatile"
}

// Pool holds a single on-chain liquidity pair: identity, asset pair,
// reserves in canonical order, and the trading fee. Fee is the fraction
// taken on input (e.g. 0.003 for 0.3%); the output side is never charged a
// fee in this design, matching the reference MockPool fixture where
// trade_fees() == [0.997, 1].
type Pool struct {
	Address  asset.Address
	Type     Type
	Assets   [2]asset.Asset
	Reserves [2]*big.Int
	Fee      *big.Rat
}

// New builds a Pool, panicking if the two assets are not distinct — callers
// are expected to validate catalog data before constructing a Pool.
func New(addr asset.Address, typ Type, a0, a1 asset.Asset, r0, r1 *big.Int, fee *big.Rat) *Pool {
	if a0 == a1 {
		panic("pool: assets must be distinct")
	}
	return &Pool{
		Address:  addr,
		Type:     typ,
		Assets:   [2]asset.Asset{a0, a1},
		Reserves: [2]*big.Int{new(big.Int).Set(r0), new(big.Int).Set(r1)},
		Fee:      new(big.Rat).Set(fee),
	}
}

// IsActive reports whether both reserves are at least 1, the minimum
// needed for the pool to offer a non-degenerate price.
func (p *Pool) IsActive() bool {
	one := big.NewInt(1)
	return p.Reserves[0].Cmp(one) >= 0 && p.Reserves[1].Cmp(one) >= 0
}

// reversed reports whether assetIn is the pool's second asset.
func (p *Pool) reversed(assetIn asset.Asset) bool {
	return assetIn == p.Assets[1]
}

// AssetOut returns the asset produced by swapping in assetIn.
func (p *Pool) AssetOut(assetIn asset.Asset) asset.Asset {
	if p.reversed(assetIn) {
		return p.Assets[0]
	}
	return p.Assets[1]
}

// ReservesInOut returns the pool's reserves ordered (reserveIn, reserveOut)
// relative to assetIn.
func (p *Pool) ReservesInOut(assetIn asset.Asset) (rIn, rOut *big.Int) {
	if p.reversed(assetIn) {
		return p.Reserves[1], p.Reserves[0]
	}
	return p.Reserves[0], p.Reserves[1]
}

// feesInOut returns the (fee_in_multiplier, fee_out_multiplier) pair for a
// swap in the given direction: fee is charged on the input side only.
func (p *Pool) feesInOut() (feeIn, feeOut *big.Rat) {
	feeIn = new(big.Rat).Sub(big.NewRat(1, 1), p.Fee)
	feeOut = big.NewRat(1, 1)
	return
}

// Rate returns the raw (fee-free) exchange rate reserve_out/reserve_in for
// the given input asset, as a float64 for use in graph edge weights. It is
// 0 when either reserve is zero: such a pool offers no usable price.
func (p *Pool) Rate(assetIn asset.Asset) float64 {
	rIn, rOut := p.ReservesInOut(assetIn)
	if rIn.Sign() == 0 || rOut.Sign() == 0 {
		return 0
	}
	rat := new(big.Rat).SetFrac(rOut, rIn)
	f, _ := rat.Float64()
	return f
}

// EffectiveRate returns Rate scaled by both side fees — the quantity whose
// negative log2 becomes the graph edge weight.
func (p *Pool) EffectiveRate(assetIn asset.Asset) float64 {
	feeIn, feeOut := p.feesInOut()
	feeInF, _ := feeIn.Float64()
	feeOutF, _ := feeOut.Float64()
	return p.Rate(assetIn) * feeInF * feeOutF
}

// EstimateSwapOut applies the constant-product formula with per-side fees,
// truncating at every division per the reference integer semantics:
//
//	a = floor(fee_in * amount_in)
//	out = floor(a * r_out / (a + r_in))
//	result = floor(fee_out * out), or 0 if out >= r_out (pool would drain)
//
// Returns 0 if amountIn, reserveIn, or reserveOut is zero.
func (p *Pool) EstimateSwapOut(assetIn asset.Asset, amountIn *big.Int) *big.Int {
	rIn, rOut := p.ReservesInOut(assetIn)
	zero := big.NewInt(0)
	if amountIn.Sign() == 0 || rIn.Sign() == 0 || rOut.Sign() == 0 {
		return zero
	}

	feeIn, feeOut := p.feesInOut()
	amountInWithFee := new(big.Rat).Mul(feeIn, new(big.Rat).SetInt(amountIn))
	a := truncRat(amountInWithFee)

	if p.Type == Stable {
		// Placeholder constant-ratio approximation (see design notes):
		// no constant-sum/Curve invariant, just the current spot price.
		numerator := new(big.Int).Mul(a, rOut)
		out := new(big.Int).Quo(numerator, rIn)
		return truncRat(new(big.Rat).Mul(feeOut, new(big.Rat).SetInt(out)))
	}

	numerator := new(big.Int).Mul(a, rOut)
	denominator := new(big.Int).Add(a, rIn)
	if denominator.Sign() == 0 {
		return zero
	}
	out := new(big.Int).Quo(numerator, denominator)

	if out.Cmp(rOut) >= 0 {
		return zero
	}

	result := truncRat(new(big.Rat).Mul(feeOut, new(big.Rat).SetInt(out)))
	return result
}

// truncRat truncates a non-negative rational towards zero, matching the
// reference's `.to_integer()` semantics used throughout the swap formula.
func truncRat(r *big.Rat) *big.Int {
	q := new(big.Int)
	q.Quo(r.Num(), r.Denom())
	return q
}

// MakeStep builds a wire-ready SwapStep for this pool: kind is always
// given_in, limit defaults to 0 (accept any non-zero output) unless an
// explicit floor is supplied, and next links the continuation of a
// multi-hop path.
func (p *Pool) MakeStep(amountOutMin *big.Int, next *wire.SwapStep) *wire.SwapStep {
	limit := big.NewInt(0)
	if amountOutMin != nil {
		limit = amountOutMin
	}
	return &wire.SwapStep{
		Pool: p.Address,
		Params: wire.SwapStepParams{
			Kind:  wire.GivenIn,
			Limit: limit,
			Next:  next,
		},
	}
}
