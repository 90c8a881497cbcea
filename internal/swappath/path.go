// Package swappath chains pool references from a starting asset into an
// evaluable, serializable multi-hop path.
package swappath

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/tonarb/aceton/internal/asset"
	"github.com/tonarb/aceton/internal/pool"
	"github.com/tonarb/aceton/internal/wire"
)

// Step pairs a pool with the asset flowing into it, mirroring
// original_source's SwapStep<DP> — not to be confused with wire.SwapStep,
// which is the on-chain encoding of the chosen route.
type Step struct {
	assetIn asset.Asset
	pool    *pool.Pool
}

// AssetIn returns the asset entering this hop.
func (s Step) AssetIn() asset.Asset { return s.assetIn }

// Pool returns the pool traversed by this hop.
func (s Step) Pool() *pool.Pool { return s.pool }

// AssetOut returns the asset produced by this hop.
func (s Step) AssetOut() asset.Asset { return s.pool.AssetOut(s.assetIn) }

// EstimateSwapOut estimates this hop's output for a given input amount.
func (s Step) EstimateSwapOut(amountIn *big.Int) *big.Int {
	return s.pool.EstimateSwapOut(s.assetIn, amountIn)
}

// Path is an ordered chain of pools starting from assetIn. It is built
// incrementally via Push, evaluated with EstimateSwapOut, and discarded
// after one search iteration — it carries no identity beyond its contents.
type Path struct {
	assetIn asset.Asset
	pools   []*pool.Pool
}

// New starts an empty path rooted at assetIn.
func New(assetIn asset.Asset) *Path {
	return &Path{assetIn: assetIn}
}

// AssetIn returns the path's starting asset.
func (p *Path) AssetIn() asset.Asset { return p.assetIn }

// Len returns the number of hops.
func (p *Path) Len() int { return len(p.pools) }

// Pools returns the path's pools in traversal order.
func (p *Path) Pools() []*pool.Pool { return p.pools }

// Push appends next to the path, deducing its input asset from the path's
// current output, and returns the new output asset.
func (p *Path) Push(next *pool.Pool) asset.Asset {
	in := p.AssetOut()
	p.pools = append(p.pools, next)
	return next.AssetOut(in)
}

// Steps materializes the path as a slice of (asset_in, pool) steps.
func (p *Path) Steps() []Step {
	steps := make([]Step, 0, len(p.pools))
	in := p.assetIn
	for _, pl := range p.pools {
		steps = append(steps, Step{assetIn: in, pool: pl})
		in = pl.AssetOut(in)
	}
	return steps
}

// AssetOut returns the asset produced by the path's last hop, or AssetIn if
// the path is empty.
func (p *Path) AssetOut() asset.Asset {
	out := p.assetIn
	for _, pl := range p.pools {
		out = pl.AssetOut(out)
	}
	return out
}

// IsCycle reports whether the path returns to its starting asset.
func (p *Path) IsCycle() bool {
	return p.AssetOut() == p.assetIn
}

// EstimateSwapOut folds estimate_swap_out across every hop left to right,
// short-circuiting to zero once any hop yields zero.
func (p *Path) EstimateSwapOut(amountIn *big.Int) *big.Int {
	amount := amountIn
	for _, step := range p.Steps() {
		amount = step.EstimateSwapOut(amount)
		if amount.Sign() == 0 {
			return amount
		}
	}
	return amount
}

// BuildNestedStepList folds the path's pools right-to-left into a nested
// wire.SwapStep chain: the last hop becomes the innermost (next=nil) step,
// and earlier hops wrap it. Every hop's limit is 0 (accept any non-zero
// output) matching the reference policy; callers wanting per-hop slippage
// floors should build the chain manually via pool.MakeStep.
func (p *Path) BuildNestedStepList() *wire.SwapStep {
	steps := p.Steps()
	var next *wire.SwapStep
	for i := len(steps) - 1; i >= 0; i-- {
		next = steps[i].pool.MakeStep(nil, next)
	}
	return next
}

func (p *Path) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", p.assetIn)
	in := p.assetIn
	for _, pl := range p.pools {
		rIn, rOut := pl.ReservesInOut(in)
		out := pl.AssetOut(in)
		fmt.Fprintf(&b, " -[%s/%s]-> %s", rIn, rOut, out)
		in = out
	}
	return b.String()
}
