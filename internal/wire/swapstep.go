package wire

import (
	"fmt"
	"math/big"

	"github.com/tonarb/aceton/internal/asset"
)

// SwapKind selects whether a hop specifies its input or output amount.
// Only GivenIn is ever produced by this bot; GivenOut is defined for
// completeness and round-trip coverage.
type SwapKind bool

const (
	GivenIn  SwapKind = false
	GivenOut SwapKind = true
)

func (k SwapKind) String() string {
	if k == GivenOut {
		return "given_out"
	}
	return "given_in"
}

// PoolType mirrors pool.Type on the wire: one bit, 0 for volatile, 1 for
// stable.
type PoolType bool

const (
	PoolVolatile PoolType = false
	PoolStable   PoolType = true
)

// SwapStepParams is the per-hop payload: the swap kind, the slippage floor
// in the hop's output units, and an optional link to the next hop.
type SwapStepParams struct {
	Kind  SwapKind
	Limit *big.Int
	Next  *SwapStep
}

// SwapStep is one hop of a multi-hop swap: the pool contract to swap through
// and that hop's parameters. Nested steps are recursive via cell references, so
// a SwapPath's step list becomes a right-folded chain of SwapSteps.
type SwapStep struct {
	Pool   asset.Address
	Params SwapStepParams
}

// EncodeSwapStep serializes step into its own cell: pool address, kind,
// Coins(limit), and a Maybe(^next) reference to the continuation.
func EncodeSwapStep(step *SwapStep) (*Cell, error) {
	w := NewBitWriter()
	if err := writeSwapStepFields(w, step); err != nil {
		return nil, err
	}
	return w.Cell(), nil
}

func writeSwapStepFields(w *BitWriter, step *SwapStep) error {
	writeAddress(w, step.Pool)
	w.WriteBit(bool(step.Params.Kind))
	if err := w.WriteCoins(step.Params.Limit); err != nil {
		return fmt.Errorf("wire: swap step limit: %w", err)
	}
	if step.Params.Next == nil {
		w.WriteBit(false)
		return nil
	}
	w.WriteBit(true)
	nextCell, err := EncodeSwapStep(step.Params.Next)
	if err != nil {
		return fmt.Errorf("wire: swap step next: %w", err)
	}
	return w.StoreRef(nextCell)
}

// DecodeSwapStep parses a cell written by EncodeSwapStep.
func DecodeSwapStep(c *Cell) (*SwapStep, error) {
	r := NewBitReader(c)
	return readSwapStepFields(r)
}

func readSwapStepFields(r *BitReader) (*SwapStep, error) {
	addr, err := readAddress(r)
	if err != nil {
		return nil, fmt.Errorf("wire: swap step pool: %w", err)
	}
	kindBit, err := r.ReadBit()
	if err != nil {
		return nil, fmt.Errorf("wire: swap step kind: %w", err)
	}
	limit, err := r.ReadCoins()
	if err != nil {
		return nil, fmt.Errorf("wire: swap step limit: %w", err)
	}
	hasNext, err := r.ReadBit()
	if err != nil {
		return nil, fmt.Errorf("wire: swap step maybe-next: %w", err)
	}
	var next *SwapStep
	if hasNext {
		nextCell, err := r.LoadRef()
		if err != nil {
			return nil, fmt.Errorf("wire: swap step next ref: %w", err)
		}
		next, err = DecodeSwapStep(nextCell)
		if err != nil {
			return nil, err
		}
	}
	return &SwapStep{
		Pool: addr,
		Params: SwapStepParams{
			Kind:  SwapKind(kindBit),
			Limit: limit,
			Next:  next,
		},
	}, nil
}
