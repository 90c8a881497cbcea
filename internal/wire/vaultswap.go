package wire

import (
	"fmt"
	"math/big"
)

// Operation tags for the DEX vault and factory contracts. Only
// NativeVaultSwapTag is exercised by the native-base happy path; the others
// are named here because the reference design calls them out explicitly,
// and are left unimplemented beyond their tag constant (see SPEC_FULL.md §12).
const (
	NativeVaultSwapTag           uint32 = 0xea06185d
	JettonVaultSwapTag           uint32 = 0xe3a0d482
	FactoryCreateVaultTag        uint32 = 0x21cfe02b
	FactoryCreateVolatilePoolTag uint32 = 0x97d51f2f
)

// NativeVaultSwap is the body of an internal message sent to a native-asset
// vault to kick off a (possibly multi-hop) swap: tag, query id, amount, the
// first hop inline, and the shared SwapParams by reference.
type NativeVaultSwap struct {
	QueryID uint64
	Amount  *big.Int
	Step    *SwapStep
	Params  SwapParams
}

// EncodeNativeVaultSwap serializes msg as:
//
//	u32 tag ∥ u64 query_id ∥ Coins(amount) ∥ SwapStep(inline) ∥ reference(SwapParams)
func EncodeNativeVaultSwap(msg *NativeVaultSwap) (*Cell, error) {
	w := NewBitWriter()
	w.WriteUint(uint64(NativeVaultSwapTag), 32)
	w.WriteUint(msg.QueryID, 64)
	if err := w.WriteCoins(msg.Amount); err != nil {
		return nil, fmt.Errorf("wire: native vault swap amount: %w", err)
	}
	if err := writeSwapStepFields(w, msg.Step); err != nil {
		return nil, fmt.Errorf("wire: native vault swap step: %w", err)
	}
	paramsCell, err := EncodeSwapParams(msg.Params)
	if err != nil {
		return nil, fmt.Errorf("wire: native vault swap params: %w", err)
	}
	if err := w.StoreRef(paramsCell); err != nil {
		return nil, err
	}
	return w.Cell(), nil
}

// DecodeNativeVaultSwap parses a cell written by EncodeNativeVaultSwap.
func DecodeNativeVaultSwap(c *Cell) (*NativeVaultSwap, error) {
	r := NewBitReader(c)
	tag, err := r.ReadUint(32)
	if err != nil {
		return nil, fmt.Errorf("wire: native vault swap tag: %w", err)
	}
	if uint32(tag) != NativeVaultSwapTag {
		return nil, fmt.Errorf("wire: unexpected tag %#x, want %#x", tag, NativeVaultSwapTag)
	}
	queryID, err := r.ReadUint(64)
	if err != nil {
		return nil, fmt.Errorf("wire: native vault swap query id: %w", err)
	}
	amount, err := r.ReadCoins()
	if err != nil {
		return nil, fmt.Errorf("wire: native vault swap amount: %w", err)
	}
	step, err := readSwapStepFields(r)
	if err != nil {
		return nil, fmt.Errorf("wire: native vault swap step: %w", err)
	}
	paramsCell, err := r.LoadRef()
	if err != nil {
		return nil, fmt.Errorf("wire: native vault swap params ref: %w", err)
	}
	params, err := DecodeSwapParams(paramsCell)
	if err != nil {
		return nil, fmt.Errorf("wire: native vault swap params: %w", err)
	}
	return &NativeVaultSwap{
		QueryID: queryID,
		Amount:  amount,
		Step:    step,
		Params:  params,
	}, nil
}
