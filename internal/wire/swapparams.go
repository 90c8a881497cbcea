package wire

import (
	"fmt"

	"github.com/tonarb/aceton/internal/asset"
)

// SwapParams carries the deadline and optional slippage-recovery payloads
// that accompany a swap request. The reference implementation always uses
// deadline=0 (disabled), recipient=null, referral=null, and no payloads;
// the fields exist so the codec round-trips non-default values too.
type SwapParams struct {
	Deadline        uint32
	Recipient       asset.Address
	Referral        asset.Address
	FulfillPayload  *Cell
	RejectPayload   *Cell
}

// EncodeSwapParams serializes p as u32 deadline ∥ address(recipient) ∥
// address(referral) ∥ Maybe(^fulfill_payload) ∥ Maybe(^reject_payload).
func EncodeSwapParams(p SwapParams) (*Cell, error) {
	w := NewBitWriter()
	w.WriteUint(uint64(p.Deadline), 32)
	writeAddress(w, p.Recipient)
	writeAddress(w, p.Referral)

	if err := writeMaybeRef(w, p.FulfillPayload); err != nil {
		return nil, fmt.Errorf("wire: swap params fulfill payload: %w", err)
	}
	if err := writeMaybeRef(w, p.RejectPayload); err != nil {
		return nil, fmt.Errorf("wire: swap params reject payload: %w", err)
	}
	return w.Cell(), nil
}

// DecodeSwapParams parses a cell written by EncodeSwapParams.
func DecodeSwapParams(c *Cell) (SwapParams, error) {
	r := NewBitReader(c)
	deadline, err := r.ReadUint(32)
	if err != nil {
		return SwapParams{}, fmt.Errorf("wire: swap params deadline: %w", err)
	}
	recipient, err := readAddress(r)
	if err != nil {
		return SwapParams{}, fmt.Errorf("wire: swap params recipient: %w", err)
	}
	referral, err := readAddress(r)
	if err != nil {
		return SwapParams{}, fmt.Errorf("wire: swap params referral: %w", err)
	}
	fulfill, err := readMaybeRef(r)
	if err != nil {
		return SwapParams{}, fmt.Errorf("wire: swap params fulfill payload: %w", err)
	}
	reject, err := readMaybeRef(r)
	if err != nil {
		return SwapParams{}, fmt.Errorf("wire: swap params reject payload: %w", err)
	}
	return SwapParams{
		Deadline:       uint32(deadline),
		Recipient:      recipient,
		Referral:       referral,
		FulfillPayload: fulfill,
		RejectPayload:  reject,
	}, nil
}

func writeMaybeRef(w *BitWriter, c *Cell) error {
	if c == nil {
		w.WriteBit(false)
		return nil
	}
	w.WriteBit(true)
	return w.StoreRef(c)
}

func readMaybeRef(r *BitReader) (*Cell, error) {
	has, err := r.ReadBit()
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	return r.LoadRef()
}
