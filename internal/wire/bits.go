// Package wire implements the bit-level cell serialization used to build
// the DEX's on-chain swap payloads: assets, swap parameters, the nested
// multi-hop step list, and the NativeVaultSwap message body.
//
// No TLB/BOC library is reused from the example corpus for this package —
// none exists in it (see DESIGN.md) — so this file hand-rolls a minimal
// bit writer/reader against the standard library, exactly the allowance
// the design gives implementers for the underlying cell format.
package wire

import (
	"fmt"
	"math/big"
)

// BitWriter accumulates bits MSB-first into byte-aligned output, plus up to
// four child cell references, mirroring a TON cell's data+refs shape.
type BitWriter struct {
	bits []bool
	refs []*Cell
}

// NewBitWriter returns an empty writer.
func NewBitWriter() *BitWriter {
	return &BitWriter{}
}

// WriteBit appends a single bit.
func (w *BitWriter) WriteBit(b bool) *BitWriter {
	w.bits = append(w.bits, b)
	return w
}

// WriteUint appends the low `width` bits of v, most significant bit first.
func (w *BitWriter) WriteUint(v uint64, width int) *BitWriter {
	for i := width - 1; i >= 0; i-- {
		w.WriteBit((v>>uint(i))&1 == 1)
	}
	return w
}

// WriteInt appends a `width`-bit two's-complement signed integer.
func (w *BitWriter) WriteInt(v int64, width int) *BitWriter {
	mask := uint64(1)<<uint(width) - 1
	return w.WriteUint(uint64(v)&mask, width)
}

// WriteBytes appends raw bytes, most significant bit of each byte first.
func (w *BitWriter) WriteBytes(b []byte) *BitWriter {
	for _, by := range b {
		w.WriteUint(uint64(by), 8)
	}
	return w
}

// WriteCoins appends the chain's variable-length "Coins" encoding: a 4-bit
// length prefix in bytes, followed by that many big-endian magnitude bytes.
// Zero is encoded with a zero-length prefix and no bytes.
func (w *BitWriter) WriteCoins(v *big.Int) error {
	if v.Sign() < 0 {
		return fmt.Errorf("wire: coins value must be non-negative, got %s", v.String())
	}
	if v.Sign() == 0 {
		w.WriteUint(0, 4)
		return nil
	}
	b := v.Bytes()
	if len(b) > 15 {
		return fmt.Errorf("wire: coins value too large (%d bytes)", len(b))
	}
	w.WriteUint(uint64(len(b)), 4)
	w.WriteBytes(b)
	return nil
}

// StoreRef appends a child-cell reference, returning an error if the
// 4-reference ceiling is exceeded.
func (w *BitWriter) StoreRef(c *Cell) error {
	if len(w.refs) >= 4 {
		return fmt.Errorf("wire: cell reference limit exceeded")
	}
	w.refs = append(w.refs, c)
	return nil
}

// Cell finalizes the writer into an immutable Cell.
func (w *BitWriter) Cell() *Cell {
	return &Cell{bits: append([]bool(nil), w.bits...), refs: append([]*Cell(nil), w.refs...)}
}

// Cell is the chain's tree-structured serialization unit: a bit-data area
// plus up to four child references.
type Cell struct {
	bits []bool
	refs []*Cell
}

// NumBits returns the number of data bits stored directly in the cell.
func (c *Cell) NumBits() int { return len(c.bits) }

// NumRefs returns the number of child cell references.
func (c *Cell) NumRefs() int { return len(c.refs) }

// Bytes packs the data bits into bytes, zero-padding the final byte.
func (c *Cell) Bytes() []byte {
	out := make([]byte, (len(c.bits)+7)/8)
	for i, b := range c.bits {
		if b {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

// BitReader consumes bits MSB-first from a Cell's data area and references
// in order, mirroring CellParser in the reference design.
type BitReader struct {
	bits    []bool
	refs    []*Cell
	pos     int
	refPos  int
}

// NewBitReader returns a reader positioned at the start of c.
func NewBitReader(c *Cell) *BitReader {
	return &BitReader{bits: c.bits, refs: c.refs}
}

// ReadBit consumes and returns the next bit.
func (r *BitReader) ReadBit() (bool, error) {
	if r.pos >= len(r.bits) {
		return false, fmt.Errorf("wire: read past end of cell data (%d bits available)", len(r.bits))
	}
	b := r.bits[r.pos]
	r.pos++
	return b, nil
}

// ReadUint consumes `width` bits as an unsigned integer, most significant
// bit first.
func (r *BitReader) ReadUint(width int) (uint64, error) {
	var v uint64
	for i := 0; i < width; i++ {
		b, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v <<= 1
		if b {
			v |= 1
		}
	}
	return v, nil
}

// ReadInt consumes `width` bits as a two's-complement signed integer.
func (r *BitReader) ReadInt(width int) (int64, error) {
	v, err := r.ReadUint(width)
	if err != nil {
		return 0, err
	}
	signBit := uint64(1) << uint(width-1)
	if v&signBit != 0 {
		return int64(v) - int64(1)<<uint(width), nil
	}
	return int64(v), nil
}

// ReadBytes consumes n bytes.
func (r *BitReader) ReadBytes(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		v, err := r.ReadUint(8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}

// ReadCoins consumes a "Coins" variable-length value.
func (r *BitReader) ReadCoins() (*big.Int, error) {
	n, err := r.ReadUint(4)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return big.NewInt(0), nil
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}

// LoadRef consumes the next child cell reference in order.
func (r *BitReader) LoadRef() (*Cell, error) {
	if r.refPos >= len(r.refs) {
		return nil, fmt.Errorf("wire: no more cell references (%d available)", len(r.refs))
	}
	c := r.refs[r.refPos]
	r.refPos++
	return c, nil
}

// Remaining reports unread data bits, used by callers that want to assert
// a cell was fully consumed (round-trip tests).
func (r *BitReader) Remaining() int {
	return len(r.bits) - r.pos
}
