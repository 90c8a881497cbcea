// Package wallet provides the narrow Signer interface the execution loop
// submits through, plus a thin wallet-v4-style adapter. Mnemonic loading
// and key derivation are explicitly out of scope and are injected here as
// a plain signing function, never implemented in this package.
package wallet

import (
	"fmt"

	"github.com/tonarb/aceton/internal/asset"
	"github.com/tonarb/aceton/internal/wire"
)

// InternalMessage is the message the wallet forwards on-chain: destination,
// attached value, and an opaque body cell (typically a wire.NativeVaultSwap
// encoding).
type InternalMessage struct {
	Dst            asset.Address
	ValueNanoTON   uint64
	Bounce         bool
	IHRDisabled    bool
	Body           *wire.Cell
}

// Signer is the interface the execution loop consumes to turn a chosen
// swap into a signed, submittable external message.
type Signer interface {
	Address() asset.Address
	CreateExternalMessage(validUntil uint32, seqno uint32, internal InternalMessage) (*wire.Cell, error)
}

// SignFunc signs an arbitrary byte string (typically a message hash) with
// the wallet's private key. Supplying one is the caller's responsibility —
// it is produced from mnemonic-to-key derivation, out of this core's scope.
type SignFunc func(data []byte) (signature []byte, err error)

// V4R2 is a minimal stand-in for a wallet-v4r2 contract's external message
// builder: seqno, a single send-message action at mode 3 (pay fees
// separately, ignore errors), and a validity deadline. It does not
// replicate the real wallet-v4 TL-B schema bit-for-bit — that schema is
// part of the out-of-scope wallet-contract collaborator — but exercises
// the same wire-building and signing shape arbitrager.rs's
// send_external_message does.
type V4R2 struct {
	addr asset.Address
	sign SignFunc
}

// NewV4R2 builds a wallet adapter for addr, using sign to produce the
// authorization signature over the message body.
func NewV4R2(addr asset.Address, sign SignFunc) *V4R2 {
	return &V4R2{addr: addr, sign: sign}
}

// Address returns the wallet's own address.
func (w *V4R2) Address() asset.Address {
	return w.addr
}

const sendMessageMode = 3 // pay transfer fees separately, ignore errors

// CreateExternalMessage builds the signed payload: seqno, validUntil, the
// send-message mode, and internal.Body as a cell reference, signed over the
// unsigned cell's packed bytes. internal.Dst, ValueNanoTON, Bounce and
// IHRDisabled are not written into the cell.
func (w *V4R2) CreateExternalMessage(validUntil uint32, seqno uint32, internal InternalMessage) (*wire.Cell, error) {
	body := wire.NewBitWriter()
	body.WriteUint(uint64(seqno), 32)
	body.WriteUint(uint64(validUntil), 32)
	body.WriteUint(sendMessageMode, 8)
	if internal.Body != nil {
		if err := body.StoreRef(internal.Body); err != nil {
			return nil, fmt.Errorf("wallet: attaching internal message body: %w", err)
		}
	}
	unsigned := body.Cell()

	sig, err := w.sign(unsigned.Bytes())
	if err != nil {
		return nil, fmt.Errorf("wallet: signing external message: %w", err)
	}

	signed := wire.NewBitWriter()
	signed.WriteBytes(sig)
	signed.WriteUint(uint64(seqno), 32)
	signed.WriteUint(uint64(validUntil), 32)
	signed.WriteUint(sendMessageMode, 8)
	if internal.Body != nil {
		if err := signed.StoreRef(internal.Body); err != nil {
			return nil, err
		}
	}
	return signed.Cell(), nil
}
