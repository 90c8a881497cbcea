// Package asset defines the canonical tagged identifier for the assets
// traded across the DEX graph: the chain's native coin, fungible jetton
// tokens identified by their master contract address, and extra
// currencies identified by a numeric id.
package asset

import "fmt"

// Kind tags the variant carried by an Asset.
type Kind uint8

const (
	// KindNative is the chain's native coin (TON).
	KindNative Kind = iota
	// KindToken is a fungible jetton identified by its master contract address.
	KindToken
	// KindExtraCurrency is a chain-level extra currency identified by a numeric id.
	KindExtraCurrency
)

func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindToken:
		return "token"
	case KindExtraCurrency:
		return "extra_currency"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Address is a TON-style account address: a signed 8-bit workchain id and a
// 256-bit address hash.
type Address struct {
	Workchain int8
	Hash      [32]byte
}

// Null is the zero MsgAddressNone used for unset recipient/referral fields.
var Null = Address{}

func (a Address) String() string {
	if a == Null {
		return "addr_none"
	}
	return fmt.Sprintf("%d:%x", a.Workchain, a.Hash)
}

// Asset is a structurally comparable value type: two Assets are equal iff
// their Kind and payload fields are equal, so Asset is safe to use as a map
// key and as a graph vertex identity.
type Asset struct {
	Kind Kind
	// Master is populated for KindToken.
	Master Address
	// CurrencyID is populated for KindExtraCurrency.
	CurrencyID int32
}

// Native is the singleton native-coin asset.
var Native = Asset{Kind: KindNative}

// Token builds a jetton asset identified by its master contract address.
func Token(master Address) Asset {
	return Asset{Kind: KindToken, Master: master}
}

// ExtraCurrency builds an extra-currency asset identified by a numeric id.
func ExtraCurrency(id int32) Asset {
	return Asset{Kind: KindExtraCurrency, CurrencyID: id}
}

func (a Asset) String() string {
	switch a.Kind {
	case KindNative:
		return "native"
	case KindToken:
		return fmt.Sprintf("token(%s)", a.Master)
	case KindExtraCurrency:
		return fmt.Sprintf("extra_currency(%d)", a.CurrencyID)
	default:
		return "invalid_asset"
	}
}

// IsNative reports whether a is the native coin.
func (a Asset) IsNative() bool {
	return a.Kind == KindNative
}
