package wire

import (
	"fmt"

	"github.com/tonarb/aceton/internal/asset"
)

const (
	assetTagNative        = 0b0000
	assetTagToken         = 0b0001
	assetTagExtraCurrency = 0b0010
)

// EncodeAsset writes an Asset cell: a 4-bit tag, then a token's 8-bit
// signed workchain id and 256-bit address hash, or an extra currency's
// 32-bit signed id. Native assets carry no further payload.
func EncodeAsset(a asset.Asset) *Cell {
	w := NewBitWriter()
	switch a.Kind {
	case asset.KindNative:
		w.WriteUint(assetTagNative, 4)
	case asset.KindToken:
		w.WriteUint(assetTagToken, 4)
		w.WriteInt(int64(a.Master.Workchain), 8)
		w.WriteBytes(a.Master.Hash[:])
	case asset.KindExtraCurrency:
		w.WriteUint(assetTagExtraCurrency, 4)
		w.WriteInt(int64(a.CurrencyID), 32)
	default:
		panic(fmt.Sprintf("wire: unknown asset kind %v", a.Kind))
	}
	return w.Cell()
}

// DecodeAsset parses an Asset cell written by EncodeAsset.
func DecodeAsset(c *Cell) (asset.Asset, error) {
	r := NewBitReader(c)
	tag, err := r.ReadUint(4)
	if err != nil {
		return asset.Asset{}, fmt.Errorf("wire: asset tag: %w", err)
	}
	switch tag {
	case assetTagNative:
		return asset.Native, nil
	case assetTagToken:
		wc, err := r.ReadInt(8)
		if err != nil {
			return asset.Asset{}, fmt.Errorf("wire: asset workchain: %w", err)
		}
		hashBytes, err := r.ReadBytes(32)
		if err != nil {
			return asset.Asset{}, fmt.Errorf("wire: asset hash: %w", err)
		}
		var hash [32]byte
		copy(hash[:], hashBytes)
		return asset.Token(asset.Address{Workchain: int8(wc), Hash: hash}), nil
	case assetTagExtraCurrency:
		id, err := r.ReadInt(32)
		if err != nil {
			return asset.Asset{}, fmt.Errorf("wire: asset currency id: %w", err)
		}
		return asset.ExtraCurrency(int32(id)), nil
	default:
		return asset.Asset{}, fmt.Errorf("wire: unknown asset tag %#b", tag)
	}
}

func writeAddress(w *BitWriter, a asset.Address) {
	w.WriteInt(int64(a.Workchain), 8)
	w.WriteBytes(a.Hash[:])
}

func readAddress(r *BitReader) (asset.Address, error) {
	wc, err := r.ReadInt(8)
	if err != nil {
		return asset.Address{}, fmt.Errorf("wire: address workchain: %w", err)
	}
	hashBytes, err := r.ReadBytes(32)
	if err != nil {
		return asset.Address{}, fmt.Errorf("wire: address hash: %w", err)
	}
	var hash [32]byte
	copy(hash[:], hashBytes)
	return asset.Address{Workchain: int8(wc), Hash: hash}, nil
}
