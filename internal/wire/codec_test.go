package wire

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonarb/aceton/internal/asset"
)

func addr(wc int8, first byte) asset.Address {
	var h [32]byte
	h[0] = first
	return asset.Address{Workchain: wc, Hash: h}
}

func TestAssetRoundTrip(t *testing.T) {
	cases := []asset.Asset{
		asset.Native,
		asset.Token(addr(0, 0x11)),
		asset.Token(addr(-1, 0xff)),
		asset.ExtraCurrency(7),
		asset.ExtraCurrency(-3),
	}
	for _, a := range cases {
		cell := EncodeAsset(a)
		got, err := DecodeAsset(cell)
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
}

func TestSwapStepRoundTripTwoHop(t *testing.T) {
	step := &SwapStep{
		Pool: addr(0, 0x01),
		Params: SwapStepParams{
			Kind:  GivenIn,
			Limit: big.NewInt(1000),
			Next: &SwapStep{
				Pool: addr(0, 0x02),
				Params: SwapStepParams{
					Kind:  GivenIn,
					Limit: big.NewInt(0),
					Next:  nil,
				},
			},
		},
	}

	cell, err := EncodeSwapStep(step)
	require.NoError(t, err)

	got, err := DecodeSwapStep(cell)
	require.NoError(t, err)

	assert.Equal(t, step.Pool, got.Pool)
	assert.Equal(t, step.Params.Kind, got.Params.Kind)
	assert.Equal(t, 0, step.Params.Limit.Cmp(got.Params.Limit))
	require.NotNil(t, got.Params.Next)
	assert.Equal(t, step.Params.Next.Pool, got.Params.Next.Pool)
	assert.Nil(t, got.Params.Next.Params.Next)
}

func TestSwapParamsRoundTrip(t *testing.T) {
	params := SwapParams{
		Deadline:  0,
		Recipient: asset.Null,
		Referral:  asset.Null,
	}
	cell, err := EncodeSwapParams(params)
	require.NoError(t, err)
	got, err := DecodeSwapParams(cell)
	require.NoError(t, err)
	assert.Equal(t, params.Deadline, got.Deadline)
	assert.Equal(t, params.Recipient, got.Recipient)
	assert.Equal(t, params.Referral, got.Referral)
	assert.Nil(t, got.FulfillPayload)
	assert.Nil(t, got.RejectPayload)
}

func TestSwapParamsRoundTripWithPayloads(t *testing.T) {
	payload := NewBitWriter().WriteUint(0xAB, 8).Cell()
	params := SwapParams{
		Deadline:       1700000000,
		Recipient:      addr(0, 0x55),
		Referral:       addr(0, 0x66),
		FulfillPayload: payload,
		RejectPayload:  payload,
	}
	cell, err := EncodeSwapParams(params)
	require.NoError(t, err)
	got, err := DecodeSwapParams(cell)
	require.NoError(t, err)
	assert.Equal(t, params.Deadline, got.Deadline)
	require.NotNil(t, got.FulfillPayload)
	require.NotNil(t, got.RejectPayload)
	assert.Equal(t, payload.Bytes(), got.FulfillPayload.Bytes())
}

func TestNativeVaultSwapRoundTrip(t *testing.T) {
	msg := &NativeVaultSwap{
		QueryID: 42,
		Amount:  big.NewInt(1_000_000_000),
		Step: &SwapStep{
			Pool: addr(0, 0x10),
			Params: SwapStepParams{
				Kind:  GivenIn,
				Limit: big.NewInt(500),
				Next: &SwapStep{
					Pool: addr(0, 0x20),
					Params: SwapStepParams{
						Kind:  GivenIn,
						Limit: big.NewInt(0),
					},
				},
			},
		},
		Params: SwapParams{
			Deadline:  0,
			Recipient: asset.Null,
			Referral:  asset.Null,
		},
	}

	cell, err := EncodeNativeVaultSwap(msg)
	require.NoError(t, err)

	got, err := DecodeNativeVaultSwap(cell)
	require.NoError(t, err)

	assert.Equal(t, msg.QueryID, got.QueryID)
	assert.Equal(t, 0, msg.Amount.Cmp(got.Amount))
	assert.Equal(t, msg.Step.Pool, got.Step.Pool)
	require.NotNil(t, got.Step.Params.Next)
	assert.Equal(t, msg.Step.Params.Next.Pool, got.Step.Params.Next.Pool)
}

func TestNativeVaultSwapRejectsWrongTag(t *testing.T) {
	w := NewBitWriter()
	w.WriteUint(uint64(JettonVaultSwapTag), 32)
	w.WriteUint(1, 64)
	require.NoError(t, w.WriteCoins(big.NewInt(1)))
	_, err := DecodeNativeVaultSwap(w.Cell())
	assert.Error(t, err)
}

func TestCoinsZeroRoundTrip(t *testing.T) {
	w := NewBitWriter()
	require.NoError(t, w.WriteCoins(big.NewInt(0)))
	r := NewBitReader(w.Cell())
	v, err := r.ReadCoins()
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())
}
