package dex

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/tonarb/aceton/internal/asset"
	"github.com/tonarb/aceton/internal/chain"
	"github.com/tonarb/aceton/internal/pool"
	"github.com/tonarb/aceton/internal/wire"
)

const (
	// gasOverheadNanoTON and gasPerStepNanoTON are the reference constants
	// from arbitrager.rs's make_body: a fixed overhead plus a per-hop cost.
	gasOverheadNanoTON = 200_000_000 // 0.2e9
	gasPerStepNanoTON  = 22_500_000  // 22.5e6

	getVaultAddressMethod = "get_vault_address"
)

// Adapter wires an HTTP Catalog and a chain.Client into the generic C6 DEX
// adapter behaviors: pool discovery, reserve refresh, vault address
// resolution, and payload assembly.
type Adapter struct {
	catalog Catalog
	chain   *chain.Client
	factory asset.Address

	mu     sync.Mutex
	vaults map[asset.Asset]asset.Address

	queryID atomic.Uint64
}

// NewAdapter builds an adapter. factory is the DEX factory contract address
// that resolves per-asset vault addresses via get-method call.
func NewAdapter(catalog Catalog, client *chain.Client, factory asset.Address) *Adapter {
	return &Adapter{
		catalog: catalog,
		chain:   client,
		factory: factory,
		vaults:  make(map[asset.Asset]asset.Address),
	}
}

// FetchPools discovers the current pool catalog and converts each entry
// into a *pool.Pool. Inactive pools are returned as well; the caller's
// graph.AddPool rejects them (see loop.Bootstrap, which logs each one).
func (a *Adapter) FetchPools(ctx context.Context) ([]*pool.Pool, error) {
	catalogPools, err := a.catalog.FetchPools(ctx)
	if err != nil {
		return nil, fmt.Errorf("dex: fetch_pools: %w", err)
	}

	pools := make([]*pool.Pool, 0, len(catalogPools))
	for _, cp := range catalogPools {
		typ := pool.Volatile
		if cp.Stable {
			typ = pool.Stable
		}
		p := pool.New(cp.Address, typ, cp.Assets[0], cp.Assets[1], cp.Reserves[0], cp.Reserves[1], cp.TradeFee)
		pools = append(pools, p)
	}
	return pools, nil
}

// RefreshReserves reads a pool's current reserves via a get-method call,
// through the rate-limited, circuit-broken chain.Client (no retries).
func (a *Adapter) RefreshReserves(ctx context.Context, addr asset.Address) (r0, r1 *big.Int, err error) {
	result, err := a.chain.RunGetMethod(ctx, addr, "get_reserves", nil)
	if err != nil {
		return nil, nil, fmt.Errorf("dex: refresh_reserves %s: %w", addr, err)
	}
	if len(result.Stack) != 2 || result.Stack[0].Number == nil || result.Stack[1].Number == nil {
		return nil, nil, fmt.Errorf("dex: refresh_reserves %s: unexpected stack shape", addr)
	}

	r0, ok := new(big.Int).SetString(*result.Stack[0].Number, 10)
	if !ok {
		return nil, nil, fmt.Errorf("dex: refresh_reserves %s: malformed reserve0", addr)
	}
	r1, ok = new(big.Int).SetString(*result.Stack[1].Number, 10)
	if !ok {
		return nil, nil, fmt.Errorf("dex: refresh_reserves %s: malformed reserve1", addr)
	}
	return r0, r1, nil
}

// VaultAddress lazily resolves and memoizes the vault address for a, guarded
// by a mutex since multiple callers may race to resolve the same asset.
func (a *Adapter) VaultAddress(ctx context.Context, asst asset.Asset) (asset.Address, error) {
	a.mu.Lock()
	if addr, ok := a.vaults[asst]; ok {
		a.mu.Unlock()
		return addr, nil
	}
	a.mu.Unlock()

	assetCell := wire.EncodeAsset(asst)
	result, err := a.chain.RunGetMethod(ctx, a.factory, getVaultAddressMethod, []chain.StackEntry{
		{Cell: assetCell.Bytes()},
	})
	if err != nil {
		return asset.Address{}, fmt.Errorf("dex: vault_address %s: %w", asst, err)
	}
	if len(result.Stack) != 1 || result.Stack[0].Slice == nil {
		return asset.Address{}, fmt.Errorf("dex: vault_address %s: unexpected stack shape", asst)
	}
	addr, err := decodeAddressSlice(result.Stack[0].Slice)
	if err != nil {
		return asset.Address{}, fmt.Errorf("dex: vault_address %s: %w", asst, err)
	}

	a.mu.Lock()
	a.vaults[asst] = addr
	a.mu.Unlock()
	return addr, nil
}

func decodeAddressSlice(raw []byte) (asset.Address, error) {
	if len(raw) != 33 {
		return asset.Address{}, fmt.Errorf("malformed address slice (%d bytes)", len(raw))
	}
	var addr asset.Address
	addr.Workchain = int8(raw[0])
	copy(addr.Hash[:], raw[1:])
	return addr, nil
}

// NextQueryID atomically allocates the next query_id. Multiple goroutines
// may call this concurrently without coordination.
func (a *Adapter) NextQueryID() uint64 {
	return a.queryID.Add(1)
}

// BuildBody assembles the ExecutionPayload for a chosen swap path: the
// destination vault, the gas to attach (a fixed overhead plus a per-step
// constant), and the serialized NativeVaultSwap body, grounded on
// arbitrager.rs's make_body and dedust/src/vault/native.rs's
// DedustNativeVaultSwap tag.
func (a *Adapter) BuildBody(ctx context.Context, queryID uint64, assetIn asset.Asset, amountIn *big.Int, step *wire.SwapStep, params wire.SwapParams) (ExecutionPayload, error) {
	dst, err := a.VaultAddress(ctx, assetIn)
	if err != nil {
		return ExecutionPayload{}, err
	}

	numSteps := 0
	for s := step; s != nil; s = s.Params.Next {
		numSteps++
	}
	gas := uint64(gasOverheadNanoTON) + uint64(numSteps)*uint64(gasPerStepNanoTON)

	swap := &wire.NativeVaultSwap{
		QueryID: queryID,
		Amount:  amountIn,
		Step:    step,
		Params:  params,
	}
	body, err := wire.EncodeNativeVaultSwap(swap)
	if err != nil {
		return ExecutionPayload{}, fmt.Errorf("dex: build_body: encoding swap: %w", err)
	}

	return ExecutionPayload{Dst: dst, Gas: gas, Body: body}, nil
}
