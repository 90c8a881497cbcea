// Package dex translates between on-chain reality and the generic pool
// model: pool discovery via the DEX's HTTP catalog, on-chain reserve
// refresh, vault address resolution, and swap payload assembly.
package dex

import (
	"context"
	"math/big"

	"github.com/tonarb/aceton/internal/asset"
	"github.com/tonarb/aceton/internal/wire"
)

// CatalogPool is one entry of the DEX's pool catalog, already parsed into
// domain types.
type CatalogPool struct {
	Address  asset.Address
	Stable   bool
	TradeFee *big.Rat
	Assets   [2]asset.Asset
	Reserves [2]*big.Int
}

// Catalog is the out-of-scope HTTP pool catalog, consumed through this
// narrow interface.
type Catalog interface {
	FetchPools(ctx context.Context) ([]CatalogPool, error)
}

// ExecutionPayload is what build_body produces: the vault to invoke, the
// gas to attach, and the serialized NativeVaultSwap body cell.
type ExecutionPayload struct {
	Dst  asset.Address
	Gas  uint64
	Body *wire.Cell
}
