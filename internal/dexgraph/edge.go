package dexgraph

import "github.com/tonarb/aceton/internal/asset"

// EdgeID identifies a directed edge stably across copies: a pool offers at
// most one edge per direction, so (pool address, input asset) is unique.
type EdgeID struct {
	Pool    asset.Address
	AssetIn asset.Asset
}

// ID returns e's stable identity, used by the cycle search's edge-reuse
// rule.
func (e Edge) ID() EdgeID {
	return EdgeID{Pool: e.Pool.Address, AssetIn: e.AssetIn}
}
