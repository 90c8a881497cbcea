package dexgraph

import "math"

// maxWeight/minWeight bound the weight of an edge with a positive effective
// rate, so a tiny or enormous rate still yields a finite cycle cost.
const (
	maxWeight = 230.0
	minWeight = -230.0
)

// edgeWeight returns -log2(effectiveRate), clamped to [minWeight, maxWeight].
// A zero, negative or NaN rate (a pool with an empty reserve) yields +Inf, so
// isFiniteWeight drops that edge from the cycle search; an infinite rate
// yields maxWeight.
func edgeWeight(effectiveRate float64) float64 {
	if effectiveRate <= 0 || math.IsNaN(effectiveRate) {
		return math.Inf(1)
	}
	if math.IsInf(effectiveRate, 0) {
		return maxWeight
	}
	w := -math.Log2(effectiveRate)
	switch {
	case math.IsNaN(w):
		return maxWeight
	case w > maxWeight:
		return maxWeight
	case w < minWeight:
		return minWeight
	default:
		return w
	}
}

// isFiniteWeight reports whether w is usable by the cycle search — the
// edge_filter_finite_weight operation named in the design.
func isFiniteWeight(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, 0)
}
