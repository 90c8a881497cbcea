// Package loop implements the execution loop's state machine: refresh
// reserves, search for a profitable cycle, gate its profit against gas,
// build and sign the swap payload, submit it, and quiesce before
// repeating. Grounded directly on original_source's
// crates/arbitrage/src/arbitrager.rs Arbitrager::run.
package loop

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tonarb/aceton/internal/asset"
	"github.com/tonarb/aceton/internal/audit"
	"github.com/tonarb/aceton/internal/chain"
	"github.com/tonarb/aceton/internal/cycles"
	"github.com/tonarb/aceton/internal/dex"
	"github.com/tonarb/aceton/internal/dexgraph"
	"github.com/tonarb/aceton/internal/metrics"
	"github.com/tonarb/aceton/internal/swappath"
	"github.com/tonarb/aceton/internal/telemetry"
	"github.com/tonarb/aceton/internal/wallet"
	"github.com/tonarb/aceton/internal/wire"
)

// Reference constants from arbitrager.rs: the native-coin reserve the
// wallet never spends down, the flat safety margin on top of gas, and the
// minimum post-gas return rate a cycle must clear.
const (
	defaultKeepMinNanoTON = 2_000_000_000 // 2 TON
	defaultSafetyNanoTON  = 100_000_000   // 0.1 TON
	defaultRefreshLimit   = 100
	validityWindow        = 60 * time.Second
)

// ErrUnsupportedBaseAsset is returned when Config.BaseAsset is a jetton or
// extra-currency asset. Only the native coin has a balance reader and a
// direct-value swap path wired up; jetton and extra-currency base assets
// need their own balance and transfer dispatch and aren't implemented yet.
var ErrUnsupportedBaseAsset = errors.New("loop: unsupported base asset")

// Config tunes one Loop's thresholds and timing. Zero-valued fields take
// the reference defaults via WithDefaults.
type Config struct {
	BaseAsset          asset.Asset
	MaxCycleLength     int
	BalanceCoef        *big.Rat // amount_in_balance_coef, in (0, 1]
	KeepMinNanoTON     uint64   // only applies when BaseAsset is native
	SafetyNanoTON      uint64
	MinRate            *big.Rat // minimum (profit - gas) / amount_in
	CooldownMin        time.Duration
	CooldownMax        time.Duration
	RefreshConcurrency int
}

// WithDefaults fills any zero-valued field with the reference constant.
func (c Config) WithDefaults() Config {
	if c.MaxCycleLength <= 0 {
		c.MaxCycleLength = 4
	}
	if c.BalanceCoef == nil {
		c.BalanceCoef = big.NewRat(7, 10)
	}
	if c.KeepMinNanoTON == 0 {
		c.KeepMinNanoTON = defaultKeepMinNanoTON
	}
	if c.SafetyNanoTON == 0 {
		c.SafetyNanoTON = defaultSafetyNanoTON
	}
	if c.MinRate == nil {
		c.MinRate = big.NewRat(5, 100)
	}
	if c.CooldownMin <= 0 {
		c.CooldownMin = 60 * time.Second
	}
	if c.CooldownMax <= 0 {
		c.CooldownMax = 90 * time.Second
	}
	if c.RefreshConcurrency <= 0 {
		c.RefreshConcurrency = defaultRefreshLimit
	}
	return c
}

// Loop owns the live DEX graph and drives the refresh/search/submit state
// machine. It is not safe for concurrent use — a single task should own it.
type Loop struct {
	cfg      Config
	graph    *dexgraph.Graph
	adapter  *dex.Adapter
	chain    *chain.Client
	signer   wallet.Signer
	metrics  *metrics.Metrics
	recorder *audit.Store
	rng      *rand.Rand
}

// New builds a Loop. graph must already hold the pools fetched at startup
// (see Bootstrap).
func New(cfg Config, graph *dexgraph.Graph, adapter *dex.Adapter, chainClient *chain.Client, signer wallet.Signer, m *metrics.Metrics) *Loop {
	return &Loop{
		cfg:     cfg.WithDefaults(),
		graph:   graph,
		adapter: adapter,
		chain:   chainClient,
		signer:  signer,
		metrics: m,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithAuditTrail attaches a write-only audit store; every submission is
// recorded best-effort after it is sent. A nil store disables recording.
func (l *Loop) WithAuditTrail(store *audit.Store) *Loop {
	l.recorder = store
	return l
}

// Bootstrap fetches the pool catalog once and populates graph, skipping
// (and logging) any pool that is inactive or otherwise unusable. Pools are
// acquired once at startup; the graph's topology never changes afterward,
// only edge weights.
func Bootstrap(ctx context.Context, graph *dexgraph.Graph, adapter *dex.Adapter) error {
	pools, err := adapter.FetchPools(ctx)
	if err != nil {
		return fmt.Errorf("loop: bootstrap: %w", err)
	}
	added := 0
	for _, p := range pools {
		if err := graph.AddPool(p); err != nil {
			log.Warn().Err(err).Str("pool", p.Address.String()).Msg("skipping pool during bootstrap")
			continue
		}
		added++
	}
	if added == 0 {
		return fmt.Errorf("loop: bootstrap: no usable pools out of %d fetched", len(pools))
	}
	log.Info().Int("pools", added).Int("fetched", len(pools)).Msg("dex graph bootstrapped")
	return nil
}

// Run drives the loop until ctx is canceled. Every iteration's errors are
// logged and absorbed — the loop only ever returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	log.Info().
		Str("base_asset", l.cfg.BaseAsset.String()).
		Int("max_length", l.cfg.MaxCycleLength).
		Msg("starting execution loop")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := l.runIteration(ctx); err != nil {
			log.Warn().Err(err).Msg("iteration aborted")
		}

		cooldown := l.cooldown()
		log.Debug().Dur("cooldown", cooldown).Msg("sleeping before next iteration")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cooldown):
		}
	}
}

func (l *Loop) cooldown() time.Duration {
	span := l.cfg.CooldownMax - l.cfg.CooldownMin
	if span <= 0 {
		return l.cfg.CooldownMin
	}
	return l.cfg.CooldownMin + time.Duration(l.rng.Int63n(int64(span)))
}

// runIteration executes one pass of refresh → search → evaluate → decide →
// build → sign → submit.
func (l *Loop) runIteration(ctx context.Context) error {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "runIteration")
	defer span.End()

	if !l.cfg.BaseAsset.IsNative() {
		return fmt.Errorf("%w: %s (only the native base is implemented)", ErrUnsupportedBaseAsset, l.cfg.BaseAsset)
	}

	start := time.Now()
	if err := l.refreshReserves(ctx); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if l.metrics != nil {
		l.metrics.RecordRefreshLatency(time.Since(start))
		l.metrics.SetPoolsTracked(l.graph.NumPools())
	}

	account, err := l.chain.GetAccountState(ctx, l.signer.Address())
	if err != nil {
		return fmt.Errorf("read account state: %w", err)
	}

	amountIn, ok := l.computeAmountIn(account.BalanceNanoTON)
	if !ok {
		log.Info().Uint64("balance", account.BalanceNanoTON).Msg("balance too small, skipping iteration")
		return nil
	}

	searchStart := time.Now()
	bestPath, bestOut := l.searchBestCycle(amountIn)
	if l.metrics != nil {
		l.metrics.RecordSearchLatency(time.Since(searchStart))
	}
	if bestPath == nil {
		log.Info().Msg("no profitable cycles found")
		return nil
	}

	if bestOut.Cmp(amountIn) <= 0 {
		log.Info().Str("amount_in", amountIn.String()).Str("amount_out", bestOut.String()).
			Msg("best cycle is not profitable after the integer re-check")
		return nil
	}

	queryID := l.adapter.NextQueryID()
	stepRoot := bestPath.BuildNestedStepList()
	payload, err := l.adapter.BuildBody(ctx, queryID, l.cfg.BaseAsset, amountIn, stepRoot, wire.SwapParams{
		Deadline:  0,
		Recipient: asset.Null,
		Referral:  asset.Null,
	})
	if err != nil {
		return fmt.Errorf("build payload: %w", err)
	}

	profit := new(big.Int).Sub(bestOut, amountIn)
	gas := new(big.Int).SetUint64(payload.Gas)
	safety := new(big.Int).SetUint64(l.cfg.SafetyNanoTON)
	threshold := new(big.Int).Add(gas, safety)
	if profit.Cmp(threshold) <= 0 {
		log.Info().Str("profit", profit.String()).Str("gas", gas.String()).
			Msg("profit does not clear gas plus safety margin")
		return nil
	}

	netProfit := new(big.Int).Sub(profit, gas)
	rate := new(big.Rat).SetFrac(netProfit, amountIn)
	if rate.Cmp(l.cfg.MinRate) < 0 {
		rateF, _ := rate.Float64()
		log.Info().Float64("rate", rateF).Msg("net profit rate below the configured minimum")
		return nil
	}

	log.Info().
		Str("amount_in", amountIn.String()).
		Str("amount_out", bestOut.String()).
		Str("net_profit", netProfit.String()).
		Str("path", bestPath.String()).
		Msg("submitting profitable cycle")
	span.SetAttributes(
		attribute.String("amount_in", amountIn.String()),
		attribute.String("net_profit", netProfit.String()),
		attribute.Int("cycle_length", len(bestPath.Steps())),
	)

	txHash, err := l.submit(ctx, account.Seqno, amountIn, payload)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if l.metrics != nil {
		l.metrics.RecordSubmission(netProfit)
	}
	if l.recorder != nil {
		if err := l.recorder.RecordSubmission(ctx, audit.Record{
			SubmittedAt: time.Now(),
			Path:        bestPath.String(),
			AmountIn:    amountIn.String(),
			AmountOut:   bestOut.String(),
			NetProfit:   netProfit.String(),
			TxHash:      txHash,
		}); err != nil {
			log.Warn().Err(err).Msg("failed to write audit record")
		}
	}
	span.SetAttributes(attribute.String("tx_hash", txHash))
	log.Info().Str("tx_hash", txHash).Msg("sent arbitrage transaction")
	return nil
}

// refreshReserves fans out a bounded-concurrency reserve read across every
// pool the graph already knows about and applies any change.
func (l *Loop) refreshReserves(ctx context.Context) error {
	addrs := l.graph.PoolAddresses()
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.RefreshConcurrency)

	for _, addr := range addrs {
		addr := addr
		g.Go(func() error {
			r0, r1, err := l.adapter.RefreshReserves(gCtx, addr)
			if err != nil {
				log.Warn().Err(err).Str("pool", addr.String()).Msg("refresh_reserves failed, keeping stale reserves")
				return nil
			}
			if _, err := l.graph.UpdatePoolReserves(addr, r0, r1); err != nil {
				log.Warn().Err(err).Str("pool", addr.String()).Msg("update_pool_reserves failed")
			}
			return nil
		})
	}
	return g.Wait()
}

// computeAmountIn applies the balance_coef fraction, reserving KeepMinNanoTON
// for a native base asset. ok is false when the remaining balance is below
// the keep-min and the iteration should be skipped.
func (l *Loop) computeAmountIn(balanceNanoTON uint64) (amountIn *big.Int, ok bool) {
	available := balanceNanoTON
	if l.cfg.BaseAsset.IsNative() {
		if balanceNanoTON < l.cfg.KeepMinNanoTON {
			return nil, false
		}
		available = balanceNanoTON - l.cfg.KeepMinNanoTON
		if available < l.cfg.KeepMinNanoTON {
			return nil, false
		}
	}
	scaled := new(big.Rat).Mul(l.cfg.BalanceCoef, new(big.Rat).SetUint64(available))
	amount := new(big.Int).Quo(scaled.Num(), scaled.Denom())
	if amount.Sign() <= 0 {
		return nil, false
	}
	return amount, true
}

// searchBestCycle enumerates every negative cycle rooted at the base asset
// and returns the one with the highest estimated output at amountIn, ties
// broken by iteration order (first max wins).
func (l *Loop) searchBestCycle(amountIn *big.Int) (*swappath.Path, *big.Int) {
	snap := l.graph.Snapshot()
	start, ok := snap.AssetVertex(l.cfg.BaseAsset)
	if !ok {
		log.Warn().Str("base_asset", l.cfg.BaseAsset.String()).Msg("base asset has no vertex in the dex graph")
		return nil, nil
	}

	it := cycles.New(snap, start, l.cfg.MaxCycleLength)
	var bestPath *swappath.Path
	var bestOut *big.Int
	cyclesSeen := 0

	for {
		cyc, ok := it.Next()
		if !ok {
			break
		}
		cyclesSeen++

		path := swappath.New(l.cfg.BaseAsset)
		for _, e := range cyc.Edges {
			path.Push(e.Pool)
		}
		out := path.EstimateSwapOut(amountIn)
		if bestOut == nil || out.Cmp(bestOut) > 0 {
			bestPath = path
			bestOut = out
		}
	}

	if l.metrics != nil {
		l.metrics.RecordCyclesFound(cyclesSeen)
	}
	return bestPath, bestOut
}

// submit wraps the payload in a signed external message and broadcasts it.
func (l *Loop) submit(ctx context.Context, seqno uint32, amountIn *big.Int, payload dex.ExecutionPayload) (string, error) {
	value := payload.Gas
	if l.cfg.BaseAsset.IsNative() {
		if !amountIn.IsUint64() {
			return "", fmt.Errorf("amount_in %s overflows a nanoTON value", amountIn)
		}
		value += amountIn.Uint64()
	}

	validUntil := uint32(time.Now().Add(validityWindow).Unix())
	signed, err := l.signer.CreateExternalMessage(validUntil, seqno, wallet.InternalMessage{
		Dst:          payload.Dst,
		ValueNanoTON: value,
		Bounce:       true,
		Body:         payload.Body,
	})
	if err != nil {
		return "", fmt.Errorf("sign external message: %w", err)
	}

	boc := chain.EncodeBOC(signed.Bytes())
	hash, err := l.chain.SendMessageReturningHash(ctx, boc)
	if err != nil {
		return "", fmt.Errorf("send_message_returning_hash: %w", err)
	}
	return hash, nil
}
