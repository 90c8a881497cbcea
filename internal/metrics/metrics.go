package metrics

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics holds all Prometheus metrics for the arbitrage execution loop.
type Metrics struct {
	// Graph metrics
	PoolsTracked prometheus.Gauge

	// Refresh metrics
	RefreshLatency prometheus.Histogram

	// Search metrics
	SearchLatency prometheus.Histogram
	CyclesFound   prometheus.Histogram

	// Submission metrics
	SubmissionsTotal  prometheus.Counter
	ProfitNanoTONTotal prometheus.Counter

	server *http.Server
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		PoolsTracked: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "aceton_pools_tracked",
				Help: "Number of pools currently tracked in the DEX graph",
			},
		),
		RefreshLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aceton_refresh_latency_seconds",
				Help:    "Time to fan out a reserve refresh across every tracked pool",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
			},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aceton_search_latency_seconds",
				Help:    "Time to enumerate and rank profitable cycles in one iteration",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
			},
		),
		CyclesFound: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aceton_cycles_found",
				Help:    "Number of negative cycles enumerated per iteration",
				Buckets: prometheus.LinearBuckets(0, 5, 10),
			},
		),
		SubmissionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "aceton_submissions_total",
				Help: "Total number of arbitrage transactions submitted",
			},
		),
		ProfitNanoTONTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "aceton_profit_nanoton_total",
				Help: "Cumulative estimated net profit of submitted transactions, in nanoTON",
			},
		),
	}

	prometheus.MustRegister(
		m.PoolsTracked,
		m.RefreshLatency,
		m.SearchLatency,
		m.CyclesFound,
		m.SubmissionsTotal,
		m.ProfitNanoTONTotal,
	)

	return m
}

// StartServer starts the HTTP server exposing Prometheus metrics.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	m.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		log.Info().Int("port", port).Str("path", path).Msg("starting metrics server")
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()

	return nil
}

// Shutdown gracefully stops the metrics server.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server != nil {
		return m.server.Shutdown(ctx)
	}
	return nil
}

// SetPoolsTracked sets the current number of tracked pools.
func (m *Metrics) SetPoolsTracked(count int) {
	m.PoolsTracked.Set(float64(count))
}

// RecordRefreshLatency records the time spent fanning out one reserve
// refresh across the tracked pools.
func (m *Metrics) RecordRefreshLatency(d time.Duration) {
	m.RefreshLatency.Observe(d.Seconds())
}

// RecordSearchLatency records the time spent enumerating and ranking
// cycles in one iteration.
func (m *Metrics) RecordSearchLatency(d time.Duration) {
	m.SearchLatency.Observe(d.Seconds())
}

// RecordCyclesFound records how many negative cycles one iteration's
// search enumerated.
func (m *Metrics) RecordCyclesFound(n int) {
	m.CyclesFound.Observe(float64(n))
}

// RecordSubmission records a submitted transaction and its estimated net
// profit.
func (m *Metrics) RecordSubmission(netProfitNanoTON *big.Int) {
	m.SubmissionsTotal.Inc()
	profitF, _ := new(big.Float).SetInt(netProfitNanoTON).Float64()
	if profitF > 0 {
		m.ProfitNanoTONTotal.Add(profitF)
	}
}
