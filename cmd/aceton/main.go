package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tonarb/aceton/internal/audit"
	"github.com/tonarb/aceton/internal/chain"
	"github.com/tonarb/aceton/internal/config"
	"github.com/tonarb/aceton/internal/dex"
	"github.com/tonarb/aceton/internal/dexgraph"
	"github.com/tonarb/aceton/internal/loop"
	"github.com/tonarb/aceton/internal/metrics"
	"github.com/tonarb/aceton/internal/telemetry"
	"github.com/tonarb/aceton/internal/wallet"
)

func main() {
	configPath := flag.String("config", "aceton.toml", "Path to configuration file")
	secretPath := flag.String("secret", "wallet.secret", "Path to the wallet secret file (address and ed25519 key)")
	verbosity := flag.Int("v", 0, "Log verbosity level as a number (-v=1 for debug, -v=2 for trace); repeated -v flags are not counted")
	jsonLogs := flag.Bool("json", false, "Emit logs as JSON instead of a console writer")
	otlpEndpoint := flag.String("otlp-endpoint", "", "OTLP/gRPC collector endpoint for traces and metrics (disabled if empty)")
	flag.Parse()

	setupLogging(*verbosity, *jsonLogs)

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	shutdownTelemetry, err := telemetry.Setup(ctx, *otlpEndpoint, "aceton")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("error shutting down telemetry")
		}
	}()

	if err := run(ctx, cfg, *secretPath); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("application error")
	}

	log.Info().Msg("aceton shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, secretPath string) error {
	m := metrics.New()
	if cfg.Metrics.Enabled {
		if err := m.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			m.Shutdown(shutdownCtx)
		}()
		log.Info().Int("port", cfg.Metrics.Port).Msg("metrics server started")
	}

	transport := chain.NewHTTPTransport(cfg.TON.ConfigURL, os.Getenv("TON_RPC_API_KEY"))
	chainClient := chain.New(transport, chain.Config{})

	factoryAddr, err := config.ParseAddress(cfg.Dex.FactoryAddress)
	if err != nil {
		return err
	}

	catalog := dex.NewHTTPCatalog(cfg.Dex.CatalogURL)
	adapter := dex.NewAdapter(catalog, chainClient, factoryAddr)

	graph := dexgraph.New()
	if err := loop.Bootstrap(ctx, graph, adapter); err != nil {
		return err
	}

	signer, err := loadSigner(secretPath)
	if err != nil {
		return err
	}

	l := loop.New(loop.Config{
		BaseAsset:      cfg.Arbitrage.BaseAsset(),
		MaxCycleLength: cfg.Arbitrage.MaxLength,
		BalanceCoef:    cfg.Arbitrage.BalanceCoef(),
	}, graph, adapter, chainClient, signer, m)

	if cfg.Audit.SQLitePath != "" {
		store, err := audit.Open(cfg.Audit.SQLitePath)
		if err != nil {
			return err
		}
		defer store.Close()
		l = l.WithAuditTrail(store)
		log.Info().Str("path", cfg.Audit.SQLitePath).Msg("audit trail enabled")
	}

	log.Info().Int("pools", graph.NumPools()).Msg("starting execution loop")
	return l.Run(ctx)
}

// loadSigner reads a secret file of the form "<workchain>:<64-hex address
// hash>\n<64-hex ed25519 private key seed>" and builds a wallet.V4R2 signer.
// Deriving that key from a mnemonic is explicitly out of this core's scope;
// the secret file is assumed already derived by an external tool.
func loadSigner(path string) (*wallet.V4R2, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		return nil, errors.New("wallet secret file must have exactly two lines: address, then hex private key seed")
	}

	addr, err := config.ParseAddress(lines[0])
	if err != nil {
		return nil, err
	}

	seed, err := hex.DecodeString(strings.TrimSpace(lines[1]))
	if err != nil {
		return nil, err
	}
	priv := ed25519.NewKeyFromSeed(seed)

	signFn := func(data []byte) ([]byte, error) {
		return ed25519.Sign(priv, data), nil
	}
	return wallet.NewV4R2(addr, signFn), nil
}

func setupLogging(verbosity int, jsonOutput bool) {
	level := zerolog.InfoLevel
	switch {
	case verbosity >= 2:
		level = zerolog.TraceLevel
	case verbosity == 1:
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if jsonOutput {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}
