// Package config loads the bot's text configuration: the chain RPC
// endpoint, the DEX pool catalog, and the arbitrage search parameters.
package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/tonarb/aceton/internal/asset"
)

// Config holds all application configuration, read once at startup.
type Config struct {
	TON       TONConfig       `toml:"ton"`
	Dex       DexConfig       `toml:"dex"`
	Arbitrage ArbitrageConfig `toml:"arbitrage"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Audit     AuditConfig     `toml:"audit"`
}

// AuditConfig locates the write-only local audit trail database. Empty
// disables it.
type AuditConfig struct {
	SQLitePath string `toml:"sqlite_path"`
}

// TONConfig points at the chain's global config, consumed by the
// out-of-scope RPC transport collaborator.
type TONConfig struct {
	ConfigURL string `toml:"config_url"`
}

// DexConfig locates the HTTP pool catalog and the factory contract that
// resolves per-asset vault addresses.
type DexConfig struct {
	CatalogURL     string `toml:"catalog_url"`
	FactoryAddress string `toml:"factory_address"`
}

// ArbitrageConfig tunes the search and sizing parameters.
type ArbitrageConfig struct {
	BaseAsset           string `toml:"base_asset"`
	MaxLength           int    `toml:"max_length"`
	AmountInBalanceCoef string `toml:"amount_in_balance_coef"`

	baseAsset   asset.Asset
	balanceCoef *big.Rat
}

// BaseAsset returns the parsed base asset.
func (a ArbitrageConfig) BaseAsset() asset.Asset { return a.baseAsset }

// BalanceCoef returns the parsed amount_in_balance_coef rational.
func (a ArbitrageConfig) BalanceCoef() *big.Rat { return a.balanceCoef }

// MetricsConfig holds Prometheus metrics server settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Port    int    `toml:"port"`
	Path    string `toml:"path"`
}

// Load reads configuration from a TOML file, parses its derived fields, and
// validates it.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.setDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.parse(); err != nil {
		return nil, fmt.Errorf("parsing config values: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	c.Arbitrage = ArbitrageConfig{
		MaxLength:           4,
		AmountInBalanceCoef: "0.7",
	}
	c.Metrics = MetricsConfig{
		Enabled: true,
		Port:    9090,
		Path:    "/metrics",
	}
	c.Audit = AuditConfig{
		SQLitePath: "./aceton-audit.db",
	}
}

// parse converts the textual asset tag and rational fields into their
// structured forms.
func (c *Config) parse() error {
	a, err := ParseAsset(c.Arbitrage.BaseAsset)
	if err != nil {
		return fmt.Errorf("arbitrage.base_asset: %w", err)
	}
	c.Arbitrage.baseAsset = a

	coef, ok := new(big.Rat).SetString(c.Arbitrage.AmountInBalanceCoef)
	if !ok {
		return fmt.Errorf("arbitrage.amount_in_balance_coef: invalid rational %q", c.Arbitrage.AmountInBalanceCoef)
	}
	c.Arbitrage.balanceCoef = coef
	return nil
}

func (c *Config) validate() error {
	if c.TON.ConfigURL == "" {
		return fmt.Errorf("ton.config_url is required")
	}
	if c.Dex.CatalogURL == "" {
		return fmt.Errorf("dex.catalog_url is required")
	}
	if c.Dex.FactoryAddress == "" {
		return fmt.Errorf("dex.factory_address is required")
	}
	if !c.Arbitrage.baseAsset.IsNative() {
		return fmt.Errorf("arbitrage.base_asset: only the native asset is supported by this core")
	}
	if c.Arbitrage.MaxLength <= 0 || c.Arbitrage.MaxLength > 6 {
		return fmt.Errorf("arbitrage.max_length must be in [1, 6]")
	}
	coef := c.Arbitrage.balanceCoef
	if coef.Sign() <= 0 || coef.Cmp(big.NewRat(1, 1)) > 0 {
		return fmt.Errorf("arbitrage.amount_in_balance_coef must be in (0, 1]")
	}
	if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be a valid port number")
	}
	return nil
}

// ParseAddress parses a bare "<workchain>:<64-hex address hash>" address,
// the format used for contract addresses like dex.factory_address that
// aren't themselves assets.
func ParseAddress(s string) (asset.Address, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return asset.Address{}, fmt.Errorf("expected <workchain>:<hash>, got %q", s)
	}
	wc, err := strconv.ParseInt(parts[0], 10, 8)
	if err != nil {
		return asset.Address{}, fmt.Errorf("workchain: %w", err)
	}
	if len(parts[1]) != 64 {
		return asset.Address{}, fmt.Errorf("address hash must be 64 hex chars, got %d", len(parts[1]))
	}
	var hash [32]byte
	for i := 0; i < 32; i++ {
		b, err := strconv.ParseUint(parts[1][i*2:i*2+2], 16, 8)
		if err != nil {
			return asset.Address{}, fmt.Errorf("address hash: %w", err)
		}
		hash[i] = byte(b)
	}
	return asset.Address{Workchain: int8(wc), Hash: hash}, nil
}

// ParseAsset parses the config/CLI tagged-asset syntax:
//
//	"native"
//	"token:<workchain>:<64-hex address hash>"
//	"extra_currency:<id>"
func ParseAsset(s string) (asset.Asset, error) {
	parts := strings.SplitN(s, ":", 3)
	switch parts[0] {
	case "native":
		return asset.Native, nil
	case "token":
		if len(parts) != 3 {
			return asset.Asset{}, fmt.Errorf("expected token:<workchain>:<hash>, got %q", s)
		}
		wc, err := strconv.ParseInt(parts[1], 10, 8)
		if err != nil {
			return asset.Asset{}, fmt.Errorf("token workchain: %w", err)
		}
		if len(parts[2]) != 64 {
			return asset.Asset{}, fmt.Errorf("token hash must be 64 hex chars, got %d", len(parts[2]))
		}
		var hash [32]byte
		for i := 0; i < 32; i++ {
			b, err := strconv.ParseUint(parts[2][i*2:i*2+2], 16, 8)
			if err != nil {
				return asset.Asset{}, fmt.Errorf("token hash: %w", err)
			}
			hash[i] = byte(b)
		}
		return asset.Token(asset.Address{Workchain: int8(wc), Hash: hash}), nil
	case "extra_currency":
		if len(parts) != 2 {
			return asset.Asset{}, fmt.Errorf("expected extra_currency:<id>, got %q", s)
		}
		id, err := strconv.ParseInt(parts[1], 10, 32)
		if err != nil {
			return asset.Asset{}, fmt.Errorf("extra currency id: %w", err)
		}
		return asset.ExtraCurrency(int32(id)), nil
	default:
		return asset.Asset{}, fmt.Errorf("unknown asset tag %q", parts[0])
	}
}
