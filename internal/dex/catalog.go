package dex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/tonarb/aceton/internal/asset"
)

// catalogAssetJSON mirrors the catalog's {type, master_address?} asset
// shape; "type" is one of "native", "token", "extra_currency".
type catalogAssetJSON struct {
	Type          string `json:"type"`
	MasterAddress string `json:"master_address,omitempty"`
	CurrencyID    *int32 `json:"currency_id,omitempty"`
}

type catalogPoolJSON struct {
	Address  string              `json:"address"`
	Type     string              `json:"type"`
	TradeFee string              `json:"trade_fee"`
	Assets   []catalogAssetJSON  `json:"assets"`
	Reserves []string            `json:"reserves"`
}

// HTTPCatalog fetches the DEX's pool catalog over HTTP, rate limited and
// with bounded concurrency reserved for any follow-up per-pool requests.
type HTTPCatalog struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxWorkers int
}

// NewHTTPCatalog builds a catalog client against baseURL.
func NewHTTPCatalog(baseURL string) *HTTPCatalog {
	return &HTTPCatalog{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
			},
		},
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
		maxWorkers: 5,
	}
}

// FetchPools calls GET /pools and parses every entry, skipping (and
// logging) malformed ones rather than failing the whole fetch — per the
// error taxonomy, a malformed catalog entry is not fatal as long as at
// least one pool parses.
func (c *HTTPCatalog) FetchPools(ctx context.Context) ([]CatalogPool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("dex: catalog rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/pools", nil)
	if err != nil {
		return nil, fmt.Errorf("dex: building catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dex: fetching catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("dex: catalog returned status %d: %s", resp.StatusCode, string(body))
	}

	var raw []catalogPoolJSON
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("dex: decoding catalog response: %w", err)
	}

	pools := make([]CatalogPool, 0, len(raw))
	for _, entry := range raw {
		p, err := parseCatalogPool(entry)
		if err != nil {
			log.Warn().Err(err).Str("address", entry.Address).Msg("skipping malformed catalog pool entry")
			continue
		}
		pools = append(pools, p)
	}
	if len(pools) == 0 {
		return nil, fmt.Errorf("dex: catalog returned no usable pools")
	}
	return pools, nil
}

func parseCatalogPool(entry catalogPoolJSON) (CatalogPool, error) {
	if len(entry.Assets) != 2 || len(entry.Reserves) != 2 {
		return CatalogPool{}, fmt.Errorf("pool %s: expected 2 assets and 2 reserves", entry.Address)
	}

	addr, err := parseHexAddress(entry.Address)
	if err != nil {
		return CatalogPool{}, fmt.Errorf("pool address: %w", err)
	}

	assets := [2]asset.Asset{}
	for i, a := range entry.Assets {
		parsed, err := parseCatalogAsset(a)
		if err != nil {
			return CatalogPool{}, fmt.Errorf("asset %d: %w", i, err)
		}
		assets[i] = parsed
	}
	if assets[0] == assets[1] {
		return CatalogPool{}, fmt.Errorf("pool %s: both assets are %s", entry.Address, assets[0])
	}

	reserves := [2]*big.Int{}
	for i, r := range entry.Reserves {
		d, err := decimal.NewFromString(r)
		if err != nil {
			return CatalogPool{}, fmt.Errorf("reserve %d: %w", i, err)
		}
		reserves[i] = d.Truncate(0).BigInt()
	}

	feeDec, err := decimal.NewFromString(entry.TradeFee)
	if err != nil {
		return CatalogPool{}, fmt.Errorf("trade_fee: %w", err)
	}
	fee := decimalToRat(feeDec)

	return CatalogPool{
		Address:  addr,
		Stable:   entry.Type == "stable",
		TradeFee: fee,
		Assets:   assets,
		Reserves: reserves,
	}, nil
}

func parseCatalogAsset(a catalogAssetJSON) (asset.Asset, error) {
	switch a.Type {
	case "native":
		return asset.Native, nil
	case "token":
		addr, err := parseHexAddress(a.MasterAddress)
		if err != nil {
			return asset.Asset{}, fmt.Errorf("master_address: %w", err)
		}
		return asset.Token(addr), nil
	case "extra_currency":
		if a.CurrencyID == nil {
			return asset.Asset{}, fmt.Errorf("extra_currency missing currency_id")
		}
		return asset.ExtraCurrency(*a.CurrencyID), nil
	default:
		return asset.Asset{}, fmt.Errorf("unknown asset type %q", a.Type)
	}
}

// parseHexAddress parses a "workchain:hex64" style address string.
func parseHexAddress(s string) (asset.Address, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return asset.Address{}, fmt.Errorf("malformed address %q", s)
	}
	var wc int
	if _, err := fmt.Sscanf(parts[0], "%d", &wc); err != nil {
		return asset.Address{}, fmt.Errorf("malformed workchain in %q: %w", s, err)
	}
	if len(parts[1]) != 64 {
		return asset.Address{}, fmt.Errorf("malformed address hash in %q", s)
	}
	var hash [32]byte
	for i := 0; i < 32; i++ {
		var b int
		if _, err := fmt.Sscanf(parts[1][i*2:i*2+2], "%02x", &b); err != nil {
			return asset.Address{}, fmt.Errorf("malformed address hash in %q: %w", s, err)
		}
		hash[i] = byte(b)
	}
	return asset.Address{Workchain: int8(wc), Hash: hash}, nil
}

func decimalToRat(d decimal.Decimal) *big.Rat {
	r := new(big.Rat)
	r.SetString(d.String())
	return r
}
