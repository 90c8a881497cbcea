package dex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonarb/aceton/internal/asset"
)

func validHexAddr(prefix byte) string {
	hash := make([]byte, 32)
	for i := range hash {
		hash[i] = prefix
	}
	out := "0:"
	for _, b := range hash {
		out += hexByte(b)
	}
	return out
}

func hexByte(b byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0xf]})
}

func TestParseCatalogPool(t *testing.T) {
	entry := catalogPoolJSON{
		Address:  validHexAddr(0x11),
		Type:     "volatile",
		TradeFee: "0.003",
		Assets: []catalogAssetJSON{
			{Type: "native"},
			{Type: "token", MasterAddress: validHexAddr(0x22)},
		},
		Reserves: []string{"10000", "20000"},
	}

	p, err := parseCatalogPool(entry)
	require.NoError(t, err)
	assert.False(t, p.Stable)
	assert.Equal(t, asset.Native, p.Assets[0])
	assert.Equal(t, int64(10000), p.Reserves[0].Int64())
	assert.Equal(t, int64(20000), p.Reserves[1].Int64())
	assert.Equal(t, "3/1000", p.TradeFee.RatString())
}

func TestParseCatalogPool_RejectsMismatchedArity(t *testing.T) {
	entry := catalogPoolJSON{
		Address:  validHexAddr(0x11),
		Type:     "volatile",
		TradeFee: "0.003",
		Assets:   []catalogAssetJSON{{Type: "native"}},
		Reserves: []string{"10000", "20000"},
	}
	_, err := parseCatalogPool(entry)
	assert.Error(t, err)
}

func TestHTTPCatalog_FetchPools(t *testing.T) {
	addr1 := validHexAddr(0x11)
	addr2 := validHexAddr(0x22)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{
			"address": "` + addr1 + `",
			"type": "volatile",
			"trade_fee": "0.003",
			"assets": [{"type": "native"}, {"type": "token", "master_address": "` + addr2 + `"}],
			"reserves": ["10000", "20000"]
		}]`))
	}))
	defer server.Close()

	c := NewHTTPCatalog(server.URL)
	pools, err := c.FetchPools(context.Background())
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, asset.Native, pools[0].Assets[0])
}

func TestHTTPCatalog_FetchPools_SkipsMalformedEntries(t *testing.T) {
	addr1 := validHexAddr(0x11)
	addr2 := validHexAddr(0x22)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"address": "not-an-address", "type": "volatile", "trade_fee": "0.003", "assets": [{"type":"native"},{"type":"native"}], "reserves": ["1","2"]},
			{
				"address": "` + addr1 + `",
				"type": "volatile",
				"trade_fee": "0.003",
				"assets": [{"type": "native"}, {"type": "token", "master_address": "` + addr2 + `"}],
				"reserves": ["10000", "20000"]
			}
		]`))
	}))
	defer server.Close()

	c := NewHTTPCatalog(server.URL)
	pools, err := c.FetchPools(context.Background())
	require.NoError(t, err)
	require.Len(t, pools, 1)
}

func TestHTTPCatalog_FetchPools_AllMalformedIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"address": "bad", "type": "volatile", "trade_fee": "0.003", "assets": [], "reserves": []}]`))
	}))
	defer server.Close()

	c := NewHTTPCatalog(server.URL)
	_, err := c.FetchPools(context.Background())
	assert.Error(t, err)
}
