package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tonarb/aceton/internal/asset"
)

// HTTPTransport implements Transport against a toncenter-style TON HTTP
// API: GET /getWalletInformation, POST /runGetMethod, POST
// /sendBocReturnHash. A thin JSON HTTP wrapper generalized to the three
// verbs this chain's API needs.
type HTTPTransport struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPTransport builds a transport against baseURL (e.g. a toncenter
// mainnet or testnet endpoint). apiKey may be empty.
func NewHTTPTransport(baseURL, apiKey string) *HTTPTransport {
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 20 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = strings.NewReader(string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.apiKey != "" {
		req.Header.Set("X-API-Key", t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(respBody))
	}

	var envelope struct {
		OK     bool            `json:"ok"`
		Result json.RawMessage `json:"result"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("unmarshaling envelope: %w", err)
	}
	if !envelope.OK {
		return fmt.Errorf("api error: %s", envelope.Error)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("unmarshaling result: %w", err)
		}
	}
	return nil
}

func addrParam(addr asset.Address) string {
	return fmt.Sprintf("%d:%x", addr.Workchain, addr.Hash)
}

// GetAccountState implements Transport.
func (t *HTTPTransport) GetAccountState(ctx context.Context, addr asset.Address) (AccountState, error) {
	var result struct {
		Balance string `json:"balance"`
		Seqno   int    `json:"seqno"`
	}
	path := "/getWalletInformation?address=" + addrParam(addr)
	if err := t.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return AccountState{}, err
	}
	balance, err := strconv.ParseUint(result.Balance, 10, 64)
	if err != nil {
		return AccountState{}, fmt.Errorf("parsing balance %q: %w", result.Balance, err)
	}
	return AccountState{BalanceNanoTON: balance, Seqno: uint32(result.Seqno)}, nil
}

// RunGetMethod implements Transport.
func (t *HTTPTransport) RunGetMethod(ctx context.Context, addr asset.Address, method string, stack []StackEntry) (GetMethodResult, error) {
	req := struct {
		Address string     `json:"address"`
		Method  string     `json:"method"`
		Stack   [][2]string `json:"stack"`
	}{
		Address: addrParam(addr),
		Method:  method,
	}
	for _, e := range stack {
		switch {
		case e.Number != nil:
			req.Stack = append(req.Stack, [2]string{"num", *e.Number})
		case e.Slice != nil:
			req.Stack = append(req.Stack, [2]string{"slice", base64.StdEncoding.EncodeToString(e.Slice)})
		case e.Cell != nil:
			req.Stack = append(req.Stack, [2]string{"cell", base64.StdEncoding.EncodeToString(e.Cell)})
		}
	}

	var result struct {
		ExitCode int         `json:"exit_code"`
		Stack    [][2]string `json:"stack"`
	}
	if err := t.do(ctx, http.MethodPost, "/runGetMethod", req, &result); err != nil {
		return GetMethodResult{}, err
	}

	out := GetMethodResult{ExitCode: result.ExitCode}
	for _, pair := range result.Stack {
		if len(pair) != 2 {
			continue
		}
		switch pair[0] {
		case "num":
			v := pair[1]
			out.Stack = append(out.Stack, NumberEntry(v))
		case "slice":
			raw, err := base64.StdEncoding.DecodeString(pair[1])
			if err != nil {
				return GetMethodResult{}, fmt.Errorf("decoding slice entry: %w", err)
			}
			out.Stack = append(out.Stack, StackEntry{Slice: raw})
		case "cell":
			raw, err := base64.StdEncoding.DecodeString(pair[1])
			if err != nil {
				return GetMethodResult{}, fmt.Errorf("decoding cell entry: %w", err)
			}
			out.Stack = append(out.Stack, StackEntry{Cell: raw})
		}
	}
	return out, nil
}

// SendMessageReturningHash implements Transport.
func (t *HTTPTransport) SendMessageReturningHash(ctx context.Context, bocBase64 string) (string, error) {
	req := struct {
		BOC string `json:"boc"`
	}{BOC: bocBase64}

	var result struct {
		Hash string `json:"hash"`
	}
	if err := t.do(ctx, http.MethodPost, "/sendBocReturnHash", req, &result); err != nil {
		return "", err
	}
	return result.Hash, nil
}
