// Package chain defines the thin RPC facade the execution loop consumes:
// account state, get-method calls, and raw external-message submission.
// The concrete transport (a real TON RPC endpoint) is an out-of-scope
// external collaborator; this package only adapts a caller-supplied HTTP
// client to the narrow interface, with rate limiting, timeouts, and a
// circuit breaker around transient failures — the same shape as the
// teacher's pkg/chain/base.Client wraps go-ethereum's ethclient.
package chain

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tonarb/aceton/internal/asset"
)

// AccountState is the subset of get_account_state the loop needs.
type AccountState struct {
	BalanceNanoTON uint64
	Seqno          uint32
}

// StackEntry is one entry of a get-method's input or output stack.
type StackEntry struct {
	Number *string
	Slice  []byte
	Cell   []byte
}

// NumberEntry builds a numeric stack entry.
func NumberEntry(v string) StackEntry { return StackEntry{Number: &v} }

// GetMethodResult is the outcome of a run_get_method call.
type GetMethodResult struct {
	ExitCode int
	Stack    []StackEntry
}

// ExitCodeError is returned when a get-method exits with a code other than
// 0 or 1, per the error taxonomy's "typed error carrying the exit code".
type ExitCodeError struct {
	Method   string
	ExitCode int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("chain: get-method %q exited with code %d", e.Method, e.ExitCode)
}

// Transport is the minimal HTTP-JSON collaborator a Client wraps — the
// out-of-scope RPC client named in the design. Implementations talk to a
// specific TON RPC provider's wire format; this package only adapts one.
type Transport interface {
	GetAccountState(ctx context.Context, addr asset.Address) (AccountState, error)
	RunGetMethod(ctx context.Context, addr asset.Address, method string, stack []StackEntry) (GetMethodResult, error)
	SendMessageReturningHash(ctx context.Context, bocBase64 string) (string, error)
}

// Client is the ChainClient implementation the execution loop is built
// against: a rate-limited, circuit-broken wrapper around a Transport.
type Client struct {
	transport Transport
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[any]
	timeout   time.Duration
}

// Config tunes the Client's resilience knobs.
type Config struct {
	RequestsPerSecond float64
	Timeout           time.Duration
}

// New wraps transport with a token-bucket limiter (grounded on the
// teacher's internal/dex/tinyman rate-limiting pattern) and a circuit
// breaker (grounded on the fd1az-arbitrage-bot example's use of
// sony/gobreaker around RPC calls).
func New(transport Transport, cfg Config) *Client {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 25 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        "chain-rpc",
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}
	return &Client{
		transport: transport,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		breaker:   gobreaker.NewCircuitBreaker[any](settings),
		timeout:   cfg.Timeout,
	}
}

func (c *Client) withBudget(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("chain: rate limit wait: %w", err)
	}
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	return callCtx, cancel, nil
}

// GetAccountState reads balance and seqno for addr.
func (c *Client) GetAccountState(ctx context.Context, addr asset.Address) (AccountState, error) {
	callCtx, cancel, err := c.withBudget(ctx)
	if err != nil {
		return AccountState{}, err
	}
	defer cancel()

	result, err := c.breaker.Execute(func() (any, error) {
		return c.transport.GetAccountState(callCtx, addr)
	})
	if err != nil {
		return AccountState{}, fmt.Errorf("chain: get_account_state: %w", err)
	}
	return result.(AccountState), nil
}

// RunGetMethod invokes method on addr's contract and surfaces a typed error
// for any exit code outside {0, 1}.
func (c *Client) RunGetMethod(ctx context.Context, addr asset.Address, method string, stack []StackEntry) (GetMethodResult, error) {
	callCtx, cancel, err := c.withBudget(ctx)
	if err != nil {
		return GetMethodResult{}, err
	}
	defer cancel()

	result, err := c.breaker.Execute(func() (any, error) {
		return c.transport.RunGetMethod(callCtx, addr, method, stack)
	})
	if err != nil {
		return GetMethodResult{}, fmt.Errorf("chain: run_get_method %s: %w", method, err)
	}
	r := result.(GetMethodResult)
	if r.ExitCode != 0 && r.ExitCode != 1 {
		return r, &ExitCodeError{Method: method, ExitCode: r.ExitCode}
	}
	return r, nil
}

// SendMessageReturningHash submits a base64-encoded BOC and returns the
// chain-assigned message hash.
func (c *Client) SendMessageReturningHash(ctx context.Context, bocBase64 string) (string, error) {
	callCtx, cancel, err := c.withBudget(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	result, err := c.breaker.Execute(func() (any, error) {
		return c.transport.SendMessageReturningHash(callCtx, bocBase64)
	})
	if err != nil {
		return "", fmt.Errorf("chain: send_message_returning_hash: %w", err)
	}
	return result.(string), nil
}

// EncodeBOC is a placeholder packer: a real implementation would serialize
// a wire.Cell tree into the chain's canonical BOC byte format before
// base64-encoding it. The codec package only builds the Cell; packing a
// tree of cells into the BOC container format (de-duplicating repeated
// cells, emitting the bag-of-cells header) is out of this core's scope
// per the design's "binary cell serialization library" external
// collaborator — this function is the seam an implementer fills in.
func EncodeBOC(rootBytes []byte) string {
	return base64.StdEncoding.EncodeToString(rootBytes)
}
