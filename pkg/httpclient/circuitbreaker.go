package httpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/catalogsearch/pkg/breaker"
)

// ErrCircuitOpen is returned when the breaker rejects a request.
var ErrCircuitOpen = breaker.ErrOpen

// CircuitBreakerClient wraps a Client so that repeated 5xx responses or
// transport failures stop traffic to the upstream for a while.
type CircuitBreakerClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewCircuitBreakerClient wraps client with a breaker configured by cfg.
func NewCircuitBreakerClient(client *Client, cfg breaker.Config, logger *slog.Logger) *CircuitBreakerClient {
	return &CircuitBreakerClient{
		client:  client,
		breaker: breaker.New[*http.Response](cfg, logger, nil),
	}
}

// Do executes req through the breaker. 5xx responses count as failures and
// are returned as errors with the body drained.
func (c *CircuitBreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return nil, ParseResponseError(resp, req.URL.Host)
		}
		return resp, nil
	})
}

// Get performs a GET request through the breaker.
func (c *CircuitBreakerClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}
	return c.Do(ctx, req)
}

// State returns the current breaker state.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.breaker.State()
}

// drain discards the rest of a body so the connection can be reused.
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 1<<20))
	_ = body.Close()
}
