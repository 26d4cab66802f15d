package catalog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/utafrali/catalogsearch/pkg/httpclient"
)

// Getter issues GET requests. *httpclient.CircuitBreakerClient satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// HTTPLoader fetches the catalog from a JSON feed.
type HTTPLoader struct {
	url    string
	client Getter
}

// NewHTTPLoader creates a loader for the feed at url.
func NewHTTPLoader(url string, client Getter) *HTTPLoader {
	return &HTTPLoader{url: url, client: client}
}

// Load downloads and decodes the feed.
func (l *HTTPLoader) Load(ctx context.Context) ([]RawProduct, error) {
	resp, err := l.client.Get(ctx, l.url)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog feed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch catalog feed: %w", httpclient.ParseResponseError(resp, "catalog feed"))
	}
	defer func() { _ = resp.Body.Close() }()

	raws, err := decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog feed: %w", err)
	}
	return raws, nil
}
