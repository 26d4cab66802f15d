// Package fallback composes a remote search engine with the in-memory one.
// Every call goes to the remote engine first, through a circuit breaker; any
// failure, including an open breaker, is answered by the local engine.
package fallback

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/engine"
	"github.com/utafrali/catalogsearch/pkg/breaker"
)

// BreakerName labels the breaker's metrics and logs.
const BreakerName = "search-engine"

// Engine tries remote first and falls back to local.
type Engine struct {
	remote engine.SearchEngine
	local  engine.SearchEngine
	cb     *gobreaker.CircuitBreaker[any]
	logger *slog.Logger
}

var _ engine.SearchEngine = (*Engine)(nil)

// New wraps remote and local. Caller cancellation does not count against the
// remote engine's health.
func New(remote, local engine.SearchEngine, cfg breaker.Config, logger *slog.Logger) *Engine {
	if cfg.Name == "" {
		cfg.Name = BreakerName
	}
	return &Engine{
		remote: remote,
		local:  local,
		cb: breaker.New[any](cfg, logger, func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		}),
		logger: logger,
	}
}

// State reports the breaker state.
func (e *Engine) State() gobreaker.State {
	return e.cb.State()
}

// call runs remote under the breaker and local when it fails.
func call[T any](ctx context.Context, e *Engine, op string, remote, local func() (T, error)) (T, error) {
	res, err := e.cb.Execute(func() (any, error) {
		return remote()
	})
	if err == nil {
		v, _ := res.(T)
		return v, nil
	}

	breaker.FallbackTotal.WithLabelValues(e.cb.Name()).Inc()
	e.logger.WarnContext(ctx, "remote search engine failed, using in-memory engine",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return local()
}

func (e *Engine) Suggest(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	return call(ctx, e, "suggest",
		func() ([]domain.Suggestion, error) { return e.remote.Suggest(ctx, query, limit) },
		func() ([]domain.Suggestion, error) { return e.local.Suggest(ctx, query, limit) },
	)
}

func (e *Engine) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	return call(ctx, e, "search",
		func() (*domain.SearchResponse, error) { return e.remote.Search(ctx, req) },
		func() (*domain.SearchResponse, error) { return e.local.Search(ctx, req) },
	)
}

func (e *Engine) Related(ctx context.Context, id string, limit int) ([]domain.RelatedProduct, error) {
	return call(ctx, e, "related",
		func() ([]domain.RelatedProduct, error) { return e.remote.Related(ctx, id, limit) },
		func() ([]domain.RelatedProduct, error) { return e.local.Related(ctx, id, limit) },
	)
}

func (e *Engine) Product(ctx context.Context, id, location string) (*domain.FormattedProduct, error) {
	return call(ctx, e, "product",
		func() (*domain.FormattedProduct, error) { return e.remote.Product(ctx, id, location) },
		func() (*domain.FormattedProduct, error) { return e.local.Product(ctx, id, location) },
	)
}

func (e *Engine) Popular(ctx context.Context, limit int) ([]domain.Suggestion, error) {
	return call(ctx, e, "popular",
		func() ([]domain.Suggestion, error) { return e.remote.Popular(ctx, limit) },
		func() ([]domain.Suggestion, error) { return e.local.Popular(ctx, limit) },
	)
}

func (e *Engine) Completions(ctx context.Context, prefix string, limit int) ([]domain.Completion, error) {
	return call(ctx, e, "completions",
		func() ([]domain.Completion, error) { return e.remote.Completions(ctx, prefix, limit) },
		func() ([]domain.Completion, error) { return e.local.Completions(ctx, prefix, limit) },
	)
}
