package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/engine"
	"github.com/utafrali/catalogsearch/internal/synonym"
	apperrors "github.com/utafrali/catalogsearch/pkg/errors"
	"github.com/utafrali/catalogsearch/pkg/tracing"
)

// Limits applied to caller-supplied list sizes.
const (
	DefaultSuggestLimit = 8
	DefaultRelatedLimit = 6
	DefaultPopularLimit = 10
	MaxListLimit        = 50
)

// SuggestionCache stores suggestion and completion results.
type SuggestionCache interface {
	Suggestions(ctx context.Context, query string, limit int) ([]domain.Suggestion, bool, error)
	SetSuggestions(ctx context.Context, query string, limit int, s []domain.Suggestion) error
	Completions(ctx context.Context, prefix string, limit int) ([]domain.Completion, bool, error)
	SetCompletions(ctx context.Context, prefix string, limit int, cs []domain.Completion) error
}

// AnalyticsPublisher records what users searched for.
type AnalyticsPublisher interface {
	PublishSearchPerformed(ctx context.Context, req *domain.SearchRequest, resp *domain.SearchResponse) error
	PublishSuggestPerformed(ctx context.Context, query string, suggestions []domain.Suggestion) error
}

// Config holds request defaults.
type Config struct {
	DefaultLocation string
	SuggestLimit    int
	// PopularFallback answers a suggest query that matches nothing with the
	// most popular products.
	PopularFallback bool
}

// Option configures optional collaborators.
type Option func(*CatalogService)

// WithCache enables the suggestion cache.
func WithCache(c SuggestionCache) Option {
	return func(s *CatalogService) { s.cache = c }
}

// WithPublisher enables search analytics.
func WithPublisher(p AnalyticsPublisher) Option {
	return func(s *CatalogService) { s.events = p }
}

// CatalogService implements the business logic for catalog search operations.
type CatalogService struct {
	engine   engine.SearchEngine
	expander *synonym.Expander
	cache    SuggestionCache
	events   AnalyticsPublisher
	cfg      Config
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(eng engine.SearchEngine, expander *synonym.Expander, cfg Config, logger *slog.Logger, opts ...Option) *CatalogService {
	if expander == nil {
		expander = synonym.Default()
	}
	if cfg.DefaultLocation == "" {
		cfg.DefaultLocation = domain.DefaultLocation
	}
	if cfg.SuggestLimit <= 0 {
		cfg.SuggestLimit = DefaultSuggestLimit
	}
	s := &CatalogService{
		engine:   eng,
		expander: expander,
		cfg:      cfg,
		tracer:   tracing.Tracer("catalogsearch/service"),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, MaxListLimit)
}

// start opens a span and returns a func that records the outcome.
func (s *CatalogService) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	began := time.Now()
	ctx, span := s.tracer.Start(ctx, "CatalogService."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		operationDuration.WithLabelValues(op).Observe(time.Since(began).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// Suggest returns products for a partially typed query. Blank queries return
// an empty list.
func (s *CatalogService) Suggest(ctx context.Context, query string, limit int) (out []domain.Suggestion, err error) {
	limit = clampLimit(limit, s.cfg.SuggestLimit)
	ctx, end := s.start(ctx, "suggest", attribute.String("query", query), attribute.Int("limit", limit))
	defer func() { end(err) }()

	if strings.TrimSpace(query) == "" {
		return []domain.Suggestion{}, nil
	}

	if s.cache != nil {
		cached, ok, cerr := s.cache.Suggestions(ctx, query, limit)
		switch {
		case cerr != nil:
			suggestCacheRequests.WithLabelValues("error").Inc()
			s.logger.WarnContext(ctx, "suggestion cache lookup failed", slog.String("error", cerr.Error()))
		case ok:
			suggestCacheRequests.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			suggestCacheRequests.WithLabelValues("miss").Inc()
		}
	}

	out, err = s.engine.Suggest(ctx, query, limit)
	if err != nil {
		return nil, engineError("suggest", err)
	}

	if len(out) == 0 {
		zeroResults.WithLabelValues("suggest").Inc()
		if s.cfg.PopularFallback {
			out, err = s.engine.Popular(ctx, limit)
			if err != nil {
				return nil, engineError("suggest: popular fallback", err)
			}
		}
	}

	if s.cache != nil {
		if cerr := s.cache.SetSuggestions(ctx, query, limit, out); cerr != nil {
			s.logger.WarnContext(ctx, "suggestion cache store failed", slog.String("error", cerr.Error()))
		}
	}
	if s.events != nil {
		if perr := s.events.PublishSuggestPerformed(ctx, query, out); perr != nil {
			s.logger.WarnContext(ctx, "failed to publish suggest event", slog.String("error", perr.Error()))
		}
	}

	s.logger.DebugContext(ctx, "suggest executed",
		slog.String("query", query),
		slog.Int("count", len(out)),
	)
	return out, nil
}

// Search returns a page of filtered, sorted results with facets.
// The caller's request is left unchanged.
func (s *CatalogService) Search(ctx context.Context, in *domain.SearchRequest) (resp *domain.SearchResponse, err error) {
	req := *in
	if req.Location == "" {
		req.Location = s.cfg.DefaultLocation
	}
	ctx, end := s.start(ctx, "search",
		attribute.String("query", req.Query),
		attribute.Int("page", req.Page),
		attribute.String("sort_by", req.SortBy),
	)
	defer func() { end(err) }()

	resp, err = s.engine.Search(ctx, &req)
	if err != nil {
		return nil, engineError("search", err)
	}

	if resp.Pagination.TotalResults == 0 {
		zeroResults.WithLabelValues("search").Inc()
	}
	if s.events != nil {
		if perr := s.events.PublishSearchPerformed(ctx, &req, resp); perr != nil {
			s.logger.WarnContext(ctx, "failed to publish search event", slog.String("error", perr.Error()))
		}
	}

	s.logger.DebugContext(ctx, "search executed",
		slog.String("query", req.Query),
		slog.Int("total", resp.Pagination.TotalResults),
		slog.Int64("took_ms", resp.TookMs),
	)
	return resp, nil
}

// Related returns products similar to id. Unknown ids yield an empty list.
func (s *CatalogService) Related(ctx context.Context, id string, limit int) (out []domain.RelatedProduct, err error) {
	limit = clampLimit(limit, DefaultRelatedLimit)
	ctx, end := s.start(ctx, "related", attribute.String("product_id", id))
	defer func() { end(err) }()

	out, err = s.engine.Related(ctx, id, limit)
	if err != nil {
		return nil, engineError("related", err)
	}
	return out, nil
}

// Product returns a single product formatted for location.
func (s *CatalogService) Product(ctx context.Context, id, location string) (p *domain.FormattedProduct, err error) {
	if location == "" {
		location = s.cfg.DefaultLocation
	}
	ctx, end := s.start(ctx, "product", attribute.String("product_id", id))
	defer func() { end(err) }()

	p, err = s.engine.Product(ctx, id, location)
	if err != nil {
		return nil, engineError("product", err)
	}
	if p == nil {
		return nil, apperrors.NotFound("product", id)
	}
	return p, nil
}

// Popular returns the most popular products.
func (s *CatalogService) Popular(ctx context.Context, limit int) (out []domain.Suggestion, err error) {
	limit = clampLimit(limit, DefaultPopularLimit)
	ctx, end := s.start(ctx, "popular")
	defer func() { end(err) }()

	out, err = s.engine.Popular(ctx, limit)
	if err != nil {
		return nil, engineError("popular", err)
	}
	return out, nil
}

// Completions returns queries starting with prefix.
func (s *CatalogService) Completions(ctx context.Context, prefix string, limit int) (out []domain.Completion, err error) {
	limit = clampLimit(limit, s.cfg.SuggestLimit)
	ctx, end := s.start(ctx, "completions", attribute.String("prefix", prefix))
	defer func() { end(err) }()

	if strings.TrimSpace(prefix) == "" {
		return []domain.Completion{}, nil
	}

	if s.cache != nil {
		cached, ok, cerr := s.cache.Completions(ctx, prefix, limit)
		if cerr != nil {
			s.logger.WarnContext(ctx, "completion cache lookup failed", slog.String("error", cerr.Error()))
		} else if ok {
			return cached, nil
		}
	}

	out, err = s.engine.Completions(ctx, prefix, limit)
	if err != nil {
		return nil, engineError("completions", err)
	}

	if s.cache != nil {
		if cerr := s.cache.SetCompletions(ctx, prefix, limit, out); cerr != nil {
			s.logger.WarnContext(ctx, "completion cache store failed", slog.String("error", cerr.Error()))
		}
	}
	return out, nil
}

// Expand returns the terms query is matched against, whole query first.
func (s *CatalogService) Expand(query string) []string {
	terms := s.expander.Terms(query)
	if terms == nil {
		return []string{}
	}
	return terms
}

// engineError reports a failure the engine could not answer, including one
// its fallback could not recover from.
func engineError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, apperrors.Unavailable("search engine", err))
}
