package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/utafrali/catalogsearch/internal/catalog"
	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/scoring"
	"github.com/utafrali/catalogsearch/internal/synonym"
	"github.com/utafrali/catalogsearch/pkg/pagination"
)

// Limits applied when callers pass a non-positive limit.
const (
	DefaultSuggestLimit    = 8
	DefaultRelatedLimit    = 6
	DefaultCompletionLimit = 8
)

// Engine is the in-process implementation of engine.SearchEngine. Everything
// it derives from the catalog is computed once in New; queries only read, so
// concurrent calls need no locking.
type Engine struct {
	catalog  *catalog.Catalog
	expander *synonym.Expander

	docs        []scoring.Document
	facets      domain.Facets
	popular     []int
	completions []domain.Completion
}

// New indexes c for querying. A nil catalog is treated as empty and a nil
// expander as the built-in synonym table.
func New(c *catalog.Catalog, expander *synonym.Expander) *Engine {
	if c == nil {
		c = catalog.Empty()
	}
	if expander == nil {
		expander = synonym.Default()
	}

	products := c.Products()
	docs := make([]scoring.Document, len(products))
	for i := range products {
		docs[i] = scoring.NewDocument(&products[i])
	}

	popular := make([]int, len(products))
	for i := range popular {
		popular[i] = i
	}
	slices.SortStableFunc(popular, func(a, b int) int {
		return cmp.Compare(products[b].Popularity, products[a].Popularity)
	})

	return &Engine{
		catalog:     c,
		expander:    expander,
		docs:        docs,
		facets:      buildFacets(products),
		popular:     popular,
		completions: buildCompletions(products),
	}
}

// Catalog returns the catalog the engine was built from.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Expander returns the synonym expander used for queries.
func (e *Engine) Expander() *synonym.Expander {
	return e.expander
}

type hit struct {
	index int
	score float64
	sig   scoring.Signals
}

// rank scores every product against terms and returns the matches in
// catalog order. Without terms every product matches with score 0.
func (e *Engine) rank(terms []string, mode scoring.Mode) []hit {
	hits := make([]hit, 0, len(e.docs))
	for i := range e.docs {
		if len(terms) == 0 {
			hits = append(hits, hit{index: i})
			continue
		}
		res := scoring.Score(&e.docs[i], terms, mode)
		if !res.Matched() {
			continue
		}
		hits = append(hits, hit{index: i, score: res.Score, sig: res.Signals})
	}
	return hits
}

// Suggest ranks the catalog against the expanded query and returns the best
// matches, highest score first. Ties keep catalog order.
func (e *Engine) Suggest(_ context.Context, query string, limit int) ([]domain.Suggestion, error) {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	terms := e.expander.Terms(query)
	if len(terms) == 0 {
		return []domain.Suggestion{}, nil
	}

	hits := e.rank(terms, scoring.ModeSuggest)
	slices.SortStableFunc(hits, byScoreDesc)
	if len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]domain.Suggestion, 0, len(hits))
	for _, h := range hits {
		out = append(out, e.catalog.At(h.index).Suggestion(h.sig.SuggestionType()))
	}
	return out, nil
}

// Search filters, sorts and pages the catalog. Facets always describe the
// whole catalog.
func (e *Engine) Search(_ context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	start := time.Now()

	page := pagination.Normalize(req.Page, req.Limit, pagination.DefaultLimit, pagination.MaxLimit)
	sortBy, sortOrder := NormalizeSort(req.SortBy, req.SortOrder)
	location := req.Location
	if location == "" {
		location = domain.DefaultLocation
	}

	hits := e.rank(e.expander.Terms(req.Query), scoring.ModeSearch)

	filtered := hits[:0]
	for _, h := range hits {
		if MatchesFilters(e.catalog.At(h.index), &req.Filters, location) {
			filtered = append(filtered, h)
		}
	}

	e.sortHits(filtered, sortBy, sortOrder)

	pageHits := pagination.Slice(filtered, page)
	results := make([]domain.FormattedProduct, 0, len(pageHits))
	for _, h := range pageHits {
		results = append(results, e.catalog.At(h.index).Format(location, h.score))
	}

	return &domain.SearchResponse{
		Query:          req.Query,
		Results:        results,
		Pagination:     pagination.NewMeta(len(filtered), page),
		Facets:         e.facets,
		AppliedFilters: req.Filters,
		SortBy:         sortBy,
		SortOrder:      sortOrder,
		TookMs:         time.Since(start).Milliseconds(),
	}, nil
}

// Related returns products sharing the full category, the brand or the
// top-level category with id, best rated first. Unknown ids yield an empty list.
func (e *Engine) Related(_ context.Context, id string, limit int) ([]domain.RelatedProduct, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	target, ok := e.catalog.Get(id)
	if !ok {
		return []domain.RelatedProduct{}, nil
	}
	main := target.MainCategory()

	var candidates []*domain.Product
	for i := 0; i < e.catalog.Len(); i++ {
		p := e.catalog.At(i)
		if p.ID == target.ID {
			continue
		}
		if sameNonEmpty(p.Category, target.Category) ||
			sameNonEmpty(p.Brand, target.Brand) ||
			sameNonEmpty(p.MainCategory(), main) {
			candidates = append(candidates, p)
		}
	}
	slices.SortStableFunc(candidates, func(a, b *domain.Product) int {
		return cmp.Compare(b.Rating, a.Rating)
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]domain.RelatedProduct, 0, len(candidates))
	for _, p := range candidates {
		out = append(out, p.Related())
	}
	return out, nil
}

// Product returns the product formatted for location, or nil when unknown.
func (e *Engine) Product(_ context.Context, id, location string) (*domain.FormattedProduct, error) {
	p, ok := e.catalog.Get(id)
	if !ok {
		return nil, nil
	}
	if location == "" {
		location = domain.DefaultLocation
	}
	formatted := p.Format(location, 0)
	return &formatted, nil
}

// Popular returns the most popular products. Ties keep catalog order.
func (e *Engine) Popular(_ context.Context, limit int) ([]domain.Suggestion, error) {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	n := min(limit, len(e.popular))
	out := make([]domain.Suggestion, 0, n)
	for _, i := range e.popular[:n] {
		out = append(out, e.catalog.At(i).Suggestion(domain.SuggestionRelated))
	}
	return out, nil
}

// Completions returns brand, category and keyword queries starting with
// prefix, most frequent first.
func (e *Engine) Completions(_ context.Context, prefix string, limit int) ([]domain.Completion, error) {
	if limit <= 0 {
		limit = DefaultCompletionLimit
	}
	return matchCompletions(e.completions, scoring.Normalize(prefix), limit), nil
}

func sameNonEmpty(a, b string) bool {
	return a != "" && a == b
}

func byScoreDesc(a, b hit) int {
	return cmp.Compare(b.score, a.score)
}
