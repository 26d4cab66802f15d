package elasticsearch

import (
	"context"
	"time"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/scoring"
	"github.com/utafrali/catalogsearch/pkg/pagination"
)

// Clause boosts, in the same order of importance as the in-memory weights.
const (
	boostTitlePrefix    = 50
	boostCategory       = 45
	boostTitleExpanded  = 35
	boostTitleOriginal  = 25
	boostBrandPrefix    = 20
	boostTitleFuzzy     = 15
	boostBrandFuzzy     = 10
	boostKeyword        = 8
	boostDescription    = 5
	popularityFactor    = 0.01
	defaultSuggestLimit = 8
	defaultRelatedLimit = 6
)

// tieBreak keeps equal sort keys in catalog order.
var tieBreak = map[string]interface{}{"position": "asc"}

// textQuery builds the function_score query matching any expanded term.
func textQuery(query string, terms []string, search bool) map[string]interface{} {
	q := scoring.Normalize(query)

	should := []interface{}{
		map[string]interface{}{"prefix": map[string]interface{}{"title.lower": map[string]interface{}{"value": q, "boost": boostTitlePrefix}}},
		map[string]interface{}{"prefix": map[string]interface{}{"brand.lower": map[string]interface{}{"value": q, "boost": boostBrandPrefix}}},
		map[string]interface{}{"fuzzy": map[string]interface{}{"title.raw": map[string]interface{}{"value": q, "fuzziness": "AUTO", "boost": boostTitleFuzzy}}},
		map[string]interface{}{"fuzzy": map[string]interface{}{"brand": map[string]interface{}{"value": q, "fuzziness": 1, "boost": boostBrandFuzzy}}},
	}

	for _, term := range terms {
		titleBoost := boostTitleExpanded
		if term == q {
			titleBoost = boostTitleOriginal
		}
		should = append(should,
			map[string]interface{}{"wildcard": map[string]interface{}{"category.lower": map[string]interface{}{"value": "*" + term + "*", "boost": boostCategory}}},
			map[string]interface{}{"match": map[string]interface{}{"title": map[string]interface{}{"query": term, "operator": "and", "boost": titleBoost}}},
		)
		if search {
			should = append(should,
				map[string]interface{}{"multi_match": map[string]interface{}{
					"query":  term,
					"fields": []string{"searchKeywords", "tags"},
					"boost":  boostKeyword,
				}},
				map[string]interface{}{"multi_match": map[string]interface{}{
					"query":  term,
					"fields": []string{"description", "features"},
					"boost":  boostDescription,
				}},
			)
		}
	}

	return map[string]interface{}{
		"function_score": map[string]interface{}{
			"query": map[string]interface{}{
				"bool": map[string]interface{}{
					"should":               should,
					"minimum_should_match": 1,
				},
			},
			"field_value_factor": map[string]interface{}{
				"field":   "popularity",
				"factor":  popularityFactor,
				"missing": 1,
			},
			"boost_mode": "sum",
		},
	}
}

// Suggest returns up to limit products for a partially typed query. The
// suggestion type is derived from the same signals the in-memory scorer uses.
func (e *Engine) Suggest(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	terms := e.expander.Terms(query)
	if len(terms) == 0 {
		return []domain.Suggestion{}, nil
	}

	resp, err := e.search(ctx, "suggest", map[string]interface{}{
		"query": textQuery(query, terms, false),
		"size":  limit,
		"sort":  []interface{}{map[string]interface{}{"_score": "desc"}, tieBreak},
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Suggestion, 0, len(resp.Hits.Hits))
	for i := range resp.Hits.Hits {
		p := &resp.Hits.Hits[i].Source.Product
		doc := scoring.NewDocument(p)
		res := scoring.Score(&doc, terms, scoring.ModeSuggest)
		out = append(out, p.Suggestion(res.Signals.SuggestionType()))
	}
	return out, nil
}

// Search executes a filtered, sorted and paged query. Facets come from a
// global aggregation, so they describe the whole catalog.
func (e *Engine) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	start := time.Now()

	page := pagination.Normalize(req.Page, req.Limit, pagination.DefaultLimit, pagination.MaxLimit)
	sortBy, sortOrder := normalizeSort(req.SortBy, req.SortOrder)
	location := req.Location
	if location == "" {
		location = domain.DefaultLocation
	}

	var must interface{} = map[string]interface{}{"match_all": map[string]interface{}{}}
	if terms := e.expander.Terms(req.Query); len(terms) > 0 {
		must = textQuery(req.Query, terms, true)
	}

	boolQuery := map[string]interface{}{"must": []interface{}{must}}
	if filters := buildFilters(&req.Filters, location); len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	resp, err := e.search(ctx, "search", map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"from":  page.Offset(),
		"size":  page.Limit,
		"sort":  buildSort(sortBy, sortOrder),
		"aggs":  facetAggregations(),
	})
	if err != nil {
		return nil, err
	}

	facets, err := decodeFacets(resp.Aggregations)
	if err != nil {
		return nil, err
	}

	results := make([]domain.FormattedProduct, 0, len(resp.Hits.Hits))
	for i := range resp.Hits.Hits {
		hit := &resp.Hits.Hits[i]
		results = append(results, hit.Source.Format(location, hit.Score))
	}

	return &domain.SearchResponse{
		Query:          req.Query,
		Results:        results,
		Pagination:     pagination.NewMeta(resp.Hits.Total.Value, page),
		Facets:         facets,
		AppliedFilters: req.Filters,
		SortBy:         sortBy,
		SortOrder:      sortOrder,
		TookMs:         time.Since(start).Milliseconds(),
	}, nil
}

func normalizeSort(sortBy, sortOrder string) (string, string) {
	if !domain.IsValidSort(sortBy) {
		sortBy = domain.SortRelevance
	}
	if sortOrder != domain.SortAsc {
		sortOrder = domain.SortDesc
	}
	return sortBy, sortOrder
}

// buildSort constructs the sort clause. Relevance is always best first.
func buildSort(sortBy, sortOrder string) []interface{} {
	field := map[string]string{
		domain.SortPrice:      "currentPrice",
		domain.SortRating:     "rating",
		domain.SortPopularity: "popularity",
		domain.SortDiscount:   "discount",
		domain.SortNewest:     "newArrival",
	}[sortBy]
	if field == "" {
		return []interface{}{map[string]interface{}{"_score": "desc"}, tieBreak}
	}
	return []interface{}{map[string]interface{}{field: sortOrder}, tieBreak}
}

// buildFilters constructs the filter clauses. Unknown availability modes and
// offer flags add nothing.
func buildFilters(f *domain.Filters, location string) []interface{} {
	var filters []interface{}

	if f.MinPrice != nil || f.MaxPrice != nil {
		r := map[string]interface{}{}
		if f.MinPrice != nil {
			r["gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			r["lte"] = *f.MaxPrice
		}
		filters = append(filters, map[string]interface{}{"range": map[string]interface{}{"currentPrice": r}})
	}

	if len(f.Brands) > 0 {
		brands := make([]string, 0, len(f.Brands))
		for _, b := range f.Brands {
			brands = append(brands, scoring.Normalize(b))
		}
		filters = append(filters, map[string]interface{}{"terms": map[string]interface{}{"brandTerm": brands}})
	}

	if len(f.Categories) > 0 {
		should := make([]interface{}, 0, len(f.Categories))
		for _, c := range f.Categories {
			should = append(should, map[string]interface{}{
				"wildcard": map[string]interface{}{"category.lower": map[string]interface{}{"value": "*" + scoring.Normalize(c) + "*"}},
			})
		}
		filters = append(filters, map[string]interface{}{
			"bool": map[string]interface{}{"should": should, "minimum_should_match": 1},
		})
	}

	if f.MinRating != nil {
		filters = append(filters, map[string]interface{}{"range": map[string]interface{}{"rating": map[string]interface{}{"gte": *f.MinRating}}})
	}
	if f.MinDiscount != nil {
		filters = append(filters, map[string]interface{}{"range": map[string]interface{}{"discount": map[string]interface{}{"gte": *f.MinDiscount}}})
	}

	switch f.Availability {
	case domain.AvailabilityInStock:
		filters = append(filters, term("inStock", true))
	case domain.AvailabilityFastDelivery:
		filters = append(filters, term("fastDelivery", true))
	case domain.AvailabilityCOD:
		filters = append(filters, term("codLocations", location))
	}

	for _, offer := range f.Offers {
		switch offer {
		case domain.OfferBestseller:
			filters = append(filters, term("bestseller", true))
		case domain.OfferNewArrival:
			filters = append(filters, term("newArrival", true))
		}
	}

	return filters
}

func term(field string, value interface{}) map[string]interface{} {
	return map[string]interface{}{"term": map[string]interface{}{field: value}}
}

// Related returns products sharing the full category, the brand or the
// top-level category with id, best rated first.
func (e *Engine) Related(ctx context.Context, id string, limit int) ([]domain.RelatedProduct, error) {
	if limit <= 0 {
		limit = defaultRelatedLimit
	}
	target, err := e.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return []domain.RelatedProduct{}, nil
	}

	var should []interface{}
	if target.Category != "" {
		should = append(should, term("category.keyword", target.Category))
	}
	if target.Brand != "" {
		should = append(should, term("brand.keyword", target.Brand))
	}
	if main := target.MainCategory(); main != "" {
		should = append(should, term("mainCategory", main))
	}
	if len(should) == 0 {
		return []domain.RelatedProduct{}, nil
	}

	resp, err := e.search(ctx, "related", map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
				"must_not":             []interface{}{map[string]interface{}{"ids": map[string]interface{}{"values": []string{target.ID}}}},
			},
		},
		"size": limit,
		"sort": []interface{}{map[string]interface{}{"rating": "desc"}, tieBreak},
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.RelatedProduct, 0, len(resp.Hits.Hits))
	for i := range resp.Hits.Hits {
		out = append(out, resp.Hits.Hits[i].Source.Related())
	}
	return out, nil
}

// Product returns the product formatted for location, or nil when unknown.
func (e *Engine) Product(ctx context.Context, id, location string) (*domain.FormattedProduct, error) {
	p, err := e.get(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	if location == "" {
		location = domain.DefaultLocation
	}
	formatted := p.Format(location, 0)
	return &formatted, nil
}

// Popular returns the most popular products.
func (e *Engine) Popular(ctx context.Context, limit int) ([]domain.Suggestion, error) {
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	resp, err := e.search(ctx, "popular", map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"size":  limit,
		"sort":  []interface{}{map[string]interface{}{"popularity": "desc"}, tieBreak},
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Suggestion, 0, len(resp.Hits.Hits))
	for i := range resp.Hits.Hits {
		out = append(out, resp.Hits.Hits[i].Source.Suggestion(domain.SuggestionRelated))
	}
	return out, nil
}
