package memory

import (
	"cmp"
	"slices"
	"strings"

	"github.com/utafrali/catalogsearch/internal/domain"
)

// NormalizeSort resolves the sort key and order, falling back to relevance
// for unknown keys and to descending for anything but "asc".
func NormalizeSort(sortBy, sortOrder string) (string, string) {
	if !domain.IsValidSort(sortBy) {
		sortBy = domain.SortRelevance
	}
	if sortOrder != domain.SortAsc {
		sortOrder = domain.SortDesc
	}
	return sortBy, sortOrder
}

// MatchesFilters reports whether p satisfies every filter in f. Filter types
// combine with AND; brands and categories match any listed value; every
// requested offer flag must be set. Unknown availability modes and offer
// flags are ignored.
func MatchesFilters(p *domain.Product, f *domain.Filters, location string) bool {
	if f.MinPrice != nil && p.CurrentPrice < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.CurrentPrice > *f.MaxPrice {
		return false
	}

	if len(f.Brands) > 0 && !slices.ContainsFunc(f.Brands, func(b string) bool {
		return strings.EqualFold(b, p.Brand)
	}) {
		return false
	}

	if len(f.Categories) > 0 {
		category := strings.ToLower(p.Category)
		if !slices.ContainsFunc(f.Categories, func(c string) bool {
			return strings.Contains(category, strings.ToLower(c))
		}) {
			return false
		}
	}

	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	if f.MinDiscount != nil && float64(p.Discount) < *f.MinDiscount {
		return false
	}

	switch f.Availability {
	case domain.AvailabilityInStock:
		if !p.InStock {
			return false
		}
	case domain.AvailabilityFastDelivery:
		if !p.FastDelivery {
			return false
		}
	case domain.AvailabilityCOD:
		if !p.HasCOD(location) {
			return false
		}
	}

	for _, offer := range f.Offers {
		switch offer {
		case domain.OfferBestseller:
			if !p.Bestseller {
				return false
			}
		case domain.OfferNewArrival:
			if !p.NewArrival {
				return false
			}
		}
	}

	return true
}

// sortHits orders hits in place. The sort is stable, so equal keys keep
// catalog order. Relevance is always best first.
func (e *Engine) sortHits(hits []hit, sortBy, sortOrder string) {
	if sortBy == domain.SortRelevance {
		slices.SortStableFunc(hits, byScoreDesc)
		return
	}

	key := sortKey(sortBy)
	desc := sortOrder == domain.SortDesc
	slices.SortStableFunc(hits, func(a, b hit) int {
		c := cmp.Compare(key(e.catalog.At(a.index)), key(e.catalog.At(b.index)))
		if desc {
			return -c
		}
		return c
	})
}

func sortKey(sortBy string) func(*domain.Product) float64 {
	switch sortBy {
	case domain.SortPrice:
		return func(p *domain.Product) float64 { return p.CurrentPrice }
	case domain.SortRating:
		return func(p *domain.Product) float64 { return p.Rating }
	case domain.SortPopularity:
		return func(p *domain.Product) float64 { return float64(p.Popularity) }
	case domain.SortDiscount:
		return func(p *domain.Product) float64 { return float64(p.Discount) }
	case domain.SortNewest:
		return func(p *domain.Product) float64 {
			if p.NewArrival {
				return 1
			}
			return 0
		}
	default:
		return func(*domain.Product) float64 { return 0 }
	}
}
