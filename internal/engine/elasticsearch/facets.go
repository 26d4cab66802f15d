package elasticsearch

import (
	"encoding/json"
	"fmt"

	"github.com/utafrali/catalogsearch/internal/domain"
)

// maxCategoryFacets bounds the top-level category aggregation.
const maxCategoryFacets = 1000

// facetAggregations returns a global aggregation so facets ignore the query
// and filters.
func facetAggregations() map[string]interface{} {
	prices := make([]interface{}, 0, len(domain.PriceBuckets))
	for _, b := range domain.PriceBuckets {
		r := map[string]interface{}{"key": b.Name, "from": b.Min}
		if b.Max > 0 {
			r["to"] = b.Max
		}
		prices = append(prices, r)
	}

	return map[string]interface{}{
		"catalog": map[string]interface{}{
			"global": map[string]interface{}{},
			"aggs": map[string]interface{}{
				"brands":      map[string]interface{}{"terms": map[string]interface{}{"field": "brand.keyword", "size": domain.MaxBrandFacets}},
				"categories":  map[string]interface{}{"terms": map[string]interface{}{"field": "mainCategory", "size": maxCategoryFacets}},
				"priceRanges": map[string]interface{}{"range": map[string]interface{}{"field": "currentPrice", "ranges": prices}},
				"ratings":     map[string]interface{}{"range": map[string]interface{}{"field": "rating", "ranges": thresholdRanges(domain.RatingThresholds)}},
				"discounts":   map[string]interface{}{"range": map[string]interface{}{"field": "discount", "ranges": thresholdRanges(domain.DiscountThresholds)}},
				"availability": map[string]interface{}{"filters": map[string]interface{}{"filters": map[string]interface{}{
					domain.AvailabilityInStock:      term("inStock", true),
					domain.AvailabilityFastDelivery: term("fastDelivery", true),
					domain.AvailabilityCOD:          term("anyCod", true),
				}}},
			},
		},
	}
}

func thresholdRanges(thresholds []domain.Threshold) []interface{} {
	out := make([]interface{}, 0, len(thresholds))
	for _, th := range thresholds {
		out = append(out, map[string]interface{}{"key": th.Name, "from": th.Min})
	}
	return out
}

type esBucket struct {
	Key      string `json:"key"`
	DocCount int    `json:"doc_count"`
}

type esBuckets struct {
	Buckets []esBucket `json:"buckets"`
}

type esFacetAggregations struct {
	Catalog struct {
		Brands       esBuckets `json:"brands"`
		Categories   esBuckets `json:"categories"`
		PriceRanges  esBuckets `json:"priceRanges"`
		Ratings      esBuckets `json:"ratings"`
		Discounts    esBuckets `json:"discounts"`
		Availability struct {
			Buckets map[string]struct {
				DocCount int `json:"doc_count"`
			} `json:"buckets"`
		} `json:"availability"`
	} `json:"catalog"`
}

// decodeFacets maps the aggregation response onto the facet shape the
// in-memory engine produces. Buckets missing from the response count zero.
func decodeFacets(raw json.RawMessage) (domain.Facets, error) {
	var aggs esFacetAggregations
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &aggs); err != nil {
			return domain.Facets{}, fmt.Errorf("elasticsearch search: decode aggregations: %w", err)
		}
	}
	c := &aggs.Catalog

	priceNames := make([]string, 0, len(domain.PriceBuckets))
	for _, b := range domain.PriceBuckets {
		priceNames = append(priceNames, b.Name)
	}

	availability := make([]domain.FacetCount, 0, 3)
	for _, name := range []string{domain.AvailabilityInStock, domain.AvailabilityFastDelivery, domain.AvailabilityCOD} {
		availability = append(availability, domain.FacetCount{Name: name, Count: c.Availability.Buckets[name].DocCount})
	}

	return domain.Facets{
		Brands:       termCounts(c.Brands.Buckets),
		Categories:   termCounts(c.Categories.Buckets),
		PriceRanges:  namedCounts(priceNames, c.PriceRanges.Buckets),
		Ratings:      namedCounts(thresholdNames(domain.RatingThresholds), c.Ratings.Buckets),
		Discounts:    namedCounts(thresholdNames(domain.DiscountThresholds), c.Discounts.Buckets),
		Availability: availability,
	}, nil
}

func termCounts(buckets []esBucket) []domain.FacetCount {
	out := make([]domain.FacetCount, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, domain.FacetCount{Name: b.Key, Count: b.DocCount})
	}
	return out
}

// namedCounts returns one count per name in the given order.
func namedCounts(names []string, buckets []esBucket) []domain.FacetCount {
	counts := make(map[string]int, len(buckets))
	for _, b := range buckets {
		counts[b.Key] = b.DocCount
	}
	out := make([]domain.FacetCount, 0, len(names))
	for _, name := range names {
		out = append(out, domain.FacetCount{Name: name, Count: counts[name]})
	}
	return out
}

func thresholdNames(thresholds []domain.Threshold) []string {
	out := make([]string, 0, len(thresholds))
	for _, th := range thresholds {
		out = append(out, th.Name)
	}
	return out
}
