package memory

import (
	"cmp"
	"slices"

	"github.com/utafrali/catalogsearch/internal/domain"
)

func buildFacets(products []domain.Product) domain.Facets {
	brands := newCounter()
	categories := newCounter()
	prices := make([]int, len(domain.PriceBuckets))
	ratings := make([]int, len(domain.RatingThresholds))
	discounts := make([]int, len(domain.DiscountThresholds))
	var inStock, fastDelivery, cod int

	for i := range products {
		p := &products[i]

		brands.add(p.Brand)
		categories.add(p.MainCategory())

		// Prices below zero never reach the catalog, so the first bucket
		// whose upper bound exceeds the price is the right one.
		for j, b := range domain.PriceBuckets {
			if b.Contains(p.CurrentPrice) {
				prices[j]++
				break
			}
		}
		for j, th := range domain.RatingThresholds {
			if p.Rating >= th.Min {
				ratings[j]++
			}
		}
		for j, th := range domain.DiscountThresholds {
			if float64(p.Discount) >= th.Min {
				discounts[j]++
			}
		}

		if p.InStock {
			inStock++
		}
		if p.FastDelivery {
			fastDelivery++
		}
		if p.AnyCOD() {
			cod++
		}
	}

	priceFacet := make([]domain.FacetCount, len(domain.PriceBuckets))
	for j, b := range domain.PriceBuckets {
		priceFacet[j] = domain.FacetCount{Name: b.Name, Count: prices[j]}
	}

	return domain.Facets{
		Brands:       brands.top(domain.MaxBrandFacets),
		Categories:   categories.top(0),
		PriceRanges:  priceFacet,
		Ratings:      thresholdFacet(domain.RatingThresholds, ratings),
		Discounts:    thresholdFacet(domain.DiscountThresholds, discounts),
		Availability: []domain.FacetCount{
			{Name: domain.AvailabilityInStock, Count: inStock},
			{Name: domain.AvailabilityFastDelivery, Count: fastDelivery},
			{Name: domain.AvailabilityCOD, Count: cod},
		},
	}
}

func thresholdFacet(thresholds []domain.Threshold, counts []int) []domain.FacetCount {
	out := make([]domain.FacetCount, len(thresholds))
	for i, th := range thresholds {
		out[i] = domain.FacetCount{Name: th.Name, Count: counts[i]}
	}
	return out
}

// counter counts names, remembering first-appearance order for ties.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(name string) {
	if _, ok := c.counts[name]; !ok {
		c.order = append(c.order, name)
	}
	c.counts[name]++
}

// top returns up to n entries by descending count; n <= 0 returns all.
func (c *counter) top(n int) []domain.FacetCount {
	out := make([]domain.FacetCount, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, domain.FacetCount{Name: name, Count: c.counts[name]})
	}
	slices.SortStableFunc(out, func(a, b domain.FacetCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
