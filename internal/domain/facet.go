package domain

// MaxBrandFacets caps the brand facet.
const MaxBrandFacets = 20

// PriceBucket is a half-open price range [Min, Max). Max 0 means unbounded.
type PriceBucket struct {
	Name     string
	Min, Max float64
}

// PriceBuckets are the fixed price facet ranges.
var PriceBuckets = []PriceBucket{
	{Name: "0-1000", Min: 0, Max: 1000},
	{Name: "1000-5000", Min: 1000, Max: 5000},
	{Name: "5000-15000", Min: 5000, Max: 15000},
	{Name: "15000-50000", Min: 15000, Max: 50000},
	{Name: "50000+", Min: 50000},
}

// Contains reports whether price falls into the bucket.
func (b PriceBucket) Contains(price float64) bool {
	if b.Max == 0 {
		return price >= b.Min
	}
	return price >= b.Min && price < b.Max
}

// Threshold is a cumulative facet bucket counting values >= Min.
type Threshold struct {
	Name string
	Min  float64
}

// RatingThresholds are the cumulative rating facet buckets.
var RatingThresholds = []Threshold{
	{"4+", 4}, {"3+", 3}, {"2+", 2}, {"1+", 1},
}

// DiscountThresholds are the cumulative discount facet buckets.
var DiscountThresholds = []Threshold{
	{"10+", 10}, {"20+", 20}, {"30+", 30}, {"40+", 40},
}
