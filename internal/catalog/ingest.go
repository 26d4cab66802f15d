package catalog

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/pkg/validator"
)

// RawProduct is a product record as supplied by a feed. It accepts the
// legacy field names older feeds use and is resolved into a domain.Product
// once, at ingestion.
type RawProduct struct {
	ID            string   `json:"id" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Brand         string   `json:"brand"`
	Category      string   `json:"category"`
	CurrentPrice  *float64 `json:"currentPrice" validate:"omitempty,gte=0"`
	OriginalPrice *float64 `json:"originalPrice" validate:"omitempty,gte=0"`
	// Price is the legacy single-price field.
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Discount    *float64 `json:"discount"`
	Rating      float64  `json:"rating"`
	ReviewCount *int     `json:"reviewCount"`
	// RatingCount is the legacy name of ReviewCount.
	RatingCount *int `json:"ratingCount"`
	Popularity  int  `json:"popularity"`

	Image          string                         `json:"image"`
	Images         []string                       `json:"images"`
	Description    string                         `json:"description"`
	Specifications map[string]any                 `json:"specifications"`
	Features       []string                       `json:"features"`
	Offers         []string                       `json:"offers"`
	Tags           []string                       `json:"tags"`
	SearchKeywords []string                       `json:"searchKeywords"`
	SKU            string                         `json:"sku"`
	InStock        *bool                          `json:"inStock"`
	FastDelivery   bool                           `json:"fastDelivery"`
	Bestseller     bool                           `json:"bestseller"`
	NewArrival     bool                           `json:"newArrival"`
	Warranty       string                         `json:"warranty"`
	ReturnPolicy   string                         `json:"returnPolicy"`
	Seller         string                         `json:"seller"`
	Variants       []domain.Variant               `json:"variants"`
	LocationData   map[string]domain.LocationInfo `json:"locationData"`
}

// Canonical validates r and resolves it into a domain.Product.
//
// Prices fall back to the legacy price field; an absent original price
// equals the current price. A current price above the original price is kept
// as supplied. Discount is derived from the prices when absent and never
// negative. Missing stock state means in stock. Rating is clamped to [0, 5].
func (r *RawProduct) Canonical() (domain.Product, error) {
	if err := validator.Validate(r); err != nil {
		return domain.Product{}, err
	}

	current := firstOf(r.CurrentPrice, r.Price)
	original := firstOf(r.OriginalPrice, r.Price)
	if original == 0 {
		original = current
	}

	discount := 0
	switch {
	case r.Discount != nil:
		discount = int(math.Round(*r.Discount))
	case original > 0:
		discount = int(math.Round((original - current) / original * 100))
	}

	reviews := 0
	switch {
	case r.ReviewCount != nil:
		reviews = *r.ReviewCount
	case r.RatingCount != nil:
		reviews = *r.RatingCount
	}

	inStock := true
	if r.InStock != nil {
		inStock = *r.InStock
	}

	specs := make(map[string]string, len(r.Specifications))
	for k, v := range r.Specifications {
		specs[k] = fmt.Sprint(v)
	}

	return domain.Product{
		ID:             r.ID,
		Title:          r.Title,
		Brand:          r.Brand,
		Category:       r.Category,
		CurrentPrice:   current,
		OriginalPrice:  original,
		Discount:       max(0, discount),
		Rating:         math.Min(5, math.Max(0, r.Rating)),
		ReviewCount:    max(0, reviews),
		Popularity:     max(0, r.Popularity),
		Image:          r.Image,
		Images:         orEmpty(r.Images),
		Description:    r.Description,
		Specifications: specs,
		Features:       orEmpty(r.Features),
		Offers:         orEmpty(r.Offers),
		Tags:           orEmpty(r.Tags),
		SearchKeywords: orEmpty(r.SearchKeywords),
		SKU:            r.SKU,
		InStock:        inStock,
		FastDelivery:   r.FastDelivery,
		Bestseller:     r.Bestseller,
		NewArrival:     r.NewArrival,
		Warranty:       r.Warranty,
		ReturnPolicy:   r.ReturnPolicy,
		Seller:         r.Seller,
		Variants:       orEmpty(r.Variants),
		LocationData:   r.LocationData,
	}, nil
}

// Stats summarizes one ingestion run.
type Stats struct {
	Received   int
	Accepted   int
	Rejected   int
	Duplicates int
}

// Build resolves raw records into a Catalog. Invalid records and repeated
// ids are logged and skipped; ingestion itself never fails.
func Build(raws []RawProduct, logger *slog.Logger) (*Catalog, Stats) {
	stats := Stats{Received: len(raws)}
	products := make([]domain.Product, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))

	for i := range raws {
		p, err := raws[i].Canonical()
		if err != nil {
			stats.Rejected++
			logger.Warn("rejected catalog record",
				slog.Int("position", i),
				slog.String("id", raws[i].ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if _, dup := seen[p.ID]; dup {
			stats.Duplicates++
			logger.Warn("duplicate catalog id skipped", slog.String("id", p.ID))
			continue
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
	}

	stats.Accepted = len(products)
	logger.Info("catalog built",
		slog.Int("received", stats.Received),
		slog.Int("accepted", stats.Accepted),
		slog.Int("rejected", stats.Rejected),
		slog.Int("duplicates", stats.Duplicates),
	)
	return New(products), stats
}

func firstOf(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
