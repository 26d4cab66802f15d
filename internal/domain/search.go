package domain

import (
	"github.com/utafrali/catalogsearch/pkg/pagination"
)

// Sort keys for search results.
const (
	SortRelevance  = "relevance"
	SortPrice      = "price"
	SortRating     = "rating"
	SortPopularity = "popularity"
	SortDiscount   = "discount"
	SortNewest     = "newest"
)

// Sort orders.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Availability filter modes.
const (
	AvailabilityInStock      = "in_stock"
	AvailabilityFastDelivery = "fast_delivery"
	AvailabilityCOD          = "cod"
)

// Offer filter flags.
const (
	OfferBestseller = "bestseller"
	OfferNewArrival = "new_arrival"
)

// Suggestion types, in precedence order.
const (
	SuggestionBrand    = "brand"
	SuggestionCategory = "category"
	SuggestionProduct  = "product"
	SuggestionRelated  = "related"
)

// Completion types.
const (
	CompletionBrand    = "brand"
	CompletionCategory = "category"
	CompletionKeyword  = "keyword"
)

// IsValidSort reports whether sortBy names a known sort key.
func IsValidSort(sortBy string) bool {
	switch sortBy {
	case SortRelevance, SortPrice, SortRating, SortPopularity, SortDiscount, SortNewest:
		return true
	}
	return false
}

// Filters narrows search results. Nil pointers and empty lists mean no constraint.
type Filters struct {
	MinPrice     *float64 `json:"minPrice,omitempty"`
	MaxPrice     *float64 `json:"maxPrice,omitempty"`
	Brands       []string `json:"brands,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	MinRating    *float64 `json:"minRating,omitempty"`
	MinDiscount  *float64 `json:"minDiscount,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Offers       []string `json:"offers,omitempty"`
}

// SearchRequest holds all parameters for a search call.
type SearchRequest struct {
	Query     string
	Filters   Filters
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Location  string
}

// SearchResponse is a paginated, filtered and sorted page of results.
type SearchResponse struct {
	Query          string             `json:"query"`
	Results        []FormattedProduct `json:"results"`
	Pagination     pagination.Meta    `json:"pagination"`
	Facets         Facets             `json:"facets"`
	AppliedFilters Filters            `json:"appliedFilters"`
	SortBy         string             `json:"sortBy"`
	SortOrder      string             `json:"sortOrder"`
	TookMs         int64              `json:"tookMs"`
}

// FacetCount is one bucket of a facet.
type FacetCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Facets are count breakdowns of the catalog along each filter dimension.
type Facets struct {
	Brands       []FacetCount `json:"brands"`
	Categories   []FacetCount `json:"categories"`
	PriceRanges  []FacetCount `json:"priceRanges"`
	Ratings      []FacetCount `json:"ratings"`
	Discounts    []FacetCount `json:"discounts"`
	Availability []FacetCount `json:"availability"`
}

// Suggestion is a product offered while the user types.
type Suggestion struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Brand          string  `json:"brand"`
	Category       string  `json:"category"`
	CurrentPrice   float64 `json:"currentPrice"`
	OriginalPrice  float64 `json:"originalPrice"`
	Image          string  `json:"image"`
	Rating         float64 `json:"rating"`
	SuggestionType string  `json:"suggestionType"`
}

// RelatedProduct is the compact view returned by related-product lookups.
type RelatedProduct struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Brand         string  `json:"brand"`
	CurrentPrice  float64 `json:"currentPrice"`
	OriginalPrice float64 `json:"originalPrice"`
	Rating        float64 `json:"rating"`
	Image         string  `json:"image"`
}

// Completion is a query the user may be typing.
type Completion struct {
	Query string `json:"query"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// FormattedProduct is a product as shown for one location.
type FormattedProduct struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Brand          string            `json:"brand"`
	Category       string            `json:"category"`
	CurrentPrice   float64           `json:"currentPrice"`
	OriginalPrice  float64           `json:"originalPrice"`
	Discount       int               `json:"discount"`
	Rating         float64           `json:"rating"`
	ReviewCount    int               `json:"reviewCount"`
	Image          string            `json:"image"`
	Images         []string          `json:"images"`
	Description    string            `json:"description"`
	Specifications map[string]string `json:"specifications"`
	Features       []string          `json:"features"`
	Offers         []string          `json:"offers"`
	Tags           []string          `json:"tags"`
	SKU            string            `json:"sku"`
	InStock        bool              `json:"inStock"`
	Bestseller     bool              `json:"bestseller"`
	NewArrival     bool              `json:"newArrival"`
	Warranty       string            `json:"warranty"`
	ReturnPolicy   string            `json:"returnPolicy"`
	Seller         string            `json:"seller"`
	Variants       []Variant         `json:"variants"`
	Availability   string            `json:"availability"`
	DeliveryTime   string            `json:"deliveryTime"`
	COD            bool              `json:"cod"`
	FreeDelivery   bool              `json:"freeDelivery"`
	LocalOffers    []string          `json:"localOffers"`
	SearchScore    float64           `json:"searchScore"`
}

// Format renders p for the given location with the given search score.
func (p *Product) Format(location string, score float64) FormattedProduct {
	loc := p.Location(location)
	return FormattedProduct{
		ID:             p.ID,
		Title:          p.Title,
		Brand:          p.Brand,
		Category:       p.Category,
		CurrentPrice:   p.CurrentPrice,
		OriginalPrice:  p.OriginalPrice,
		Discount:       p.Discount,
		Rating:         p.Rating,
		ReviewCount:    p.ReviewCount,
		Image:          p.Image,
		Images:         p.Images,
		Description:    p.Description,
		Specifications: p.Specifications,
		Features:       p.Features,
		Offers:         p.Offers,
		Tags:           p.Tags,
		SKU:            p.SKU,
		InStock:        p.InStock,
		Bestseller:     p.Bestseller,
		NewArrival:     p.NewArrival,
		Warranty:       p.Warranty,
		ReturnPolicy:   p.ReturnPolicy,
		Seller:         p.Seller,
		Variants:       p.Variants,
		Availability:   loc.Availability,
		DeliveryTime:   loc.DeliveryTime,
		COD:            loc.COD,
		FreeDelivery:   loc.FreeDelivery,
		LocalOffers:    loc.LocalOffers,
		SearchScore:    score,
	}
}

// Suggestion renders p as a suggestion of the given type.
func (p *Product) Suggestion(suggestionType string) Suggestion {
	return Suggestion{
		ID:             p.ID,
		Title:          p.Title,
		Brand:          p.Brand,
		Category:       p.Category,
		CurrentPrice:   p.CurrentPrice,
		OriginalPrice:  p.OriginalPrice,
		Image:          p.Image,
		Rating:         p.Rating,
		SuggestionType: suggestionType,
	}
}

// Related renders p as a related product.
func (p *Product) Related() RelatedProduct {
	return RelatedProduct{
		ID:            p.ID,
		Title:         p.Title,
		Brand:         p.Brand,
		CurrentPrice:  p.CurrentPrice,
		OriginalPrice: p.OriginalPrice,
		Rating:        p.Rating,
		Image:         p.Image,
	}
}
