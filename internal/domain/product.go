package domain

import "strings"

// CategorySeparator splits a hierarchical category into its levels.
const CategorySeparator = " > "

// DefaultLocation is the location used when a request names none.
const DefaultLocation = "Mumbai"

// Placeholder values surfaced for locations a product has no data for.
const (
	DefaultAvailability = "Check availability"
	DefaultDeliveryTime = "3-5 days"
)

// Product is the canonical catalog record. It is built once at ingestion and
// never mutated afterwards.
type Product struct {
	ID             string                  `json:"id"`
	Title          string                  `json:"title"`
	Brand          string                  `json:"brand"`
	Category       string                  `json:"category"`
	CurrentPrice   float64                 `json:"currentPrice"`
	OriginalPrice  float64                 `json:"originalPrice"`
	Discount       int                     `json:"discount"`
	Rating         float64                 `json:"rating"`
	ReviewCount    int                     `json:"reviewCount"`
	Popularity     int                     `json:"popularity"`
	Image          string                  `json:"image"`
	Images         []string                `json:"images"`
	Description    string                  `json:"description"`
	Specifications map[string]string       `json:"specifications"`
	Features       []string                `json:"features"`
	Offers         []string                `json:"offers"`
	Tags           []string                `json:"tags"`
	SearchKeywords []string                `json:"searchKeywords"`
	SKU            string                  `json:"sku"`
	InStock        bool                    `json:"inStock"`
	FastDelivery   bool                    `json:"fastDelivery"`
	Bestseller     bool                    `json:"bestseller"`
	NewArrival     bool                    `json:"newArrival"`
	Warranty       string                  `json:"warranty"`
	ReturnPolicy   string                  `json:"returnPolicy"`
	Seller         string                  `json:"seller"`
	Variants       []Variant               `json:"variants"`
	LocationData   map[string]LocationInfo `json:"locationData"`
}

// Variant is a purchasable option of a product.
type Variant struct {
	Name          string  `json:"name"`
	PriceModifier float64 `json:"priceModifier"`
}

// LocationInfo holds the per-location availability of a product.
type LocationInfo struct {
	Availability string   `json:"availability"`
	DeliveryTime string   `json:"deliveryTime"`
	COD          bool     `json:"cod"`
	FreeDelivery bool     `json:"freeDelivery"`
	LocalOffers  []string `json:"localOffers"`
}

// MainCategory returns the top-level category, the text before the first separator.
func (p *Product) MainCategory() string {
	main, _, _ := strings.Cut(p.Category, CategorySeparator)
	return main
}

// Location returns the product's data for the named location, substituting
// placeholders for anything missing.
func (p *Product) Location(name string) LocationInfo {
	info := p.LocationData[name]
	if info.Availability == "" {
		info.Availability = DefaultAvailability
	}
	if info.DeliveryTime == "" {
		info.DeliveryTime = DefaultDeliveryTime
	}
	if info.LocalOffers == nil {
		info.LocalOffers = []string{}
	}
	return info
}

// HasCOD reports whether cash on delivery is offered at the named location.
func (p *Product) HasCOD(location string) bool {
	return p.LocationData[location].COD
}

// AnyCOD reports whether cash on delivery is offered at any location.
func (p *Product) AnyCOD() bool {
	for _, info := range p.LocationData {
		if info.COD {
			return true
		}
	}
	return false
}
