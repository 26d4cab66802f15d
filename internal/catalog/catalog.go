// Package catalog holds the immutable product collection and the loaders
// that populate it.
package catalog

import (
	"slices"

	"github.com/utafrali/catalogsearch/internal/domain"
)

// Catalog is a read-only, ordered product collection. Readers share it
// without locking; nothing mutates it after construction.
type Catalog struct {
	products []domain.Product
	byID     map[string]int
}

// New builds a catalog from canonical products. Later duplicates of an id
// are dropped.
func New(products []domain.Product) *Catalog {
	c := &Catalog{
		products: make([]domain.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for i := range products {
		if _, dup := c.byID[products[i].ID]; dup {
			continue
		}
		c.byID[products[i].ID] = len(c.products)
		c.products = append(c.products, products[i])
	}
	return c
}

// Empty returns a catalog with no products.
func Empty() *Catalog {
	return New(nil)
}

// Len is the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// At returns the i-th product in catalog order.
func (c *Catalog) At(i int) *domain.Product {
	return &c.products[i]
}

// Products returns a copy of every product in catalog order.
func (c *Catalog) Products() []domain.Product {
	return slices.Clone(c.products)
}

// Get looks a product up by id.
func (c *Catalog) Get(id string) (*domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.products[i], true
}

// Index returns the catalog position of id, or -1.
func (c *Catalog) Index(id string) int {
	if i, ok := c.byID[id]; ok {
		return i
	}
	return -1
}
