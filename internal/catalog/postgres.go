package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/utafrali/catalogsearch/pkg/database"
)

const selectProducts = `SELECT id, title, brand, category, current_price, original_price, discount, rating, review_count, popularity, in_stock, details FROM catalog_products ORDER BY position, id`

// PostgresLoader reads the catalog from the catalog_products table. Core
// fields are columns; everything else lives in the details JSON document.
type PostgresLoader struct {
	db database.Querier
}

// NewPostgresLoader creates a loader over db.
func NewPostgresLoader(db database.Querier) *PostgresLoader {
	return &PostgresLoader{db: db}
}

// Load reads every row in catalog order.
func (l *PostgresLoader) Load(ctx context.Context) ([]RawProduct, error) {
	rows, err := l.db.Query(ctx, selectProducts)
	if err != nil {
		return nil, fmt.Errorf("query catalog products: %w", err)
	}
	defer rows.Close()

	var raws []RawProduct
	for rows.Next() {
		var (
			r                          RawProduct
			id, title, brand, category string
			current, original, rating  *float64
			discount, reviews          *int32
			popularity                 *int32
			inStock                    *bool
			details                    []byte
		)
		if err := rows.Scan(
			&id, &title, &brand, &category,
			&current, &original, &discount,
			&rating, &reviews, &popularity,
			&inStock, &details,
		); err != nil {
			return nil, fmt.Errorf("scan catalog product: %w", err)
		}

		if len(details) > 0 {
			if err := json.Unmarshal(details, &r); err != nil {
				return nil, fmt.Errorf("decode details of product %s: %w", id, err)
			}
		}

		r.ID, r.Title, r.Brand, r.Category = id, title, brand, category
		r.CurrentPrice, r.OriginalPrice = current, original
		r.InStock = inStock
		if discount != nil {
			d := float64(*discount)
			r.Discount = &d
		}
		if rating != nil {
			r.Rating = *rating
		}
		if reviews != nil {
			n := int(*reviews)
			r.ReviewCount = &n
		}
		if popularity != nil {
			r.Popularity = int(*popularity)
		}
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog products: %w", err)
	}
	return raws, nil
}
