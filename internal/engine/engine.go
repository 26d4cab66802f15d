package engine

import (
	"context"

	"github.com/utafrali/catalogsearch/internal/domain"
)

// SearchEngine ranks, filters and pages the catalog. Implementations may run
// in process or against a remote index; all of them return the same shapes.
// Absence is not an error: unknown products yield nil or empty results.
type SearchEngine interface {
	// Suggest returns up to limit products for a partially typed query,
	// each labelled with a suggestion type. Blank queries return nothing.
	Suggest(ctx context.Context, query string, limit int) ([]domain.Suggestion, error)

	// Search returns a page of filtered, sorted results with catalog facets.
	Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error)

	// Related returns up to limit products sharing category or brand with id.
	Related(ctx context.Context, id string, limit int) ([]domain.RelatedProduct, error)

	// Product returns a single product formatted for location, or nil.
	Product(ctx context.Context, id, location string) (*domain.FormattedProduct, error)

	// Popular returns up to limit products by descending popularity.
	Popular(ctx context.Context, limit int) ([]domain.Suggestion, error)

	// Completions returns queries starting with prefix, most frequent first.
	Completions(ctx context.Context, prefix string, limit int) ([]domain.Completion, error)
}
