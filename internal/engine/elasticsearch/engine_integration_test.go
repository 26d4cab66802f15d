package elasticsearch_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalogsearch/internal/domain"
	esengine "github.com/utafrali/catalogsearch/internal/engine/elasticsearch"
	"github.com/utafrali/catalogsearch/pkg/logger"
)

// newLiveEngine creates an engine against a real cluster. It skips the test
// if ELASTICSEARCH_URL is not set.
func newLiveEngine(t *testing.T) *esengine.Engine {
	t.Helper()

	esURL := os.Getenv("ELASTICSEARCH_URL")
	if esURL == "" {
		t.Skip("ELASTICSEARCH_URL not set, skipping Elasticsearch integration tests")
	}

	indexName := fmt.Sprintf("test_catalog_products_%d", time.Now().UnixNano())
	eng, err := esengine.New(context.Background(), esengine.Config{URL: esURL, IndexName: indexName}, nil, logger.Discard())
	require.NoError(t, err, "failed to create Elasticsearch engine")

	t.Cleanup(func() {
		_ = eng.DeleteIndex(context.Background())
	})
	return eng
}

func liveCatalog() []domain.Product {
	return []domain.Product{
		{ID: "P1", Title: "Apple iPhone 15", Brand: "Apple", Category: "Electronics > Smartphones", CurrentPrice: 79900, Rating: 4.6, Popularity: 95, InStock: true},
		{ID: "P2", Title: "Samsung Galaxy S24", Brand: "Samsung", Category: "Electronics > Smartphones", CurrentPrice: 74999, Rating: 4.5, Popularity: 90, InStock: true},
		{ID: "P3", Title: "Dell Laptop Inspiron", Brand: "Dell", Category: "Electronics > Laptops", CurrentPrice: 55000, Rating: 4.2, Popularity: 70, InStock: true},
		{ID: "P4", Title: "Ceramic Coffee Mug", Brand: "HomeCo", Category: "Home > Kitchen", CurrentPrice: 1200, Rating: 3.8, Popularity: 50, InStock: true},
	}
}

func TestES_Ping(t *testing.T) {
	eng := newLiveEngine(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, eng.Ping(ctx))
}

func TestES_IndexAndQuery(t *testing.T) {
	eng := newLiveEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.Reindex(ctx, liveCatalog()))

	suggestions, err := eng.Suggest(ctx, "mob", 8)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(suggestions), 2)
	assert.ElementsMatch(t, []string{"P1", "P2"}, []string{suggestions[0].ID, suggestions[1].ID})

	lo, hi := 1000.0, 5000.0
	resp, err := eng.Search(ctx, &domain.SearchRequest{
		Filters: domain.Filters{MinPrice: &lo, MaxPrice: &hi},
		Page:    1,
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "P4", resp.Results[0].ID)
	assert.Equal(t, 4, resp.Facets.Availability[0].Count)

	related, err := eng.Related(ctx, "P3", 6)
	require.NoError(t, err)
	assert.Len(t, related, 2)

	product, err := eng.Product(ctx, "P2", "")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Samsung Galaxy S24", product.Title)
}
