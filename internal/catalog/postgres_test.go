package catalog

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalogsearch/pkg/database"
)

var productColumns = []string{
	"id", "title", "brand", "category",
	"current_price", "original_price", "discount",
	"rating", "review_count", "popularity",
	"in_stock", "details",
}

func i32(v int32) *int32 { return &v }

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return mock
}

func TestPostgresLoader_Load(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	details := []byte(`{"image": "iphone.jpg", "features": ["5G Ready"], "fastDelivery": true,
		"locationData": {"Delhi": {"cod": true}}}`)

	mock.ExpectQuery("SELECT .+ FROM catalog_products ORDER BY position").
		WillReturnRows(
			pgxmock.NewRows(productColumns).
				AddRow("1", "Apple iPhone 15", "Apple", "Electronics > Smartphones",
					f64(79900), f64(89900), i32(11),
					f64(4.6), i32(1200), i32(95),
					boolp(true), details).
				AddRow("2", "Plain Mug", "HomeCo", "Home > Kitchen",
					f64(299), (*float64)(nil), (*int32)(nil),
					(*float64)(nil), (*int32)(nil), (*int32)(nil),
					(*bool)(nil), []byte(nil)),
		)

	raws, err := NewPostgresLoader(mock).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 2)

	first := raws[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "Apple", first.Brand)
	require.NotNil(t, first.CurrentPrice)
	assert.Equal(t, 79900.0, *first.CurrentPrice)
	require.NotNil(t, first.Discount)
	assert.Equal(t, 11.0, *first.Discount)
	assert.Equal(t, 4.6, first.Rating)
	require.NotNil(t, first.ReviewCount)
	assert.Equal(t, 1200, *first.ReviewCount)
	assert.Equal(t, 95, first.Popularity)
	assert.Equal(t, "iphone.jpg", first.Image)
	assert.True(t, first.FastDelivery)
	assert.True(t, first.LocationData["Delhi"].COD)

	p, err := raws[1].Canonical()
	require.NoError(t, err)
	assert.Equal(t, 299.0, p.OriginalPrice)
	assert.True(t, p.InStock)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoader_QueryError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM catalog_products").
		WillReturnError(errors.New("relation does not exist"))

	_, err := NewPostgresLoader(mock).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query catalog products")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoader_BadDetails(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM catalog_products").
		WillReturnRows(
			pgxmock.NewRows(productColumns).
				AddRow("1", "x", "", "",
					(*float64)(nil), (*float64)(nil), (*int32)(nil),
					(*float64)(nil), (*int32)(nil), (*int32)(nil),
					(*bool)(nil), []byte(`{broken`)),
		)

	_, err := NewPostgresLoader(mock).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode details of product 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoader_RowError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM catalog_products").
		WillReturnRows(
			pgxmock.NewRows(productColumns).
				AddRow("1", "x", "", "",
					(*float64)(nil), (*float64)(nil), (*int32)(nil),
					(*float64)(nil), (*int32)(nil), (*int32)(nil),
					(*bool)(nil), []byte(nil)).
				RowError(0, errors.New("connection reset")),
		)

	_, err := NewPostgresLoader(mock).Load(context.Background())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
