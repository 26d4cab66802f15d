package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalogsearch/internal/cache"
	"github.com/utafrali/catalogsearch/internal/catalog"
	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/engine/memory"
	"github.com/utafrali/catalogsearch/internal/event"
	apperrors "github.com/utafrali/catalogsearch/pkg/errors"
	pkgkafka "github.com/utafrali/catalogsearch/pkg/kafka"
	"github.com/utafrali/catalogsearch/pkg/logger"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]domain.Product{
		{ID: "P1", Title: "Apple iPhone 15", Brand: "Apple", Category: "Electronics > Smartphones", CurrentPrice: 79900, Rating: 4.6, Popularity: 95, InStock: true,
			LocationData: map[string]domain.LocationInfo{"Mumbai": {Availability: "In stock", DeliveryTime: "1 day", COD: true}}},
		{ID: "P2", Title: "Samsung Galaxy S24", Brand: "Samsung", Category: "Electronics > Smartphones", CurrentPrice: 74999, Rating: 4.5, Popularity: 90, InStock: true},
		{ID: "P3", Title: "Dell Laptop Inspiron", Brand: "Dell", Category: "Electronics > Laptops", CurrentPrice: 55000, Rating: 4.2, Popularity: 70, InStock: true},
	})
}

// countingEngine counts the calls that reach the engine.
type countingEngine struct {
	*memory.Engine
	suggests    int
	completions int
}

func (c *countingEngine) Suggest(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	c.suggests++
	return c.Engine.Suggest(ctx, query, limit)
}

func (c *countingEngine) Completions(ctx context.Context, prefix string, limit int) ([]domain.Completion, error) {
	c.completions++
	return c.Engine.Completions(ctx, prefix, limit)
}

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func newTestService(opts ...Option) (*CatalogService, *countingEngine) {
	eng := &countingEngine{Engine: memory.New(testCatalog(), nil)}
	return NewCatalogService(eng, nil, Config{}, logger.Discard(), opts...), eng
}

func newTestCache(t *testing.T) (*cache.SuggestCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewSuggestCache(client, time.Minute), mr
}

func newTestPublisher(w *fakeWriter) *event.Producer {
	return event.NewProducer(pkgkafka.NewProducerWithWriter(w, logger.Discard()), "", logger.Discard())
}

func TestCatalogService_Suggest(t *testing.T) {
	svc, _ := newTestService()

	got, err := svc.Suggest(context.Background(), "mob", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"P1", "P2"}, []string{got[0].ID, got[1].ID})
}

func TestCatalogService_Suggest_BlankQuery(t *testing.T) {
	svc, eng := newTestService()

	got, err := svc.Suggest(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, eng.suggests)
}

func TestCatalogService_Suggest_LimitIsCapped(t *testing.T) {
	assert.Equal(t, DefaultSuggestLimit, clampLimit(0, DefaultSuggestLimit))
	assert.Equal(t, DefaultSuggestLimit, clampLimit(-3, DefaultSuggestLimit))
	assert.Equal(t, 5, clampLimit(5, DefaultSuggestLimit))
	assert.Equal(t, MaxListLimit, clampLimit(1000, DefaultSuggestLimit))
}

func TestCatalogService_Suggest_PopularFallback(t *testing.T) {
	eng := memory.New(testCatalog(), nil)
	svc := NewCatalogService(eng, nil, Config{PopularFallback: true}, logger.Discard())

	got, err := svc.Suggest(context.Background(), "zzzqx", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "P1", got[0].ID)
	assert.Equal(t, "P2", got[1].ID)

	plain := NewCatalogService(eng, nil, Config{}, logger.Discard())
	got, err = plain.Suggest(context.Background(), "zzzqx", 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalogService_Suggest_UsesCache(t *testing.T) {
	c, mr := newTestCache(t)
	svc, eng := newTestService(WithCache(c))
	ctx := context.Background()

	first, err := svc.Suggest(ctx, "mob", 8)
	require.NoError(t, err)
	second, err := svc.Suggest(ctx, "MOB", 8)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, eng.suggests)
	assert.True(t, mr.Exists("suggest:8:mob"))
}

func TestCatalogService_Suggest_CacheDownStillAnswers(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()
	svc, eng := newTestService(WithCache(c))

	got, err := svc.Suggest(context.Background(), "mob", 8)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, eng.suggests)
}

func TestCatalogService_Suggest_PublishesEvent(t *testing.T) {
	w := &fakeWriter{}
	svc, _ := newTestService(WithPublisher(newTestPublisher(w)))

	_, err := svc.Suggest(context.Background(), "mob", 8)
	require.NoError(t, err)

	require.Len(t, w.messages, 1)
	ev, err := pkgkafka.UnmarshalEvent(w.messages[0].Value)
	require.NoError(t, err)
	assert.Equal(t, event.TypeSuggestPerformed, ev.EventType)
}

func TestCatalogService_PublishFailureIsNotFatal(t *testing.T) {
	svc, _ := newTestService(WithPublisher(newTestPublisher(&fakeWriter{err: errors.New("broker down")})))
	ctx := context.Background()

	got, err := svc.Suggest(ctx, "mob", 8)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	resp, err := svc.Search(ctx, &domain.SearchRequest{Query: "laptop"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Pagination.TotalResults)
}

func TestCatalogService_Search(t *testing.T) {
	w := &fakeWriter{}
	svc, _ := newTestService(WithPublisher(newTestPublisher(w)))

	req := &domain.SearchRequest{SortBy: domain.SortPrice, SortOrder: domain.SortAsc}
	resp, err := svc.Search(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Results, 3)
	assert.Equal(t, "P3", resp.Results[0].ID)
	assert.Equal(t, "In stock", resp.Results[2].Availability)

	require.Len(t, w.messages, 1)
	ev, err := pkgkafka.UnmarshalEvent(w.messages[0].Value)
	require.NoError(t, err)
	var data event.SearchPerformedData
	require.NoError(t, ev.UnmarshalData(&data))
	assert.Equal(t, 3, data.TotalResults)
	assert.Equal(t, domain.SortPrice, data.SortBy)
	assert.Equal(t, domain.DefaultLocation, data.Location)
}

func TestCatalogService_Search_LeavesRequestUnchanged(t *testing.T) {
	eng := memory.New(testCatalog(), nil)
	svc := NewCatalogService(eng, nil, Config{DefaultLocation: "Delhi"}, logger.Discard())

	req := &domain.SearchRequest{Query: "iphone"}
	_, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, req.Location)

	// Reusing the request picks up a later location, not the defaulted one.
	req.Location = "Mumbai"
	resp, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "P1", resp.Results[0].ID)
	assert.Equal(t, "In stock", resp.Results[0].Availability)
}

func TestCatalogService_Search_ConfiguredLocation(t *testing.T) {
	eng := memory.New(testCatalog(), nil)
	svc := NewCatalogService(eng, nil, Config{DefaultLocation: "Delhi"}, logger.Discard())

	resp, err := svc.Search(context.Background(), &domain.SearchRequest{Query: "iphone"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, domain.DefaultAvailability, resp.Results[0].Availability)
}

func TestCatalogService_Related(t *testing.T) {
	svc, _ := newTestService()

	got, err := svc.Related(context.Background(), "P3", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "P1", got[0].ID)

	got, err = svc.Related(context.Background(), "missing", 6)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalogService_Product(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.Product(context.Background(), "P1", "")
	require.NoError(t, err)
	assert.Equal(t, "Apple iPhone 15", p.Title)
	assert.True(t, p.COD)

	_, err = svc.Product(context.Background(), "missing", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCatalogService_Popular(t *testing.T) {
	svc, _ := newTestService()

	got, err := svc.Popular(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"P1", "P2", "P3"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestCatalogService_Completions(t *testing.T) {
	c, _ := newTestCache(t)
	svc, eng := newTestService(WithCache(c))
	ctx := context.Background()

	got, err := svc.Completions(ctx, "sam", 5)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "samsung", got[0].Query)
	assert.Equal(t, domain.CompletionBrand, got[0].Type)

	again, err := svc.Completions(ctx, "Sam", 5)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, eng.completions)

	empty, err := svc.Completions(ctx, " ", 5)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCatalogService_Expand(t *testing.T) {
	svc, _ := newTestService()

	terms := svc.Expand("mob")
	require.NotEmpty(t, terms)
	assert.Equal(t, "mob", terms[0])
	assert.Contains(t, terms, "mobile")

	assert.Equal(t, []string{}, svc.Expand("  "))
}

// failingEngine fails every search.
type failingEngine struct {
	*memory.Engine
}

func (failingEngine) Search(context.Context, *domain.SearchRequest) (*domain.SearchResponse, error) {
	return nil, errors.New("connection refused")
}

func TestCatalogService_EngineFailureIsUnavailable(t *testing.T) {
	svc := NewCatalogService(failingEngine{memory.New(testCatalog(), nil)}, nil, Config{}, logger.Discard())

	_, err := svc.Search(context.Background(), &domain.SearchRequest{Query: "phone"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}
