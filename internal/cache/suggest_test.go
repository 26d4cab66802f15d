package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalogsearch/internal/domain"
)

func setupTestRedis(t *testing.T) (*SuggestCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSuggestCache(client, time.Minute), mr
}

func sampleSuggestions() []domain.Suggestion {
	return []domain.Suggestion{
		{ID: "P1", Title: "Apple iPhone 15", Brand: "Apple", CurrentPrice: 79900, SuggestionType: domain.SuggestionCategory},
		{ID: "P2", Title: "Samsung Galaxy S24", Brand: "Samsung", CurrentPrice: 74999, SuggestionType: domain.SuggestionCategory},
	}
}

func TestSuggestCache_RoundTrip(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.SetSuggestions(ctx, "Mob", 8, sampleSuggestions()))

	got, ok, err := c.Suggestions(ctx, "  mob ", 8)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleSuggestions(), got)

	assert.True(t, mr.Exists("suggest:8:mob"))
	assert.Equal(t, time.Minute, mr.TTL("suggest:8:mob"))
}

func TestSuggestCache_Miss(t *testing.T) {
	c, _ := setupTestRedis(t)

	got, ok, err := c.Suggestions(context.Background(), "mob", 8)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestSuggestCache_LimitIsPartOfKey(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.SetSuggestions(ctx, "mob", 8, sampleSuggestions()))

	_, ok, err := c.Suggestions(ctx, "mob", 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSuggestCache_EmptyResultIsCached(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.SetSuggestions(ctx, "zzz", 8, []domain.Suggestion{}))

	got, ok, err := c.Suggestions(ctx, "zzz", 8)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestSuggestCache_Expiry(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.SetSuggestions(ctx, "mob", 8, sampleSuggestions()))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Suggestions(ctx, "mob", 8)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSuggestCache_CorruptEntry(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("suggest:8:mob", "{not json"))

	_, ok, err := c.Suggestions(context.Background(), "mob", 8)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestSuggestCache_Completions(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	want := []domain.Completion{{Query: "samsung", Type: domain.CompletionBrand, Count: 3}}
	require.NoError(t, c.SetCompletions(ctx, "Sam", 8, want))

	got, ok, err := c.Completions(ctx, "sam", 8)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.True(t, mr.Exists("completions:8:sam"))
}

func TestSuggestCache_Unavailable(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	mr.Close()

	assert.Error(t, c.Ping(ctx))
	_, _, err := c.Suggestions(ctx, "mob", 8)
	assert.Error(t, err)
	assert.Error(t, c.SetSuggestions(ctx, "mob", 8, sampleSuggestions()))
}
