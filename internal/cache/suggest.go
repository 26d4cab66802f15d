// Package cache stores suggestion results in Redis so repeated keystrokes do
// not hit the search engine.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/scoring"
)

const (
	suggestPrefix    = "suggest:"
	completionPrefix = "completions:"
)

// SuggestCache implements the service's suggestion cache using Redis.
type SuggestCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSuggestCache creates a Redis-backed suggestion cache.
func NewSuggestCache(client *redis.Client, ttl time.Duration) *SuggestCache {
	return &SuggestCache{
		client: client,
		ttl:    ttl,
	}
}

// key is independent of case, accents and spacing so equivalent queries
// share an entry.
func key(prefix, query string, limit int) string {
	return prefix + strconv.Itoa(limit) + ":" + scoring.Normalize(query)
}

// Suggestions returns the cached suggestions for query, and whether there
// were any.
func (c *SuggestCache) Suggestions(ctx context.Context, query string, limit int) ([]domain.Suggestion, bool, error) {
	var out []domain.Suggestion
	ok, err := c.get(ctx, key(suggestPrefix, query, limit), &out)
	return out, ok, err
}

// SetSuggestions caches suggestions for query.
func (c *SuggestCache) SetSuggestions(ctx context.Context, query string, limit int, s []domain.Suggestion) error {
	return c.set(ctx, key(suggestPrefix, query, limit), s)
}

// Completions returns the cached completions for prefix, and whether there
// were any.
func (c *SuggestCache) Completions(ctx context.Context, prefix string, limit int) ([]domain.Completion, bool, error) {
	var out []domain.Completion
	ok, err := c.get(ctx, key(completionPrefix, prefix, limit), &out)
	return out, ok, err
}

// SetCompletions caches completions for prefix.
func (c *SuggestCache) SetCompletions(ctx context.Context, prefix string, limit int, cs []domain.Completion) error {
	return c.set(ctx, key(completionPrefix, prefix, limit), cs)
}

// Ping checks the Redis connection.
func (c *SuggestCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *SuggestCache) get(ctx context.Context, k string, v any) (bool, error) {
	data, err := c.client.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", k, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", k, err)
	}
	return true, nil
}

func (c *SuggestCache) set(ctx context.Context, k string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", k, err)
	}
	if err := c.client.Set(ctx, k, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", k, err)
	}
	return nil
}
