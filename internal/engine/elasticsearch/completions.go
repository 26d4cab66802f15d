package elasticsearch

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/scoring"
)

const defaultCompletionLimit = 8

// completionFields lists the aggregated keyword fields in precedence order:
// a text found under several of them keeps the first type.
var completionFields = []struct {
	agg, field, kind string
}{
	{"brands", "brandTerm", domain.CompletionBrand},
	{"categories", "categoryTerms", domain.CompletionCategory},
	{"keywords", "keywordTerms", domain.CompletionKeyword},
}

// Completions returns brand, category and keyword queries starting with
// prefix, most frequent first.
func (e *Engine) Completions(ctx context.Context, prefix string, limit int) ([]domain.Completion, error) {
	if limit <= 0 {
		limit = defaultCompletionLimit
	}
	prefix = scoring.Normalize(prefix)
	if prefix == "" {
		return []domain.Completion{}, nil
	}

	aggs := make(map[string]interface{}, len(completionFields))
	for _, f := range completionFields {
		aggs[f.agg] = map[string]interface{}{"terms": map[string]interface{}{
			"field":   f.field,
			"include": escapeRegexp(prefix) + ".*",
			"size":    limit,
		}}
	}

	resp, err := e.search(ctx, "completions", map[string]interface{}{
		"size": 0,
		"aggs": aggs,
	})
	if err != nil {
		return nil, err
	}

	var decoded map[string]esBuckets
	if len(resp.Aggregations) > 0 {
		if err := json.Unmarshal(resp.Aggregations, &decoded); err != nil {
			return nil, fmt.Errorf("elasticsearch completions: decode aggregations: %w", err)
		}
	}

	byQuery := make(map[string]*domain.Completion)
	var order []string
	for _, f := range completionFields {
		for _, b := range decoded[f.agg].Buckets {
			if c, ok := byQuery[b.Key]; ok {
				c.Count = max(c.Count, b.DocCount)
				continue
			}
			byQuery[b.Key] = &domain.Completion{Query: b.Key, Type: f.kind, Count: b.DocCount}
			order = append(order, b.Key)
		}
	}

	out := make([]domain.Completion, 0, len(order))
	for _, q := range order {
		out = append(out, *byQuery[q])
	}
	slices.SortFunc(out, func(a, b domain.Completion) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Query, b.Query)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// escapeRegexp quotes the Lucene regular expression operators in s.
func escapeRegexp(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`.?+*|{}[]()"\#@&<>~`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
