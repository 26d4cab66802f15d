package memory

import (
	"cmp"
	"slices"
	"strings"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/scoring"
)

// completionRank orders completion types when the same text appears as more
// than one of them.
var completionRank = map[string]int{
	domain.CompletionBrand:    0,
	domain.CompletionCategory: 1,
	domain.CompletionKeyword:  2,
}

// buildCompletions collects every brand, category segment and keyword in the
// catalog with the number of products carrying it.
func buildCompletions(products []domain.Product) []domain.Completion {
	byQuery := make(map[string]*domain.Completion)
	var order []string

	add := func(text, kind string, seen map[string]bool) {
		q := scoring.Normalize(text)
		if q == "" || seen[q] {
			return
		}
		seen[q] = true

		c, ok := byQuery[q]
		if !ok {
			c = &domain.Completion{Query: q, Type: kind}
			byQuery[q] = c
			order = append(order, q)
		} else if completionRank[kind] < completionRank[c.Type] {
			c.Type = kind
		}
		c.Count++
	}

	for i := range products {
		p := &products[i]
		// A product counts once per query text.
		seen := make(map[string]bool)
		add(p.Brand, domain.CompletionBrand, seen)
		for _, segment := range strings.Split(p.Category, domain.CategorySeparator) {
			add(segment, domain.CompletionCategory, seen)
		}
		for _, kw := range p.SearchKeywords {
			add(kw, domain.CompletionKeyword, seen)
		}
		for _, tag := range p.Tags {
			add(tag, domain.CompletionKeyword, seen)
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
	return out
}

func matchCompletions(entries []domain.Completion, prefix string, limit int) []domain.Completion {
	out := make([]domain.Completion, 0, limit)
	if prefix == "" {
		return out
	}
	for _, c := range entries {
		if !strings.HasPrefix(c.Query, prefix) {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}
