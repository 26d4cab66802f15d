package scoring

import (
	"strings"

	"github.com/utafrali/catalogsearch/internal/domain"
)

// Per-term signal weights.
const (
	WeightTitlePrefix       = 100.0
	WeightTitleSubstring    = 50.0
	WeightBrandPrefix       = 80.0
	WeightBrandSubstring    = 40.0
	WeightCategorySubstring = 30.0
	WeightTitleFuzzy        = 20.0
	WeightBrandFuzzy        = 15.0
	WeightKeyword           = 15.0
	WeightDescription       = 10.0
)

// Boost factors added once a product has matched lexically.
const (
	PopularityBoost = 0.1
	RatingBoost     = 2.0
)

// Mode selects which signals contribute to a score.
type Mode int

const (
	// ModeSuggest scores title, brand and category only.
	ModeSuggest Mode = iota
	// ModeSearch also scores search keywords, tags, features and description.
	ModeSearch
)

// Signals records which precedence-relevant signals fired for a product.
type Signals struct {
	BrandPrefix       bool
	CategorySubstring bool
	TitlePrefix       bool
}

// SuggestionType labels a suggestion by the highest-precedence signal that fired.
func (s Signals) SuggestionType() string {
	switch {
	case s.BrandPrefix:
		return domain.SuggestionBrand
	case s.CategorySubstring:
		return domain.SuggestionCategory
	case s.TitlePrefix:
		return domain.SuggestionProduct
	default:
		return domain.SuggestionRelated
	}
}

// Document is a product's searchable text, normalized once.
type Document struct {
	Title       string
	Brand       string
	Category    string
	TitleWords  []string
	BrandWords  []string
	Keywords    []string
	Description string

	popularity float64
	rating     float64
}

// NewDocument prepares p for scoring.
func NewDocument(p *domain.Product) Document {
	title := Normalize(p.Title)
	brand := Normalize(p.Brand)

	keywords := make([]string, 0, len(p.SearchKeywords)+len(p.Tags))
	for _, k := range p.SearchKeywords {
		if n := Normalize(k); n != "" {
			keywords = append(keywords, n)
		}
	}
	for _, k := range p.Tags {
		if n := Normalize(k); n != "" {
			keywords = append(keywords, n)
		}
	}

	desc := p.Description
	if len(p.Features) > 0 {
		desc += " " + strings.Join(p.Features, " ")
	}

	return Document{
		Title:       title,
		Brand:       brand,
		Category:    Normalize(p.Category),
		TitleWords:  Words(title),
		BrandWords:  Words(brand),
		Keywords:    keywords,
		Description: Normalize(desc),
		popularity:  float64(p.Popularity),
		rating:      p.Rating,
	}
}

// Result is the outcome of scoring one document.
type Result struct {
	Score   float64
	Signals Signals
}

// Matched reports whether the document should appear in results.
func (r Result) Matched() bool {
	return r.Score > 0
}

// Score sums the contribution of every term against doc. Each term is scored
// independently, so a document matching several expansions scores higher.
// The popularity and rating boost orders text matches only: a document no
// term matched scores 0 whatever its popularity or rating.
func Score(doc *Document, terms []string, mode Mode) Result {
	var (
		lexical float64
		signals Signals
	)

	for _, term := range terms {
		if term == "" {
			continue
		}

		switch {
		case strings.HasPrefix(doc.Title, term):
			lexical += WeightTitlePrefix
			signals.TitlePrefix = true
		case strings.Contains(doc.Title, term):
			lexical += WeightTitleSubstring
		}

		switch {
		case strings.HasPrefix(doc.Brand, term):
			lexical += WeightBrandPrefix
			signals.BrandPrefix = true
		case strings.Contains(doc.Brand, term):
			lexical += WeightBrandSubstring
		}

		if strings.Contains(doc.Category, term) {
			lexical += WeightCategorySubstring
			signals.CategorySubstring = true
		}

		if fuzzyAnyWord(term, doc.TitleWords) {
			lexical += WeightTitleFuzzy
		}
		if fuzzyAnyWord(term, doc.BrandWords) {
			lexical += WeightBrandFuzzy
		}

		if mode == ModeSearch {
			if containsAny(doc.Keywords, term) {
				lexical += WeightKeyword
			}
			if strings.Contains(doc.Description, term) {
				lexical += WeightDescription
			}
		}
	}

	if lexical == 0 {
		return Result{}
	}

	return Result{
		Score:   lexical + Boost(doc.popularity, doc.rating),
		Signals: signals,
	}
}

// Boost is the non-textual part of a matched product's score.
func Boost(popularity, rating float64) float64 {
	return popularity*PopularityBoost + rating*RatingBoost
}

func containsAny(haystack []string, term string) bool {
	for _, h := range haystack {
		if strings.Contains(h, term) {
			return true
		}
	}
	return false
}
