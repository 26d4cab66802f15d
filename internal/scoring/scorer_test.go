package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/utafrali/catalogsearch/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Café   CRÈME ", "cafe creme"},
		{"Apple iPhone 15", "apple iphone 15"},
		{"Électronique > Télévisions", "electronique > televisions"},
		{"", ""},
		{"\t\n", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		name          string
		query, target string
		want          bool
	}{
		{"substring", "lapt", "laptop", true},
		{"target inside query", "laptops", "laptop", true},
		{"single edit", "labtop", "laptop", true},
		{"single edit brand", "samsang", "samsung", true},
		{"transposition exceeds tolerance", "iphnoe", "iphone", false},
		{"shared prefix", "lapto", "laptxyz", true},
		{"short query substring only", "ab", "abc", true},
		{"short query no edits", "ab", "ba", false},
		{"one char target", "xyz", "a", false},
		{"unrelated", "mobile", "dell", false},
		{"empty query", "", "x", false},
		{"empty target", "x", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FuzzyMatch(tt.query, tt.target))
		})
	}
}

func iphone() *domain.Product {
	return &domain.Product{
		ID:          "1",
		Title:       "Apple iPhone 15",
		Brand:       "Apple",
		Category:    "Electronics > Smartphones",
		Description: "Apple phone with A16 chip",
	}
}

func TestScore_SuggestWeights(t *testing.T) {
	doc := NewDocument(iphone())

	res := Score(&doc, []string{"apple"}, ModeSuggest)

	want := WeightTitlePrefix + WeightBrandPrefix + WeightTitleFuzzy + WeightBrandFuzzy
	assert.Equal(t, want, res.Score)
	assert.True(t, res.Signals.BrandPrefix)
	assert.True(t, res.Signals.TitlePrefix)
	assert.False(t, res.Signals.CategorySubstring)
	assert.Equal(t, domain.SuggestionBrand, res.Signals.SuggestionType())
}

func TestScore_SearchModeAddsDescription(t *testing.T) {
	doc := NewDocument(iphone())

	suggest := Score(&doc, []string{"apple"}, ModeSuggest)
	search := Score(&doc, []string{"apple"}, ModeSearch)

	assert.Equal(t, suggest.Score+WeightDescription, search.Score)
}

func TestScore_SearchModeKeywordsAndTags(t *testing.T) {
	p := iphone()
	p.SearchKeywords = []string{"ios handset"}
	p.Description = ""
	doc := NewDocument(p)

	res := Score(&doc, []string{"handset"}, ModeSearch)
	assert.Equal(t, WeightKeyword, res.Score)

	assert.Zero(t, Score(&doc, []string{"handset"}, ModeSuggest).Score)
}

func TestScore_SubstringWeights(t *testing.T) {
	p := &domain.Product{Title: "Wireless Headphones", Brand: "SoundMax", Category: "Electronics > Audio"}
	doc := NewDocument(p)

	res := Score(&doc, []string{"max"}, ModeSuggest)

	// "max" is inside the brand but not at its start; "soundmax" contains it
	// so the brand word also fuzzily matches.
	assert.Equal(t, WeightBrandSubstring+WeightBrandFuzzy, res.Score)
	assert.Equal(t, domain.SuggestionRelated, res.Signals.SuggestionType())
}

func TestScore_CategorySignal(t *testing.T) {
	doc := NewDocument(iphone())

	res := Score(&doc, []string{"smartphone"}, ModeSuggest)

	assert.Equal(t, WeightCategorySubstring, res.Score)
	assert.Equal(t, domain.SuggestionCategory, res.Signals.SuggestionType())
}

func TestScore_BoostRequiresTextMatch(t *testing.T) {
	p := iphone()
	p.Popularity = 50
	p.Rating = 4
	doc := NewDocument(p)

	miss := Score(&doc, []string{"zzz"}, ModeSearch)
	assert.Zero(t, miss.Score)
	assert.False(t, miss.Matched())

	hit := Score(&doc, []string{"smartphone"}, ModeSuggest)
	assert.Equal(t, WeightCategorySubstring+50*PopularityBoost+4*RatingBoost, hit.Score)
	assert.True(t, hit.Matched())
}

func TestScore_TermsCompound(t *testing.T) {
	doc := NewDocument(iphone())

	one := Score(&doc, []string{"smartphone"}, ModeSuggest)
	two := Score(&doc, []string{"smartphone", "electronics"}, ModeSuggest)

	assert.Equal(t, 2*one.Score, two.Score)
}

func TestScore_TitlePrefixIncreasesScore(t *testing.T) {
	with := &domain.Product{Title: "Phone Stand Aluminium", Brand: "Phonix", Category: "Accessories"}
	without := &domain.Product{Title: "Stand Aluminium", Brand: "Phonix", Category: "Accessories"}
	a, b := NewDocument(with), NewDocument(without)

	assert.Greater(t, Score(&a, []string{"phon"}, ModeSearch).Score, Score(&b, []string{"phon"}, ModeSearch).Score)
}

func TestScore_EmptyTermsIgnored(t *testing.T) {
	doc := NewDocument(iphone())
	assert.Zero(t, Score(&doc, []string{""}, ModeSearch).Score)
	assert.Zero(t, Score(&doc, nil, ModeSearch).Score)
}

func TestSignals_SuggestionTypePrecedence(t *testing.T) {
	assert.Equal(t, domain.SuggestionBrand, Signals{BrandPrefix: true, CategorySubstring: true, TitlePrefix: true}.SuggestionType())
	assert.Equal(t, domain.SuggestionCategory, Signals{CategorySubstring: true, TitlePrefix: true}.SuggestionType())
	assert.Equal(t, domain.SuggestionProduct, Signals{TitlePrefix: true}.SuggestionType())
	assert.Equal(t, domain.SuggestionRelated, Signals{}.SuggestionType())
}
