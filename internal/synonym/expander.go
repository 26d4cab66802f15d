package synonym

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/utafrali/catalogsearch/internal/scoring"
)

//go:embed synonyms.yaml
var defaultTable []byte

// Table is the configuration an Expander is built from.
type Table struct {
	Groups        [][]string        `yaml:"groups"`
	Abbreviations map[string]string `yaml:"abbreviations"`
	Corrections   map[string]string `yaml:"corrections"`
}

// Expander widens query tokens into related tokens. It is immutable after
// construction and safe for concurrent use.
type Expander struct {
	synonyms      map[string][]string
	abbreviations map[string]string
	corrections   map[string]string
	// terms lists every group member in table order.
	terms  []string
	groups [][]string
}

// ParseTable decodes a YAML synonym table.
func ParseTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("parse synonym table: %w", err)
	}
	return t, nil
}

// Default returns an Expander over the built-in table.
func Default() *Expander {
	t, err := ParseTable(defaultTable)
	if err != nil {
		panic(err)
	}
	return New(t)
}

// LoadFile builds an Expander from a YAML file. An empty path yields the
// built-in table.
func LoadFile(path string) (*Expander, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonym file: %w", err)
	}
	t, err := ParseTable(data)
	if err != nil {
		return nil, err
	}
	return New(t), nil
}

// New builds an Expander. Groups sharing a term are merged for that term, so
// the synonym relation is symmetric.
func New(t Table) *Expander {
	e := &Expander{
		synonyms:      make(map[string][]string),
		abbreviations: make(map[string]string, len(t.Abbreviations)),
		corrections:   make(map[string]string, len(t.Corrections)),
	}

	seen := make(map[string]bool)
	for _, group := range t.Groups {
		members := make([]string, 0, len(group))
		for _, m := range group {
			if n := scoring.Normalize(m); n != "" {
				members = append(members, n)
			}
		}
		if len(members) > 1 {
			e.groups = append(e.groups, members)
		}
		for _, a := range members {
			if !seen[a] {
				seen[a] = true
				e.terms = append(e.terms, a)
			}
			for _, b := range members {
				if a != b && !slices.Contains(e.synonyms[a], b) {
					e.synonyms[a] = append(e.synonyms[a], b)
				}
			}
		}
	}

	for k, v := range t.Abbreviations {
		e.abbreviations[scoring.Normalize(k)] = scoring.Normalize(v)
	}
	for k, v := range t.Corrections {
		e.corrections[scoring.Normalize(k)] = scoring.Normalize(v)
	}
	return e
}

// Groups returns the normalized synonym groups in table order.
func (e *Expander) Groups() [][]string {
	out := make([][]string, len(e.groups))
	for i, g := range e.groups {
		out[i] = slices.Clone(g)
	}
	return out
}

// Synonyms returns the table synonyms of term, excluding term itself.
func (e *Expander) Synonyms(term string) []string {
	return e.synonyms[term]
}

// Expand returns token followed by its related tokens, without duplicates.
// token is expected to be normalized.
//
// A token found in the synonym table expands to its group first. Every
// token is then completed through the abbreviation and correction tables,
// through table terms it is a prefix of (or that are a prefix of it), and
// through table terms it closely resembles. Each completed term brings its
// synonyms along.
func (e *Expander) Expand(token string) []string {
	if token == "" {
		return nil
	}
	out := newSet(token)
	out.add(e.synonyms[token]...)

	// Phrases are expanded word by word in Terms.
	if strings.ContainsRune(token, ' ') {
		return out.items
	}

	n := utf8.RuneCountInString(token)

	if n >= 2 && n <= 4 {
		if full, ok := e.abbreviations[token]; ok {
			e.addWithSynonyms(out, full)
		}
	}
	if full, ok := e.corrections[token]; ok {
		e.addWithSynonyms(out, full)
	}

	if n >= 2 {
		for _, term := range e.terms {
			if strings.HasPrefix(term, token) || strings.HasPrefix(token, term) {
				e.addWithSynonyms(out, term)
			}
		}
	}

	if n >= 3 {
		for _, term := range e.terms {
			if isCloseMatch(token, term) {
				e.addWithSynonyms(out, term)
			}
		}
	}

	return out.items
}

// Terms expands a free-text query into the terms to score. The whole
// normalized query comes first, followed by the expansion of each word.
func (e *Expander) Terms(query string) []string {
	q := scoring.Normalize(query)
	if q == "" {
		return nil
	}
	out := newSet()
	out.add(e.Expand(q)...)
	if words := scoring.Words(q); len(words) > 1 {
		for _, w := range words {
			out.add(e.Expand(w)...)
		}
	}
	return out.items
}

func (e *Expander) addWithSynonyms(out *set, term string) {
	out.add(term)
	out.add(e.synonyms[term]...)
}

// isCloseMatch reports whether most of query's characters appear in order
// within word, for words at most two characters longer or shorter.
func isCloseMatch(query, word string) bool {
	q, w := []rune(query), []rune(word)
	if abs(len(q)-len(w)) > 2 {
		return false
	}

	matches, qi := 0, 0
	for i := 0; i < len(w) && qi < len(q); i++ {
		if w[i] == q[qi] {
			matches++
			qi++
		}
	}
	return float64(matches) >= min(float64(len(q)-1), float64(len(q))*0.8)
}

type set struct {
	items []string
	seen  map[string]struct{}
}

func newSet(items ...string) *set {
	s := &set{seen: make(map[string]struct{})}
	s.add(items...)
	return s
}

func (s *set) add(items ...string) {
	for _, it := range items {
		if _, ok := s.seen[it]; ok {
			continue
		}
		s.seen[it] = struct{}{}
		s.items = append(s.items, it)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
