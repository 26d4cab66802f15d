package synonym

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_TableTermExpandsToGroup(t *testing.T) {
	e := Default()

	assert.Equal(t, []string{"phone", "mobile", "smartphone"}, e.Expand("phone"))
	assert.ElementsMatch(t, []string{"computer", "laptop", "notebook", "pc", "desktop"}, e.Expand("computer"))
}

func TestExpand_OriginalTokenFirst(t *testing.T) {
	e := Default()

	for _, token := range []string{"mob", "lapt", "labtop", "phones", "xyz", "smartphone"} {
		got := e.Expand(token)
		require.NotEmpty(t, got, token)
		assert.Equal(t, token, got[0], token)
	}
}

func TestExpand_Abbreviations(t *testing.T) {
	e := Default()

	got := e.Expand("mob")
	assert.Contains(t, got, "mobile")
	assert.Contains(t, got, "smartphone")

	got = e.Expand("lap")
	assert.Contains(t, got, "laptop")
	assert.Contains(t, got, "notebook")
}

func TestExpand_Corrections(t *testing.T) {
	e := Default()

	assert.Contains(t, e.Expand("labtop"), "laptop")
	assert.Contains(t, e.Expand("compter"), "computer")
	assert.Contains(t, e.Expand("mobiile"), "mobile")
}

func TestExpand_FuzzyPrefix(t *testing.T) {
	e := Default()

	// Completion.
	assert.Contains(t, e.Expand("headp"), "headphone")
	// Over-typing.
	got := e.Expand("phones")
	assert.Contains(t, got, "phone")
	assert.Contains(t, got, "mobile")
}

func TestExpand_Closeness(t *testing.T) {
	e := Default()

	got := e.Expand("mobil")
	assert.Contains(t, got, "mobile")

	got = e.Expand("televison")
	assert.Contains(t, got, "television")
	assert.Contains(t, got, "tv")
}

func TestExpand_NoDuplicates(t *testing.T) {
	e := Default()

	for _, token := range []string{"comp", "lapt", "mob", "pho"} {
		got := e.Expand(token)
		seen := make(map[string]bool)
		for _, term := range got {
			assert.False(t, seen[term], "%s duplicated in expansion of %s", term, token)
			seen[term] = true
		}
	}
}

func TestExpand_UnknownAndEmpty(t *testing.T) {
	e := Default()

	assert.Nil(t, e.Expand(""))
	assert.Equal(t, []string{"qzx"}, e.Expand("qzx"))
}

func TestExpand_Symmetric(t *testing.T) {
	e := Default()

	for _, a := range e.terms {
		for _, b := range e.Synonyms(a) {
			assert.Contains(t, e.Expand(b), a, "%s expands to %s but not back", a, b)
		}
	}
}

func TestExpand_TableTermStillCompletes(t *testing.T) {
	e := New(Table{Groups: [][]string{
		{"watch", "timepiece"},
		{"watchband", "strap"},
	}})

	got := e.Expand("watch")
	assert.Equal(t, []string{"watch", "timepiece"}, got[:2])
	assert.Contains(t, got, "watchband")
	assert.Contains(t, got, "strap")

	// Over-typing a table term reaches the shorter group too.
	assert.Contains(t, e.Expand("watchband"), "watch")
}

func TestNew_MergesOverlappingGroups(t *testing.T) {
	e := New(Table{Groups: [][]string{{"a1", "b1"}, {"a1", "c1"}}})

	assert.ElementsMatch(t, []string{"b1", "c1"}, e.Synonyms("a1"))
	assert.Equal(t, []string{"a1"}, e.Synonyms("b1"))
	assert.Equal(t, []string{"a1"}, e.Synonyms("c1"))
}

func TestTerms(t *testing.T) {
	e := Default()

	got := e.Terms("  Dell   LAPTOP ")
	require.NotEmpty(t, got)
	assert.Equal(t, "dell laptop", got[0])
	assert.Contains(t, got, "dell")
	assert.Contains(t, got, "laptop")
	assert.Contains(t, got, "computer")

	assert.Equal(t, []string{"mob", "mobile", "phone", "smartphone"}, e.Terms("Mob"))
	assert.Nil(t, e.Terms("   "))
}

func TestIsCloseMatch(t *testing.T) {
	assert.True(t, isCloseMatch("mobil", "mobile"))
	assert.True(t, isCloseMatch("lptop", "laptop"))
	assert.False(t, isCloseMatch("xyz", "mobile"))
	assert.False(t, isCloseMatch("mo", "mobile"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
groups:
  - [sofa, couch]
abbreviations:
  so: sofa
`), 0o600))

	e, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"couch", "sofa"}, e.Expand("couch"))
	assert.Contains(t, e.Expand("so"), "couch")
}

func TestLoadFile_EmptyPathUsesDefault(t *testing.T) {
	e, err := LoadFile("")
	require.NoError(t, err)
	assert.Contains(t, e.Expand("phone"), "mobile")
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("groups: [[unterminated"), 0o600))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestGroups(t *testing.T) {
	e := New(Table{Groups: [][]string{{"TV", "Télévision"}, {"solo"}, {"a", "b"}}})

	assert.Equal(t, [][]string{{"tv", "television"}, {"a", "b"}}, e.Groups())

	got := e.Groups()
	got[0][0] = "changed"
	assert.Equal(t, "tv", e.Groups()[0][0])
}
