package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDashes(t *testing.T) {
	assert.Equal(t, "Star Wars: Episode VI – Return of the Jedi",
		NormalizeDashes("Star Wars: Episode VI - Return of the Jedi"))
	assert.Equal(t, "X-Men: First Class", NormalizeDashes("X-Men: First Class"))
}

func TestRemoveSentEndings(t *testing.T) {
	assert.Equal(t, "Who directed Inception", RemoveSentEndings("  Who directed Inception?\t"))
	assert.Equal(t, "a b", RemoveSentEndings("a, b."))
}

func TestAddSentenceEnding(t *testing.T) {
	assert.Equal(t, "Who directed Inception?", AddSentenceEnding("Who directed Inception ", true))
	assert.Equal(t, "Shrek is green.", AddSentenceEnding("Shrek is green", false))
	assert.Equal(t, "Done!", AddSentenceEnding("Done!", true))
	assert.Equal(t, "a", AddSentenceEnding("a", true))
}

func TestLowerTrimEndings(t *testing.T) {
	assert.Equal(t, "the dark knight", LowerTrimEndings(" The Dark Knight?"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"Who", "is", "the", "director", "of", "Star", "Wars", ":", "Episode", "VI"},
		Tokenize("Who is the director of Star Wars: Episode VI"))
	assert.Equal(t, []string{"Shrek", "'s", "genre", "?"}, Tokenize("Shrek's genre?"))
	assert.Equal(t, []string{"(", "film", ")"}, Tokenize("(film)"))
}

func TestEverygrams(t *testing.T) {
	grams := Everygrams([]string{"a", "b", "c"}, 2)
	assert.Equal(t, []string{"a", "a b", "b", "b c", "c"}, grams)

	assert.Len(t, Everygrams([]string{"a", "b", "c"}, 5), 6)
	assert.Empty(t, Everygrams(nil, 5))
}

func TestSortLongestFirst(t *testing.T) {
	sorted := SortLongestFirst([]string{"ab", "abc", "cd", "ab", "x"})
	assert.Equal(t, []string{"abc", "ab", "cd", "x"}, sorted)
}

func TestParseJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	p, err := ParseJSON[payload]("```json\n{\"name\": \"Inception\"}\n```")
	assert.NoError(t, err)
	assert.Equal(t, "Inception", p.Name)

	p, err = ParseJSON[payload](`Here you go: {"name": "Shrek"} hope it helps`)
	assert.NoError(t, err)
	assert.Equal(t, "Shrek", p.Name)

	_, err = ParseJSON[payload]("no json here")
	assert.Error(t, err)

	_, err = ParseJSON[payload]("} {")
	assert.Error(t, err)
}
