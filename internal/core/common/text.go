package common

import (
	"sort"
	"strings"
	"unicode/utf8"
)

var dashReplacer = strings.NewReplacer(" - ", " – ", " — ", " – ", " -- ", " – ")

// NormalizeDashes rewrites spaced hyphen and em dash variants to the en dash
// used by graph labels ("Episode VI - Return of the Jedi"). Hyphens inside
// words ("X-Men") are kept.
func NormalizeDashes(s string) string {
	return dashReplacer.Replace(s)
}

// RemoveSentEndings drops '.', '?' and ',' everywhere and trims the ends.
func RemoveSentEndings(s string) string {
	s = strings.NewReplacer(".", "", "?", "", ",", "").Replace(s)
	return strings.Trim(s, " \t")
}

// AddSentenceEnding terminates s with '?' or '.' unless it already ends with
// sentence punctuation.
func AddSentenceEnding(s string, isQuestion bool) string {
	if utf8.RuneCountInString(s) <= 1 {
		return s
	}
	s = strings.Trim(s, " \t")
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '?', '.', ',', '"', '!':
		return s
	}
	if isQuestion {
		return s + "?"
	}
	return s + "."
}

// LowerTrimEndings lowercases s after trimming whitespace and trailing punctuation.
func LowerTrimEndings(s string) string {
	return strings.ToLower(strings.Trim(s, " \t.?,!"))
}

const (
	leadingPunct  = `"'([{`
	trailingPunct = `"')]}:;!?.,`
)

// Tokenize splits s into words, peeling surrounding punctuation and
// possessive "'s" into their own tokens.
func Tokenize(s string) []string {
	var tokens []string
	for _, field := range strings.Fields(s) {
		var tail []string
		for len(field) > 0 && strings.ContainsRune(leadingPunct, rune(field[0])) {
			tokens = append(tokens, field[:1])
			field = field[1:]
		}
		for len(field) > 0 && strings.ContainsRune(trailingPunct, rune(field[len(field)-1])) {
			tail = append([]string{field[len(field)-1:]}, tail...)
			field = field[:len(field)-1]
		}
		if lower := strings.ToLower(field); len(field) > 2 && strings.HasSuffix(lower, "'s") {
			tail = append([]string{field[len(field)-2:]}, tail...)
			field = field[:len(field)-2]
		}
		if field != "" {
			tokens = append(tokens, field)
		}
		tokens = append(tokens, tail...)
	}
	return tokens
}

// Everygrams returns every contiguous n-gram of tokens with 1 <= n <= maxLen,
// ordered by start position and then by length.
func Everygrams(tokens []string, maxLen int) []string {
	if maxLen <= 0 || maxLen > len(tokens) {
		maxLen = len(tokens)
	}
	var grams []string
	for i := range tokens {
		for n := 1; n <= maxLen && i+n <= len(tokens); n++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

// SortLongestFirst orders phrases by character length, longest first,
// keeping the input order between equal lengths and dropping repeats.
func SortLongestFirst(phrases []string) []string {
	seen := make(map[string]struct{}, len(phrases))
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i]) > utf8.RuneCountInString(out[j])
	})
	return out
}
