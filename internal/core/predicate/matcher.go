// Package predicate maps free text onto a fixed label catalogue by n-gram
// embedding similarity. The same matcher serves the predicate catalogue and
// the crowd entity catalogue.
package predicate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"

	"github.com/AlbeMasera/ATAI/internal/core/common"
	"github.com/AlbeMasera/ATAI/internal/core/model"
	"github.com/AlbeMasera/ATAI/internal/core/vector"
	"github.com/AlbeMasera/ATAI/internal/llm"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

const (
	DefaultThreshold      = 0.75
	DefaultCrowdThreshold = 0.9
	DefaultMaxNgram       = 5
)

type Options struct {
	Threshold float32
	MaxNgram  int
	Stemming  bool
	Replace   ReplaceTable
}

type Matcher struct {
	name      string
	encoder   llm.Encoder
	catalogue *Catalogue
	opts      Options
}

func NewMatcher(name string, encoder llm.Encoder, catalogue *Catalogue, opts Options) *Matcher {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.MaxNgram <= 0 {
		opts.MaxNgram = DefaultMaxNgram
	}
	return &Matcher{name: name, encoder: encoder, catalogue: catalogue, opts: opts}
}

// Candidates returns the n-grams of query that are compared against the
// catalogue, longest first.
func (m *Matcher) Candidates(query string) []string {
	tokens := common.Tokenize(common.RemoveSentEndings(query))
	grams := common.Everygrams(tokens, m.opts.MaxNgram)
	if m.opts.Stemming {
		stemmed := make([]string, len(tokens))
		for i, t := range tokens {
			stemmed[i] = english.Stem(t, false)
		}
		grams = append(grams, common.Everygrams(stemmed, m.opts.MaxNgram)...)
	}
	return common.SortLongestFirst(grams)
}

// Match returns the first candidate, longest first, whose nearest catalogue
// row scores at least the threshold. model.ErrNoPredicateMatch when none does.
func (m *Matcher) Match(ctx context.Context, query string) (model.CatalogueMatch, error) {
	candidates := m.Candidates(query)
	if len(candidates) == 0 {
		return model.CatalogueMatch{}, model.ErrNoPredicateMatch
	}

	vecs, err := m.encoder.Encode(ctx, candidates)
	if err != nil {
		return model.CatalogueMatch{}, fmt.Errorf("failed to encode candidates: %w", err)
	}

	for i, v := range vecs {
		idx, score := vector.Nearest(v, m.catalogue.Vectors)
		if idx < 0 || score < m.opts.Threshold {
			continue
		}
		entry := m.catalogue.Entries[idx]
		logging.Ctx(ctx).Debug().
			Str("catalogue", m.name).
			Str("phrase", candidates[i]).
			Str("label", entry.Canonical).
			Float32("score", score).
			Msg("catalogue match")

		rewritten := m.rewrite(ctx, query, entry, candidates[i], m.catalogue.Vectors[idx])
		return model.CatalogueMatch{
			Label:  entry.Canonical,
			Found:  entry.Label,
			Phrase: candidates[i],
			Score:  score,
			IRI:    entry.IRI,
			Query:  rewritten,
		}, nil
	}
	return model.CatalogueMatch{}, model.ErrNoPredicateMatch
}

// rewrite puts the canonical label, or its replace-table text, in place of
// the matched phrase. Only the phrase itself is touched so entity names that
// happen to contain the same word survive.
func (m *Matcher) rewrite(ctx context.Context, query string, entry Entry, phrase string, target []float32) string {
	lo, hi := 0, len(query)
	if s, e, ok := findWords(query, strings.Fields(phrase), lo, hi, true); ok {
		lo, hi = s, e
	}

	query, s, e := m.canonicalize(ctx, query, entry.Canonical, phrase, lo, hi, target)
	if fixed, ok := m.opts.Replace[entry.Canonical]; ok && s >= 0 {
		query = query[:s] + fixed + query[e:]
	}
	return query
}

// canonicalize replaces the part of phrase closest to the matched row, and the
// rest of that word, with the canonical label. It returns the rewritten query
// and the byte span of the label in it, or -1 when the label could not be
// placed.
func (m *Matcher) canonicalize(ctx context.Context, query, canonical, phrase string, lo, hi int, target []float32) (string, int, int) {
	if strings.Contains(query, canonical) {
		words := strings.Fields(canonical)
		if s, e, ok := findWords(query, words, lo, hi, false); ok {
			return query, s, e
		}
		if s, e, ok := findWords(query, words, 0, len(query), false); ok {
			return query, s, e
		}
		return query, -1, -1
	}

	tokens := strings.Fields(phrase)
	subs := common.Everygrams(tokens, len(tokens))
	if len(subs) == 0 {
		return query, -1, -1
	}

	best := subs[0]
	if len(subs) > 1 {
		vecs, err := m.encoder.Encode(ctx, subs)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("catalogue", m.name).Msg("keeping query unchanged")
			return query, -1, -1
		}
		bestScore := float32(-2)
		for i, v := range vecs {
			if s := vector.Dot(vector.Normalize(v), target); s > bestScore {
				best, bestScore = subs[i], s
			}
		}
	}

	s, e, ok := findWords(query, strings.Fields(best), lo, hi, true)
	if !ok {
		return query, -1, -1
	}
	return query[:s] + canonical + query[e:], s, s + len(canonical)
}

// findWords locates words as whole words in query[lo:hi], matching case
// first and ignoring it second. With suffix, each word may run on to the
// end of the word in the query ("direct" matches "directed").
func findWords(query string, words []string, lo, hi int, suffix bool) (int, int, bool) {
	if len(words) == 0 || lo >= hi {
		return 0, 0, false
	}

	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			b.WriteString(`\W*`)
		}
		if isWordByte(w[0]) {
			b.WriteString(`\b`)
		}
		b.WriteString(regexp.QuoteMeta(w))
		switch {
		case suffix:
			b.WriteString(`\w*`)
		case isWordByte(w[len(w)-1]):
			b.WriteString(`\b`)
		}
	}
	pattern := b.String()

	for _, prefix := range []string{"", "(?i)"} {
		re, err := regexp.Compile(prefix + pattern)
		if err != nil {
			return 0, 0, false
		}
		if loc := re.FindStringIndex(query[lo:hi]); loc != nil {
			return lo + loc[0], lo + loc[1], true
		}
	}
	return 0, 0, false
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
