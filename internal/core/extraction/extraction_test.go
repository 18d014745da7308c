package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlbeMasera/ATAI/internal/core/model"
)

type MockTagger struct {
	Spans []model.Span
	Err   error
	Seen  string
}

func (m *MockTagger) Tag(ctx context.Context, text string) ([]model.Span, error) {
	m.Seen = text
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Spans, nil
}

func TestExtractSingleOneSpan(t *testing.T) {
	tagger := &MockTagger{Spans: []model.Span{
		{Group: "MISC", Word: "inception", Start: 13, End: 22, Score: 0.98},
	}}
	e := NewExtractor(tagger)

	entity, err := e.ExtractSingle(context.Background(), "Who directed Inception", true)
	require.NoError(t, err)
	assert.Equal(t, "Who directed Inception?", tagger.Seen)
	assert.Equal(t, "Inception", entity.Text)
	assert.Equal(t, "MISC", entity.Group)
}

// The tagger splits "The Lord of the Rings" into fragments.
func TestExtractSingleMergesFragments(t *testing.T) {
	text := "Who is the director of The Lord of the Rings?"
	tagger := &MockTagger{Spans: []model.Span{
		{Group: "MISC", Word: "lord", Start: 27, End: 31, Score: 0.8},
		{Group: "MISC", Word: "the", Start: 23, End: 26, Score: 0.6},
		{Group: "MISC", Word: "rings", Start: 39, End: 44, Score: 0.7},
	}}
	e := NewExtractor(tagger)

	entity, err := e.ExtractSingle(context.Background(), text, true)
	require.NoError(t, err)
	assert.Equal(t, 23, entity.Start)
	assert.Equal(t, 44, entity.End)
	assert.Equal(t, "The Lord of the Rings", entity.Text)
	assert.Equal(t, MergedGroup, entity.Group)
	assert.Equal(t, "the -> rings", entity.Word)
}

func TestExtractSingleNoSpans(t *testing.T) {
	e := NewExtractor(&MockTagger{})
	_, err := e.ExtractSingle(context.Background(), "hello there", false)
	assert.True(t, errors.Is(err, model.ErrNoEntityFound))
}

func TestExtractSingleTaggerError(t *testing.T) {
	e := NewExtractor(&MockTagger{Err: model.ErrUpstreamModel})
	_, err := e.ExtractSingle(context.Background(), "Who directed Inception?", true)
	assert.True(t, errors.Is(err, model.ErrUpstreamModel))
	assert.False(t, errors.Is(err, model.ErrNoEntityFound))
}

func TestMergeSingleIsIdentity(t *testing.T) {
	in := model.NamedEntity{Group: "PER", Word: "halle berry", Start: 3, End: 14, Text: "Halle Berry", Score: 0.9}
	assert.Equal(t, in, Merge("Is Halle Berry an actress?", []model.NamedEntity{in}))
}

func TestMergeCoversBounds(t *testing.T) {
	text := "Star Wars: Episode VI – Return of the Jedi"
	got := Merge(text, []model.NamedEntity{
		{Word: "Return", Start: 24, End: 30, Score: 1},
		{Word: "Star", Start: 0, End: 4, Score: 0.5},
	})
	assert.Equal(t, 0, got.Start)
	assert.Equal(t, 30, got.End)
	assert.Equal(t, "Star Wars: Episode VI – Return", got.Text)
	assert.InDelta(t, 0.75, got.Score, 1e-6)
}

func TestResolveDropsOutOfRangeSpans(t *testing.T) {
	got := Resolve("Shrek?", []model.Span{
		{Word: "shrek", Start: 0, End: 5},
		{Word: "bogus", Start: 4, End: 40},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "Shrek", got[0].Text)
}
