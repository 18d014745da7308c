// Package extraction turns tagger output into the single entity mention a
// question is about.
package extraction

import (
	"context"
	"fmt"

	"github.com/AlbeMasera/ATAI/internal/core/common"
	"github.com/AlbeMasera/ATAI/internal/core/model"
	"github.com/AlbeMasera/ATAI/internal/llm"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

// MergedGroup tags a span built from several tagger fragments.
const MergedGroup = "MISC"

type Extractor struct {
	Tagger llm.Tagger
}

func NewExtractor(tagger llm.Tagger) *Extractor {
	return &Extractor{Tagger: tagger}
}

// ExtractSingle tags text and returns one entity. Several fragments are
// merged into one span, assuming the question names a single entity.
// Returns model.ErrNoEntityFound when the tagger finds nothing.
func (e *Extractor) ExtractSingle(ctx context.Context, text string, isQuestion bool) (model.NamedEntity, error) {
	text = common.AddSentenceEnding(text, isQuestion)

	spans, err := e.Tagger.Tag(ctx, text)
	if err != nil {
		return model.NamedEntity{}, fmt.Errorf("failed to tag entities: %w", err)
	}

	entities := Resolve(text, spans)
	if len(entities) == 0 {
		return model.NamedEntity{}, model.ErrNoEntityFound
	}

	entity := Merge(text, entities)
	logging.Ctx(ctx).Debug().
		Int("fragments", len(entities)).
		Str("group", entity.Group).
		Str("entity", entity.Text).
		Msg("entity extracted")
	return entity, nil
}

// Resolve attaches the text slice to every span, dropping spans whose
// offsets fall outside text.
func Resolve(text string, spans []model.Span) []model.NamedEntity {
	runes := []rune(text)
	entities := make([]model.NamedEntity, 0, len(spans))
	for _, s := range spans {
		if s.Start < 0 || s.End > len(runes) || s.Start >= s.End {
			continue
		}
		entities = append(entities, model.NamedEntity{
			Group: s.Group,
			Word:  s.Word,
			Start: s.Start,
			End:   s.End,
			Text:  string(runes[s.Start:s.End]),
			Score: s.Score,
		})
	}
	return entities
}

// Merge collapses entities into one covering the earliest start to the
// latest end. A single entity is returned unchanged.
func Merge(text string, entities []model.NamedEntity) model.NamedEntity {
	if len(entities) == 1 {
		return entities[0]
	}

	first, last := entities[0], entities[0]
	var score float32
	for _, e := range entities {
		if e.Start < first.Start {
			first = e
		}
		if e.End > last.End {
			last = e
		}
		score += e.Score
	}

	runes := []rune(text)
	return model.NamedEntity{
		Group: MergedGroup,
		Word:  first.Word + " -> " + last.Word,
		Start: first.Start,
		End:   last.End,
		Text:  string(runes[first.Start:last.End]),
		Score: score / float32(len(entities)),
	}
}
