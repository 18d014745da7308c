package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/AlbeMasera/ATAI/internal/core/common"
	"github.com/AlbeMasera/ATAI/internal/core/model"
)

// LLMTagger asks a chat model for entity mentions and locates them in the
// text. Prompt is the system instruction; the text is sent as is.
type LLMTagger struct {
	LLM    LLMClient
	Prompt string
}

func NewLLMTagger(client LLMClient, prompt string) *LLMTagger {
	return &LLMTagger{LLM: client, Prompt: prompt}
}

type llmEntities struct {
	Entities []struct {
		Group string `json:"entity_group"`
		Word  string `json:"word"`
	} `json:"entities"`
}

func (t *LLMTagger) Tag(ctx context.Context, text string) ([]model.Span, error) {
	response, err := t.LLM.Complete(ctx, Completion{System: t.Prompt, Prompt: text, JSON: true})
	if err != nil {
		return nil, fmt.Errorf("failed to generate entities: %w", err)
	}

	result, err := common.ParseJSON[llmEntities](response)
	if err != nil {
		return nil, fmt.Errorf("failed to extract entities: %w", err)
	}

	runes := []rune(text)
	var spans []model.Span
	for _, e := range result.Entities {
		word := strings.TrimSpace(e.Word)
		if word == "" {
			continue
		}
		n := utf8.RuneCountInString(word)
		start := indexFold(runes, word, n)
		if start < 0 {
			continue
		}
		spans = append(spans, model.Span{
			Group: e.Group,
			Word:  word,
			Start: start,
			End:   start + n,
			Score: 1,
		})
	}
	return spans, nil
}

// indexFold returns the rune offset of the first case-insensitive occurrence
// of word (n runes long) in runes, or -1.
func indexFold(runes []rune, word string, n int) int {
	for i := 0; i+n <= len(runes); i++ {
		if strings.EqualFold(string(runes[i:i+n]), word) {
			return i
		}
	}
	return -1
}
