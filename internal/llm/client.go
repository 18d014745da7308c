package llm

import (
	"context"

	"github.com/AlbeMasera/ATAI/internal/core/model"
)

// Completion is a single-turn chat request.
type Completion struct {
	System    string
	Prompt    string
	JSON      bool // reply must be one JSON object
	MaxTokens int
}

const defaultMaxTokens = 512

func (c Completion) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return defaultMaxTokens
}

type LLMClient interface {
	Complete(ctx context.Context, req Completion) (string, error)
}

// Encoder maps a batch of texts into one fixed-size vector per text.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Tagger runs named-entity tagging over text.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]model.Span, error)
}
