package llm

import (
	"context"
	"net/http"

	"github.com/AlbeMasera/ATAI/internal/core/model"
)

// HFTagger calls a HuggingFace token-classification endpoint with
// span aggregation, e.g. dslim/bert-base-NER-uncased.
type HFTagger struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHFTagger(url, apiKey string) *HFTagger {
	return &HFTagger{url: url, apiKey: apiKey, client: &http.Client{}}
}

type hfRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

func (t *HFTagger) Tag(ctx context.Context, text string) ([]model.Span, error) {
	var spans []model.Span
	req := hfRequest{
		Inputs:     text,
		Parameters: map[string]any{"aggregation_strategy": "average"},
	}
	if err := postJSON(ctx, t.client, t.url, t.apiKey, req, &spans); err != nil {
		return nil, err
	}
	return spans, nil
}
