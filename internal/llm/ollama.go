package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// OllamaEncoder uses the native batch embedding endpoint (POST /api/embed).
type OllamaEncoder struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaEncoder(baseURL, model string) *OllamaEncoder {
	baseURL = strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/v1")
	return &OllamaEncoder{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (e *OllamaEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var resp ollamaEmbedResponse
	if err := postJSON(ctx, e.client, e.baseURL+"/api/embed", "", ollamaEmbedRequest{Model: e.model, Input: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	return resp.Embeddings, nil
}
