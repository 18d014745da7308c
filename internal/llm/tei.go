package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// TEIEncoder calls a text-embeddings-inference server (POST /embed).
type TEIEncoder struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewTEIEncoder(baseURL, apiKey string) *TEIEncoder {
	return &TEIEncoder{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

type teiRequest struct {
	Inputs    []string `json:"inputs"`
	Normalize bool     `json:"normalize"`
}

func (e *TEIEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var out [][]float32
	if err := postJSON(ctx, e.client, e.baseURL+"/embed", e.apiKey, teiRequest{Inputs: texts, Normalize: true}, &out); err != nil {
		return nil, err
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(out))
	}
	return out, nil
}
