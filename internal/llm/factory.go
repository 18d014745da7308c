package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlbeMasera/ATAI/internal/config"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

// NewClient builds the chat model used by the LLM tagger.
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, cfg.BaseURL), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel)

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "ollama":
		baseURL := ollamaOpenAIURL(cfg.BaseURL)
		logging.Info().Str("base_url", baseURL).Msg("using Ollama through its OpenAI-compatible API")
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, cfg.Model, cfg.EmbeddingModel, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

// NewEncoder builds the sentence encoder, wrapped with a cache and a breaker.
func NewEncoder(ctx context.Context, cfg config.ModelConfig, llmCfg config.LLMConfig) (Encoder, error) {
	var base Encoder
	switch strings.ToLower(cfg.Provider) {
	case "tei":
		base = NewTEIEncoder(cfg.BaseURL, cfg.APIKey)
	case "openai":
		base = NewOpenAIClient(firstNonEmpty(cfg.APIKey, llmCfg.APIKey), llmCfg.Model, firstNonEmpty(cfg.Model, llmCfg.EmbeddingModel), firstNonEmpty(cfg.BaseURL, llmCfg.BaseURL))
	case "gemini":
		c, err := NewGeminiClient(ctx, firstNonEmpty(cfg.APIKey, llmCfg.APIKey), llmCfg.Model, firstNonEmpty(cfg.Model, llmCfg.EmbeddingModel))
		if err != nil {
			return nil, err
		}
		base = c
	case "ollama":
		base = NewOllamaEncoder(firstNonEmpty(cfg.BaseURL, llmCfg.BaseURL), firstNonEmpty(cfg.Model, llmCfg.EmbeddingModel))
	default:
		return nil, fmt.Errorf("unsupported encoder provider: %s", cfg.Provider)
	}

	cached, err := NewCachedEncoder(NewGuardedEncoder(base, cfg.Timeout()), cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

// NewTagger builds the sequence tagger, wrapped with a breaker.
func NewTagger(ctx context.Context, cfg config.ModelConfig, llmCfg config.LLMConfig, prompt string) (Tagger, error) {
	var base Tagger
	switch strings.ToLower(cfg.Provider) {
	case "huggingface", "hf":
		base = NewHFTagger(cfg.BaseURL, cfg.APIKey)
	case "llm":
		client, err := NewClient(ctx, llmCfg)
		if err != nil {
			return nil, err
		}
		base = NewLLMTagger(client, prompt)
	default:
		return nil, fmt.Errorf("unsupported tagger provider: %s", cfg.Provider)
	}
	return NewGuardedTagger(base, cfg.Timeout()), nil
}

func ollamaOpenAIURL(baseURL string) string {
	if strings.HasSuffix(baseURL, "/v1") {
		return baseURL
	}
	return fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
