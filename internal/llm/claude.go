package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

// ClaudeClient serves the LLM tagger only. Anthropic has no embeddings API.
type ClaudeClient struct {
	api   *anthropic.Client
	model anthropic.Model
}

func NewClaudeClient(apiKey, model, baseURL string) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeClient{api: anthropic.NewClient(apiKey, opts...), model: anthropic.Model(model)}
}

// Complete has no JSON mode on this backend; the instruction in System is
// relied on instead.
func (c *ClaudeClient) Complete(ctx context.Context, req Completion) (string, error) {
	resp, err := c.api.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     c.model,
		System:    req.System,
		Messages:  []anthropic.Message{anthropic.NewUserTextMessage(req.Prompt)},
		MaxTokens: req.maxTokens(),
	})
	if err != nil {
		return "", fmt.Errorf("claude: %w", err)
	}

	var b strings.Builder
	for _, part := range resp.Content {
		if part.Text != nil {
			b.WriteString(*part.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("claude: empty reply (stop reason %q)", resp.StopReason)
	}
	return b.String(), nil
}
