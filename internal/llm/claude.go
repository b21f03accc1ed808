package llm

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

type ClaudeClient struct {
	client *anthropic.Client
	model  string
}

func NewClaudeClient(apiKey string, model string, baseURL string) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeClient{
		client: anthropic.NewClient(apiKey, opts...),
		model:  orDefault(model, DefaultClaudeModel),
	}
}

// Generate concatenates every text block of the reply.
func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:  anthropic.Model(c.model),
		System: SystemPrompt,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
		MaxTokens: MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("claude completion (%s): %w", c.model, err)
	}

	parts := make([]string, 0, len(resp.Content))
	for _, block := range resp.Content {
		if block.Text != nil {
			parts = append(parts, *block.Text)
		}
	}
	return text(parts)
}
