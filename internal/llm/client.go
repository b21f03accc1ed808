package llm

import (
	"context"
	"errors"
	"strings"
)

// LLMClient generates a completion for a single prompt.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("llm returned no text")

// SystemPrompt frames every request; the user prompts ask for JSON.
const SystemPrompt = "You analyze professional contact networks. Answer with compact JSON only, without prose or code fences."

// MaxTokens bounds every completion. Filters and community names are short.
const MaxTokens = 512

// Default models per provider, used when the config leaves the model empty.
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultClaudeModel = "claude-3-5-haiku-latest"
	DefaultGeminiModel = "gemini-1.5-flash"
	DefaultOllamaModel = "llama3.1"
)

func orDefault(model, fallback string) string {
	if strings.TrimSpace(model) == "" {
		return fallback
	}
	return model
}

func text(parts []string) (string, error) {
	out := strings.TrimSpace(strings.Join(parts, ""))
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
