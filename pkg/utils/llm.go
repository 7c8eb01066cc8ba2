package utils

import (
	"context"
	"fmt"
	"strings"
)

// CompletionClientInterface is the single surface the solving loop needs
// from a language model provider.
type CompletionClientInterface interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const (
	defaultGroqModel   = "mixtral-8x7b-32768"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultGeminiModel = "gemini-2.0-flash"

	completionMaxTokens   = 2048
	completionTemperature = 0.7
)

// NewCompletionClient builds a client for the configured provider.
func NewCompletionClient(provider, apiKey, model string) (CompletionClientInterface, error) {
	switch strings.ToLower(provider) {
	case "groq":
		return NewGroqCompletionClient(apiKey, model), nil
	case "openai":
		return NewOpenAICompletionClient(apiKey, model), nil
	case "gemini":
		return NewGeminiCompletionClient(apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported provider: %s. Use 'groq', 'openai' or 'gemini'", provider)
	}
}
