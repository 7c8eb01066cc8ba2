package utils

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// ChatCompletionClient drives any OpenAI-compatible chat API: OpenAI
// itself, or Groq through its compatibility endpoint.
type ChatCompletionClient struct {
	client *openai.Client
	model  string
}

func NewGroqCompletionClient(apiKey, model string) *ChatCompletionClient {
	if model == "" {
		model = defaultGroqModel
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = groqBaseURL
	return &ChatCompletionClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func NewOpenAICompletionClient(apiKey, model string) *ChatCompletionClient {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &ChatCompletionClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *ChatCompletionClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
