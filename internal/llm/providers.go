package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandeep066/aceInterview/internal/api/anthropic"
	"github.com/sandeep066/aceInterview/internal/api/openai"
)

// OpenAICompleter talks to the Chat Completions API or any compatible
// endpoint (Gemini, Groq) in JSON mode.
type OpenAICompleter struct {
	client       *openai.Client
	providerType string
	model        string
	maxTokens    int
	temperature  *float32
}

// NewOpenAICompleter creates a completer for an OpenAI-compatible endpoint.
func NewOpenAICompleter(providerType, model string, client *openai.Client, maxTokens int, temperature float64) *OpenAICompleter {
	t := float32(temperature)
	return &OpenAICompleter{
		client:       client,
		providerType: providerType,
		model:        model,
		maxTokens:    maxTokens,
		temperature:  &t,
	}
}

func (c *OpenAICompleter) Provider() string  { return c.providerType }
func (c *OpenAICompleter) ModelName() string { return c.model }

// Complete implements Completer.
func (c *OpenAICompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	req := &openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
		MaxTokens:      c.maxTokens,
		Temperature:    c.temperature,
		ResponseFormat: openai.ResponseFormatJSONObject,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", c.providerType)
	}
	return resp.Choices[0].Message.Content, nil
}

// AnthropicCompleter talks to the Messages API.
type AnthropicCompleter struct {
	client      *anthropic.Client
	model       string
	maxTokens   int
	temperature *float64
}

// NewAnthropicCompleter creates a completer for Anthropic models.
func NewAnthropicCompleter(model string, client *anthropic.Client, maxTokens int, temperature float64) *AnthropicCompleter {
	return &AnthropicCompleter{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: &temperature,
	}
}

func (c *AnthropicCompleter) Provider() string  { return "anthropic" }
func (c *AnthropicCompleter) ModelName() string { return c.model }

// Complete implements Completer. The system prompt is extended with a JSON
// instruction since the Messages API has no JSON mode.
func (c *AnthropicCompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	resp, err := c.client.CreateMessage(ctx, &anthropic.MessagesRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		System:      p.System + "\n\nRespond with a single JSON object and nothing else.",
		Messages:    []anthropic.Message{{Role: "user", Content: p.User}},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// ErrNotConfigured is returned by Unavailable.
var ErrNotConfigured = errors.New("no model provider configured")

// Unavailable is the completer used when no API key is configured. Every
// call fails, so every agent serves its fallback.
type Unavailable struct {
	ProviderType string
}

func (u Unavailable) Provider() string  { return u.ProviderType }
func (u Unavailable) ModelName() string { return "none" }

// Complete always fails with ErrNotConfigured.
func (u Unavailable) Complete(context.Context, Prompt) (string, error) {
	return "", ErrNotConfigured
}
