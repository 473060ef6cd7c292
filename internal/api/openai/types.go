// Package openai provides request/response types and an HTTP client for the
// OpenAI Chat Completions API and OpenAI-compatible endpoints (Gemini, Groq).
package openai

import (
	"encoding/json"
	"fmt"
)

// ChatCompletionRequest represents an OpenAI chat completion request.
type ChatCompletionRequest struct {
	Model          string                  `json:"model"`
	Messages       []ChatCompletionMessage `json:"messages"`
	MaxTokens      int                     `json:"max_tokens,omitempty"`
	Temperature    *float32                `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat         `json:"response_format,omitempty"`
	User           string                  `json:"user,omitempty"`
}

// ChatCompletionMessage represents a message in the chat completion request/response.
type ChatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ResponseFormatJSONObject asks the model for a single JSON object.
var ResponseFormatJSONObject = &ResponseFormat{Type: "json_object"}

// ChatCompletionResponse represents an OpenAI chat completion response.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage,omitempty"`
}

// Choice represents a completion choice.
type Choice struct {
	Index        int                   `json:"index"`
	Message      ChatCompletionMessage `json:"message"`
	FinishReason string                `json:"finish_reason"`
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ErrorResponse represents an OpenAI API error.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// APIError contains error details. Gemini's compatibility layer sends the
// same envelope, sometimes with a numeric code.
type APIError struct {
	Message    string          `json:"message"`
	Type       string          `json:"type"`
	Param      *string         `json:"param,omitempty"`
	Code       json.RawMessage `json:"code,omitempty"`
	StatusCode int             `json:"-"`
	// RequestID is the upstream x-request-id, when the provider sends one.
	RequestID string `json:"-"`
}

func (e *APIError) Error() string {
	kind := e.Type
	if kind == "" {
		kind = "error"
	}
	if e.RequestID != "" {
		return fmt.Sprintf("openai %s (status %d, request %s): %s", kind, e.StatusCode, e.RequestID, e.Message)
	}
	return fmt.Sprintf("openai %s (status %d): %s", kind, e.StatusCode, e.Message)
}

// ParseErrorResponse attempts to parse an error response from JSON. Gemini
// wraps the envelope in a one-element array.
func ParseErrorResponse(data []byte) (*APIError, error) {
	var errResp ErrorResponse
	if err := json.Unmarshal(data, &errResp); err != nil {
		var wrapped []ErrorResponse
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil || len(wrapped) == 0 {
			return nil, err
		}
		errResp = wrapped[0]
	}
	if errResp.Error == nil {
		return nil, nil
	}
	return errResp.Error, nil
}
