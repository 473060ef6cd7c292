package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sandeep066/aceInterview/internal/testutil"
)

func jsonQuestionRequest(model string) *ChatCompletionRequest {
	return &ChatCompletionRequest{
		Model: model,
		Messages: []ChatCompletionMessage{
			{Role: "system", Content: "Reply with a JSON object."},
			{Role: "user", Content: `Give one React interview question as {"question": string}.`},
		},
		MaxTokens:      256,
		ResponseFormat: ResponseFormatJSONObject,
	}
}

func TestClient_CreateChatCompletion(t *testing.T) {
	recorder, cleanup := testutil.NewVCRRecorder(t, "openai_chat_json")
	defer cleanup()

	c := NewClient(testutil.APIKey("OPENAI_API_KEY"), WithHTTPClient(testutil.VCRHTTPClient(recorder)))

	resp, err := c.CreateChatCompletion(context.Background(), jsonQuestionRequest("gpt-4o-mini"))
	if err != nil {
		t.Fatalf("CreateChatCompletion() error = %v", err)
	}

	if len(resp.Choices) == 0 {
		t.Fatal("Expected at least one choice")
	}
	if !strings.Contains(resp.Choices[0].Message.Content, `"question"`) {
		t.Errorf("Content = %q, want a JSON question object", resp.Choices[0].Message.Content)
	}
	if resp.Usage.TotalTokens == 0 {
		t.Error("Expected usage to be populated")
	}
}

func TestClient_GeminiCompatibleEndpoint(t *testing.T) {
	recorder, cleanup := testutil.NewVCRRecorder(t, "gemini_chat_json")
	defer cleanup()

	c := NewClient(testutil.APIKey("GEMINI_API_KEY"),
		WithBaseURL(GeminiBaseURL),
		WithHTTPClient(testutil.VCRHTTPClient(recorder)),
	)

	resp, err := c.CreateChatCompletion(context.Background(), jsonQuestionRequest("gemini-2.5-flash"))
	if err != nil {
		t.Fatalf("CreateChatCompletion() error = %v", err)
	}
	if got := resp.Choices[0].Message.Content; !strings.HasPrefix(got, "```json") {
		t.Errorf("Content = %q, want fenced JSON", got)
	}
}

func TestClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantAPIErr bool
		wantType   string
		wantInErr  string
	}{
		{
			name:       "openai envelope",
			status:     http.StatusTooManyRequests,
			body:       `{"error":{"message":"Rate limit reached","type":"rate_limit_error","code":"rate_limit_exceeded"}}`,
			wantAPIErr: true,
			wantType:   "rate_limit_error",
		},
		{
			name:       "gemini array envelope",
			status:     http.StatusBadRequest,
			body:       `[{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}]`,
			wantAPIErr: true,
		},
		{
			name:      "non json body",
			status:    http.StatusBadGateway,
			body:      `upstream connect error`,
			wantInErr: "status 502",
		},
		{
			name:      "oversized html body is truncated",
			status:    http.StatusServiceUnavailable,
			body:      "<html>" + strings.Repeat("x", 2*errorSnippetBytes) + "</html>",
			wantInErr: "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/chat/completions" {
					t.Errorf("path = %v, want /chat/completions", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
					t.Errorf("Authorization = %v, want Bearer test-key", got)
				}
				w.Header().Set("X-Request-Id", "req_123")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient("test-key", WithBaseURL(srv.URL+"/"))
			_, err := c.CreateChatCompletion(context.Background(), jsonQuestionRequest("gpt-4o-mini"))
			if err == nil {
				t.Fatal("CreateChatCompletion() error = nil, want error")
			}

			var apiErr *APIError
			if got := errors.As(err, &apiErr); got != tt.wantAPIErr {
				t.Fatalf("errors.As(*APIError) = %v, want %v (err = %v)", got, tt.wantAPIErr, err)
			}
			if !tt.wantAPIErr {
				if !strings.Contains(err.Error(), tt.wantInErr) {
					t.Errorf("error = %q, want it to contain %q", err, tt.wantInErr)
				}
				if len(err.Error()) > 2*errorSnippetBytes {
					t.Errorf("error length = %d, want body truncated", len(err.Error()))
				}
				return
			}
			if apiErr.RequestID != "req_123" {
				t.Errorf("RequestID = %v, want req_123", apiErr.RequestID)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %v, want %v", apiErr.StatusCode, tt.status)
			}
			if apiErr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", apiErr.Type, tt.wantType)
			}
		})
	}
}
