package llm

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/sandeep066/aceInterview/internal/api/anthropic"
	"github.com/sandeep066/aceInterview/internal/api/openai"
	"github.com/sandeep066/aceInterview/internal/pkg/config"
)

// ProviderFactory defines how to create a completer of a specific type.
type ProviderFactory struct {
	// Type is the provider identifier used in configuration
	// (e.g., "gemini", "openai", "groq", "anthropic").
	Type string

	Description string

	// DefaultModel is used when the configuration names no model.
	DefaultModel string

	Create func(cfg config.LLMConfig, httpClient *http.Client) (Completer, error)
}

// Registry holds the provider factories known to the process.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

// NewRegistry returns a registry with the built-in providers registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]ProviderFactory)}
	for _, f := range builtinFactories() {
		r.MustRegister(f)
	}
	return r
}

// Register adds a factory. It fails if the type is empty or taken.
func (r *Registry) Register(f ProviderFactory) error {
	if f.Type == "" {
		return fmt.Errorf("provider factory type cannot be empty")
	}
	if f.Create == nil {
		return fmt.Errorf("provider factory %q must have a Create function", f.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[f.Type]; exists {
		return fmt.Errorf("provider factory %q already registered", f.Type)
	}
	r.factories[f.Type] = f
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(f ProviderFactory) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Get returns the factory for a provider type, if registered.
func (r *Registry) Get(providerType string) (ProviderFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[providerType]
	return f, ok
}

// Types returns the registered provider types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// CreateCompleter builds the completer for cfg. A missing API key is not an
// error: the Unavailable completer is returned so the service still serves
// fallbacks.
func (r *Registry) CreateCompleter(cfg config.LLMConfig, httpClient *http.Client) (Completer, error) {
	f, ok := r.Get(cfg.Provider)
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %s (registered types: %v)", cfg.Provider, r.Types())
	}
	if cfg.APIKey == "" {
		return Unavailable{ProviderType: cfg.Provider}, nil
	}
	if cfg.Model == "" {
		cfg.Model = f.DefaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return f.Create(cfg, httpClient)
}

// NewModel builds the configured Client: completer, prompt budget and
// timeout in one place.
func (r *Registry) NewModel(cfg config.LLMConfig, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	completer, err := r.CreateCompleter(cfg, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create model provider: %w", err)
	}
	if _, ok := completer.(Unavailable); ok {
		logger.Warn("no API key configured, serving fallbacks only", slog.String("provider", cfg.Provider))
	}
	return NewClient(completer,
		WithTimeout(cfg.Timeout),
		WithPromptBudget(NewPromptBudget(cfg.MaxPromptTokens)),
		WithLogger(logger),
	), nil
}

func builtinFactories() []ProviderFactory {
	openAICompatible := func(providerType, baseURL string) func(config.LLMConfig, *http.Client) (Completer, error) {
		return func(cfg config.LLMConfig, httpClient *http.Client) (Completer, error) {
			url := cfg.BaseURL
			if url == "" {
				url = baseURL
			}
			client := openai.NewClient(cfg.APIKey,
				openai.WithBaseURL(url),
				openai.WithHTTPClient(httpClient),
			)
			return NewOpenAICompleter(providerType, cfg.Model, client, cfg.MaxOutputTokens, cfg.Temperature), nil
		}
	}

	return []ProviderFactory{
		{
			Type:         "gemini",
			Description:  "Google Gemini through its OpenAI-compatible endpoint",
			DefaultModel: "gemini-2.5-flash",
			Create:       openAICompatible("gemini", openai.GeminiBaseURL),
		},
		{
			Type:         "openai",
			Description:  "OpenAI Chat Completions API",
			DefaultModel: "gpt-4o-mini",
			Create:       openAICompatible("openai", ""),
		},
		{
			Type:         "groq",
			Description:  "Groq through its OpenAI-compatible endpoint",
			DefaultModel: "llama-3.1-8b-instant",
			Create:       openAICompatible("groq", openai.GroqBaseURL),
		},
		{
			Type:         "anthropic",
			Description:  "Anthropic Messages API",
			DefaultModel: "claude-3-5-haiku-latest",
			Create: func(cfg config.LLMConfig, httpClient *http.Client) (Completer, error) {
				client := anthropic.NewClient(cfg.APIKey,
					anthropic.WithBaseURL(cfg.BaseURL),
					anthropic.WithHTTPClient(httpClient),
				)
				return NewAnthropicCompleter(cfg.Model, client, cfg.MaxOutputTokens, cfg.Temperature), nil
			},
		},
	}
}
