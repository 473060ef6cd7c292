package llm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// Chat framing overhead per message (role + separators), plus assistant priming.
const (
	tokensPerMessage = 4
	tokensPriming    = 3
)

// PromptBudget estimates prompt size with tiktoken and rejects prompts
// larger than the configured limit. Non-OpenAI models are estimated with
// o200k_base, which is close enough for a guard rail.
type PromptBudget struct {
	maxTokens int

	mu     sync.RWMutex
	codecs map[tokenizer.Encoding]tokenizer.Codec
}

// NewPromptBudget returns a budget that allows at most maxTokens prompt
// tokens. Zero or negative disables the limit but still counts.
func NewPromptBudget(maxTokens int) *PromptBudget {
	return &PromptBudget{
		maxTokens: maxTokens,
		codecs:    make(map[tokenizer.Encoding]tokenizer.Codec),
	}
}

// Count returns the estimated prompt token count for model.
func (b *PromptBudget) Count(model string, p Prompt) (int, error) {
	codec, err := b.codec(encodingFor(model))
	if err != nil {
		return 0, err
	}

	total := tokensPriming
	for _, text := range []string{p.System, p.User} {
		if text == "" {
			continue
		}
		ids, _, err := codec.Encode(text)
		if err != nil {
			return 0, fmt.Errorf("failed to encode prompt: %w", err)
		}
		total += tokensPerMessage + len(ids)
	}
	return total, nil
}

// Check counts the prompt and fails when it exceeds the budget.
func (b *PromptBudget) Check(model string, p Prompt) (int, error) {
	n, err := b.Count(model, p)
	if err != nil {
		return 0, err
	}
	if b.maxTokens > 0 && n > b.maxTokens {
		return n, fmt.Errorf("prompt has %d tokens, budget is %d", n, b.maxTokens)
	}
	return n, nil
}

func (b *PromptBudget) codec(enc tokenizer.Encoding) (tokenizer.Codec, error) {
	b.mu.RLock()
	if cached, ok := b.codecs[enc]; ok {
		b.mu.RUnlock()
		return cached, nil
	}
	b.mu.RUnlock()

	codec, err := tokenizer.Get(enc)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokenizer encoding: %w", err)
	}

	b.mu.Lock()
	b.codecs[enc] = codec
	b.mu.Unlock()

	return codec, nil
}

func encodingFor(model string) tokenizer.Encoding {
	model = strings.ToLower(model)
	switch {
	case strings.HasPrefix(model, "gpt-4o"), strings.HasPrefix(model, "gpt-4.1"), strings.HasPrefix(model, "gpt-5"),
		strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"), strings.HasPrefix(model, "o4"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "gpt-4"), strings.HasPrefix(model, "gpt-3.5"):
		return tokenizer.Cl100kBase
	default:
		return tokenizer.O200kBase
	}
}
