// Package llm is the model invocation boundary. A Model takes a system
// prompt, a user prompt and a typed output schema, and either fills the
// schema or fails with an error whose class (transport, timeout,
// validation) can be recovered with FailureClass.
package llm

import "context"

// Schema is implemented by every typed model output. Validate runs after
// decoding; a non-nil error fails the call.
type Schema interface {
	Validate() error
}

// Model invokes a language model and decodes its JSON answer into out.
type Model interface {
	Invoke(ctx context.Context, system, user string, out Schema) error
}

// Prompt is a single-turn request handed to a provider.
type Prompt struct {
	System string
	User   string
}

// Completer is a provider adapter returning the raw model text.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
	// Provider is the provider type, e.g. "openai".
	Provider() string
	// ModelName is the upstream model identifier.
	ModelName() string
}
