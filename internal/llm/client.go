package llm

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/sandeep066/aceInterview/internal/llm"

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every model call. This is the only timeout applied to
// model traffic; on expiry the call fails with ErrTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithPromptBudget rejects prompts above the budget before any network call.
func WithPromptBudget(b *PromptBudget) Option {
	return func(c *Client) {
		c.budget = b
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client adapts a provider Completer to the Model contract: one call, no
// retry, typed decode and validation.
type Client struct {
	completer Completer
	budget    *PromptBudget
	timeout   time.Duration
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewClient wraps a completer.
func NewClient(completer Completer, opts ...Option) *Client {
	c := &Client{
		completer: completer,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider type of the wrapped completer.
func (c *Client) Provider() string {
	return c.completer.Provider()
}

// ModelName returns the upstream model identifier.
func (c *Client) ModelName() string {
	return c.completer.ModelName()
}

// Invoke implements Model.
func (c *Client) Invoke(ctx context.Context, system, user string, out Schema) (err error) {
	ctx, span := c.tracer.Start(ctx, "llm.invoke", trace.WithAttributes(
		attribute.String("llm.provider", c.completer.Provider()),
		attribute.String("llm.model", c.completer.ModelName()),
	))
	defer func() {
		if err != nil {
			span.SetAttributes(attribute.String("llm.failure_class", FailureClass(err)))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	p := Prompt{System: system, User: user}

	if c.budget != nil {
		n, berr := c.budget.Check(c.completer.ModelName(), p)
		if berr != nil && n > 0 {
			return validationError(berr)
		}
		if berr != nil {
			// Tokenizer unavailable, not a reason to skip the call
			c.logger.DebugContext(ctx, "prompt budget unavailable", slog.String("error", berr.Error()))
		}
		span.SetAttributes(attribute.Int("llm.prompt_tokens", n))
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := c.completer.Complete(ctx, p)
	span.SetAttributes(attribute.Int64("llm.latency_ms", time.Since(start).Milliseconds()))
	if err != nil {
		return transportError(err)
	}

	return Decode(raw, out)
}
