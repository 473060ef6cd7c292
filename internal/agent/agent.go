// Package agent wraps single model calls behind typed contracts. Every
// agent returns a schema-valid value: when the model call fails for any
// reason the agent's deterministic fallback is served instead. Agents never
// return errors and never retry.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sandeep066/aceInterview/internal/llm"
)

// Source tells whether a result came from the model or a fallback.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// IsFallback reports whether the result was produced without the model.
func (s Source) IsFallback() bool {
	return s == SourceFallback
}

// Option configures an agent.
type Option func(*options)

type options struct {
	logger *slog.Logger
	intn   func(n int) int
}

// WithLogger sets the logger used for failure diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithIntn replaces the random source used to pick fallback questions.
func WithIntn(intn func(n int) int) Option {
	return func(o *options) {
		o.intn = intn
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger: slog.Default(),
		intn:   rand.IntN,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type base struct {
	name   string
	system string
	model  llm.Model
	logger *slog.Logger
}

// schemaPtr constrains execute to pointer types implementing llm.Schema.
type schemaPtr[T any] interface {
	*T
	llm.Schema
}

// execute runs one model call and falls back on any failure, including a
// panic inside the model boundary.
func execute[T any, PT schemaPtr[T]](ctx context.Context, b *base, user string, fallback func() T) (result T, source Source) {
	defer func() {
		if r := recover(); r != nil {
			b.fail(ctx, fmt.Errorf("panic in model call: %v", r))
			result, source = fallback(), SourceFallback
		}
	}()

	var out T
	if err := b.model.Invoke(ctx, b.system, user, PT(&out)); err != nil {
		b.fail(ctx, err)
		return fallback(), SourceFallback
	}
	return out, SourceModel
}

func (b *base) fail(ctx context.Context, err error) {
	class := llm.FailureClass(err)
	b.logger.DebugContext(ctx, "agent call failed",
		slog.String("agent", b.name),
		slog.String("failure_class", class),
		slog.String("error", err.Error()),
	)
	trace.SpanFromContext(ctx).AddEvent("agent.fallback", trace.WithAttributes(
		attribute.String("agent.name", b.name),
		attribute.String("agent.failure_class", class),
	))
}

// preparePrompt renders context and input as indented JSON sections. A
// marshal error is rendered in place of the section.
func preparePrompt(context, input any) string {
	return "Context: " + indentJSON(context) + "\n\nInput: " + indentJSON(input)
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%q", err.Error())
	}
	return string(data)
}

// memory holds the last context an agent saw. It is for introspection and
// never influences results.
type memory[C any] struct {
	mu   sync.Mutex
	last *C
}

func (m *memory[C]) remember(c C) {
	m.mu.Lock()
	m.last = &c
	m.mu.Unlock()
}

// Memory returns the last context recorded, if any.
func (m *memory[C]) Memory() (C, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		var zero C
		return zero, false
	}
	return *m.last, true
}

// ClearMemory forgets the last context.
func (m *memory[C]) ClearMemory() {
	m.mu.Lock()
	m.last = nil
	m.mu.Unlock()
}

// Set bundles the four agents an interview needs.
type Set struct {
	Topic    *TopicAgent
	Question *QuestionAgent
	Response *ResponseAgent
	Overall  *OverallAgent
}

// NewSet builds all four agents on one model.
func NewSet(model llm.Model, opts ...Option) *Set {
	return &Set{
		Topic:    NewTopicAgent(model, opts...),
		Question: NewQuestionAgent(model, opts...),
		Response: NewResponseAgent(model, opts...),
		Overall:  NewOverallAgent(model, opts...),
	}
}
