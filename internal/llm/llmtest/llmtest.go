// Package llmtest provides a scripted llm.Model for tests.
package llmtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sandeep066/aceInterview/internal/llm"
)

// Responder produces the raw model text for one call.
type Responder func(user string) (string, error)

// Reply always returns raw.
func Reply(raw string) Responder {
	return func(string) (string, error) { return raw, nil }
}

// Replies returns each raw string in turn, repeating the last one.
func Replies(raws ...string) Responder {
	var mu sync.Mutex
	i := 0
	return func(string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		raw := raws[i]
		if i < len(raws)-1 {
			i++
		}
		return raw, nil
	}
}

// Fail always returns err as a transport failure.
func Fail(err error) Responder {
	return func(string) (string, error) { return "", err }
}

// Call records one Invoke.
type Call struct {
	System string
	User   string
}

type route struct {
	marker    string
	responder Responder
}

// Model routes each call by a marker contained in the system prompt.
// Unrouted calls fail with a transport error.
type Model struct {
	mu     sync.Mutex
	routes []route
	calls  []Call
}

// New returns an empty model. Every call fails until routes are added.
func New() *Model {
	return &Model{}
}

// On routes calls whose system prompt contains marker to r.
func (m *Model) On(marker string, r Responder) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route{marker: marker, responder: r})
	return m
}

// Invoke implements llm.Model.
func (m *Model) Invoke(ctx context.Context, system, user string, out llm.Schema) error {
	m.mu.Lock()
	m.calls = append(m.calls, Call{System: system, User: user})
	var responder Responder
	for _, r := range m.routes {
		if strings.Contains(system, r.marker) {
			responder = r.responder
			break
		}
	}
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return &llm.CallError{Class: llm.ErrTimeout, Err: err}
	}
	if responder == nil {
		return &llm.CallError{Class: llm.ErrTransport, Err: errors.New("no scripted response")}
	}

	raw, err := responder(user)
	if err != nil {
		return &llm.CallError{Class: llm.ErrTransport, Err: err}
	}
	return llm.Decode(raw, out)
}

// Calls returns every call made so far.
func (m *Model) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of calls whose system prompt contains marker.
func (m *Model) CallCount(marker string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if strings.Contains(c.System, marker) {
			n++
		}
	}
	return n
}
