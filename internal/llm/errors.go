package llm

import (
	"context"
	"errors"
	"net"
)

// Failure classes. Use errors.Is against these to tell them apart.
var (
	ErrTransport  = errors.New("model transport failure")
	ErrTimeout    = errors.New("model call timed out")
	ErrValidation = errors.New("model output failed validation")
)

// CallError is returned by Client.Invoke for every failure.
type CallError struct {
	// Class is one of ErrTransport, ErrTimeout or ErrValidation.
	Class error
	Err   error
}

func (e *CallError) Error() string {
	return e.Class.Error() + ": " + e.Err.Error()
}

// Unwrap exposes both the class sentinel and the cause.
func (e *CallError) Unwrap() []error {
	return []error{e.Class, e.Err}
}

func transportError(err error) error {
	if isTimeout(err) {
		return &CallError{Class: ErrTimeout, Err: err}
	}
	return &CallError{Class: ErrTransport, Err: err}
}

func validationError(err error) error {
	return &CallError{Class: ErrValidation, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// FailureClass names the class of a model failure for logs and spans.
func FailureClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrTimeout), isTimeout(err):
		return "timeout"
	default:
		return "transport"
	}
}
