// Package reasoner talks to the external text-generation service. Responses
// are untrusted text; callers decode them with DecodeArray or DecodeObject.
package reasoner

import (
	"context"
	"errors"
	"fmt"
)

// Reasoner returns a completion for a prompt.
type Reasoner interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function into a Reasoner.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ErrEmptyResponse is returned when the service answers without any text.
var ErrEmptyResponse = errors.New("empty completion")

// RequestError is a non-200 answer from the service.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("reasoner request failed: status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the failure is transient (rate limited or a
// server-side error).
func (e *RequestError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
