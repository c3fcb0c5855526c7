package model

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes the phase of an ingestion cycle that failed.
type ErrorKind string

const (
	ErrMalformedInput ErrorKind = "MALFORMED_INPUT"
	ErrClassification ErrorKind = "CLASSIFICATION_FAILED"
	ErrEvaluation     ErrorKind = "EVALUATION_FAILED"
	ErrGeneration     ErrorKind = "GENERATION_FAILED"
	ErrPersistence    ErrorKind = "PERSISTENCE_FAILED"
	ErrNotFound       ErrorKind = "NOT_FOUND"
	ErrUnauthorized   ErrorKind = "UNAUTHENTICATED"
	ErrInternal       ErrorKind = "INTERNAL"
)

// Error is a structured failure carrying the kind of phase that produced it.
type Error struct {
	Kind    ErrorKind
	Op      string // e.g. "statement.Parse" or "ingest.Classify"
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// NewError builds an *Error.
func NewError(kind ErrorKind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Cause: cause}
}

// Errorf builds an *Error without a cause.
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or ErrInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
