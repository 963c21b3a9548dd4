// Package apperr defines the error taxonomy shared by services and the
// HTTP layer. Services tag failures with a Kind; handlers map kinds to
// status codes without inspecting message text.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind int

const (
	// Internal is the default for unexpected failures (storage, external
	// services). Detail is hidden outside development mode.
	Internal Kind = iota
	// Validation covers malformed, missing or out-of-range input.
	Validation
	// Unauthenticated covers missing/invalid/expired tokens and unknown
	// principals.
	Unauthenticated
	// Forbidden covers authenticated callers with the wrong role or no
	// ownership of the target.
	Forbidden
	// NotFound covers ids that resolve to nothing.
	NotFound
	// InvalidReference covers malformed id shapes.
	InvalidReference
	// Conflict covers uniqueness violations (duplicate email, duplicate
	// booking).
	Conflict
	// InvalidOperation covers requests that are well-formed but illegal
	// in the current state (self-booking, bad status target).
	InvalidOperation
)

// Error is a kind-tagged error with an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a kind-tagged error.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a kind-tagged error with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error with a kind and context message.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// ValidationMessages joins per-field validation messages into a single
// Validation error.
func ValidationMessages(msgs []string) error {
	return &Error{Kind: Validation, Message: strings.Join(msgs, ", ")}
}

// KindOf extracts the Kind from an error chain, defaulting to Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
