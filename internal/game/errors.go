package game

import (
	"errors"
	"fmt"
)

// Kind classifies a failed Coordinator operation. The boundary layer maps
// each kind to a fixed response code.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindInvalidState      Kind = "invalid_state"
	KindConflict          Kind = "conflict"
	KindForbidden         Kind = "forbidden"
	KindResourceExhausted Kind = "resource_exhausted"
	KindInternal          Kind = "internal"
)

// Error is the only error type returned by Coordinator methods.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind carried by err, KindInternal for foreign errors
// and "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var gameErr *Error
	if errors.As(err, &gameErr) {
		return gameErr.Kind
	}
	return KindInternal
}

// PublicMessage is the text that may be shown to clients. Internal errors
// never expose the underlying storage error.
func PublicMessage(err error) string {
	var gameErr *Error
	if errors.As(err, &gameErr) && gameErr.Kind != KindInternal {
		return gameErr.Message
	}
	return "internal error"
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func internalError(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}
