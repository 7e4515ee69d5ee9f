package core

import (
	"errors"
)

// Kind classifies why a pipeline failed so callers can react without
// parsing messages.
type Kind string

const (
	KindInput       Kind = "input"
	KindModel       Kind = "model"
	KindPersistence Kind = "persistence"
	KindConfig      Kind = "config"
)

var (
	ErrNoContent     = errors.New("no content generated")
	ErrInvalidFormat = errors.New("invalid JSON format from model")
)

// Error is the tagged failure returned by every pipeline. Message is safe to
// show to end users; Err keeps the underlying cause for errors.Is/As.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf returns the Kind carried by err, or "" when err is not a pipeline error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
