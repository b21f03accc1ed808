package model

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors so callers can react programmatically.
type Kind string

const (
	KindInvalidInput          Kind = "INVALID_INPUT"
	KindNotFound              Kind = "NOT_FOUND"
	KindTimeout               Kind = "TIMEOUT"
	KindInternalInconsistency Kind = "INTERNAL_INCONSISTENCY"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrTimeout               = errors.New("timeout")
	ErrInternalInconsistency = errors.New("internal inconsistency")
)

// Error carries the kind, the failing operation and the offending id if any.
type Error struct {
	Kind Kind
	Op   string
	ID   string
	Err  error
}

func NewError(kind Kind, op, id string, err error) *Error {
	return &Error{Kind: kind, Op: op, ID: id, Err: err}
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.sentinel())
	if e.ID != "" {
		msg += fmt.Sprintf(" (id %q)", e.ID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindNotFound:
		return ErrNotFound
	case KindTimeout:
		return ErrTimeout
	default:
		return ErrInternalInconsistency
	}
}

// KindOf returns the kind of err, or "" when err is not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
