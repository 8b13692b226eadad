package objects

import (
	"errors"
	"fmt"

	"cloud-storage/core/storage"
)

// Kind classifies a failure. Every error returned by Service is an *Error carrying one,
// and errors.Is(err, ErrNotFound) (or any other Kind) matches on it.
type Kind string

const (
	ErrConfig        Kind = "configuration"
	ErrArgument      Kind = "invalid argument"
	ErrNotFound      Kind = "not found"
	ErrTransport     Kind = "transport"
	ErrLocal         Kind = "local filesystem"
	ErrParse         Kind = "parse"
	ErrSerialization Kind = "serialization"
)

func (k Kind) Error() string { return string(k) }

// Error is the failure type returned by every Service operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind of err, or "" when err did not come from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(op string, kind Kind, err error) error {
	// Keep the innermost classification when an operation delegates to another one.
	var inner *Error
	if errors.As(err, &inner) {
		return &Error{Kind: inner.Kind, Op: op, Err: err}
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func argumentError(op, format string, args ...any) error {
	return &Error{Kind: ErrArgument, Op: op, Err: fmt.Errorf(format, args...)}
}

// storageError classifies an error coming back from a storage.Client call.
func storageError(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrObjectNotFound):
		return newError(op, ErrNotFound, err)
	case errors.Is(err, storage.ErrNotInitialized):
		return newError(op, ErrConfig, err)
	default:
		return newError(op, ErrTransport, err)
	}
}
