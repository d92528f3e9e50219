// Package serrors defines the semantic error kinds reported by the
// subscription workflow and a wrapper that carries a kind, a message and an
// optional cause through errors.Is/errors.As.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is a marker interface implemented by all semantic error kinds created
// with NewKind.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind. Kinds are comparable sentinels.
func NewKind(name string) Kind { return kind{s: name} }

// Kinds reported by the subscription workflow.
var (
	// ErrStoreRead indicates a store document could not be read.
	ErrStoreRead = NewKind("STORE_READ")
	// ErrStoreParse indicates a store document is not a valid JSON object.
	ErrStoreParse = NewKind("STORE_PARSE")
	// ErrRecordNotFound indicates the requested ID is absent or its entry is malformed.
	ErrRecordNotFound = NewKind("RECORD_NOT_FOUND")
	// ErrDuplicateRecord indicates the ID or the domain/email combo is already confirmed.
	ErrDuplicateRecord = NewKind("DUPLICATE_RECORD")
	// ErrValidation indicates the domain validator rejected the domain.
	ErrValidation = NewKind("VALIDATION")
	// ErrStoreWrite indicates a store document could not be persisted.
	ErrStoreWrite = NewKind("STORE_WRITE")
	// ErrNotification indicates the subscriber email could not be sent.
	ErrNotification = NewKind("NOTIFICATION")
	// ErrBadRequest indicates the caller sent an unusable request.
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrInternal indicates an unexpected failure.
	ErrInternal = NewKind("INTERNAL")
)

// Error is a semantic error: a kind, an optional message and an optional
// wrapped cause. errors.Is and errors.As match both the kind and the cause.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With constructs a semantic error with a formatted message and no cause.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap constructs a semantic error wrapping cause with a formatted message.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly creates a semantic error carrying only the kind.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is matches target against the kind first, then the cause chain.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}

	return e.err != nil && errors.Is(e.err, target)
}

// As matches target against the kind first, then the cause chain.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}

	return e.err != nil && errors.As(e.err, target)
}

// Kind returns the kind sentinel, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message attached to this error.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause (may be nil).
func (e *Error) Cause() error { return e.err }

// KindOf returns the kind of the first semantic error in err's chain, or
// ErrInternal when err carries no kind. It returns nil for a nil error.
func KindOf(err error) Kind {
	if err == nil {
		return nil
	}

	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return ErrInternal
}
