// Package apperr defines the error kinds shared by the marketplace services.
// Handlers map a Kind to an HTTP status; services build errors with the
// constructors below so the mapping stays in one place.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindPermission
	KindUnauthenticated
	KindStateConflict
	KindInUse
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindStateConflict:
		return "state_conflict"
	case KindInUse:
		return "in_use"
	default:
		return "internal"
	}
}

// Error carries a human-readable message and, for validation failures,
// per-field messages keyed by the request field path.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string, fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Permission(msg string) *Error {
	return &Error{Kind: KindPermission, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func StateConflict(msg string) *Error {
	return &Error{Kind: KindStateConflict, Message: msg}
}

func InUse(msg string) *Error {
	return &Error{Kind: KindInUse, Message: msg}
}

// KindOf reports the kind of err, KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// FieldErrors accumulates per-field validation messages.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Err returns a validation error when any field failed, nil otherwise.
func (f FieldErrors) Err(msg string) error {
	if len(f) == 0 {
		return nil
	}
	return Validation(msg, f)
}
