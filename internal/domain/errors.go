package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindNotFound      ErrorKind = "NOT_FOUND"
	KindConflict      ErrorKind = "CONFLICT"
	KindUnprocessable ErrorKind = "UNPROCESSABLE"
	KindInvalid       ErrorKind = "INVALID"
	KindUnauthorized  ErrorKind = "UNAUTHORIZED"
	KindForbidden     ErrorKind = "FORBIDDEN"
)

// Error is a failure the caller can act on. Anything that is not an *Error
// is treated as an infrastructure failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  []string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func Conflictf(format string, args ...any) error {
	return newError(KindConflict, format, args...)
}

func Unprocessablef(format string, args ...any) error {
	return newError(KindUnprocessable, format, args...)
}

func Invalidf(format string, args ...any) error {
	return newError(KindInvalid, format, args...)
}

func Unauthorizedf(format string, args ...any) error {
	return newError(KindUnauthorized, format, args...)
}

func Forbiddenf(format string, args ...any) error {
	return newError(KindForbidden, format, args...)
}

// WithFields attaches the offending field names to a Forbidden or Invalid error.
func WithFields(err error, fields []string) error {
	var de *Error
	if errors.As(err, &de) {
		return &Error{Kind: de.Kind, Message: de.Message, Fields: fields}
	}
	return err
}

func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
