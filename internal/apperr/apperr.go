// Package apperr defines the closed set of failure kinds returned by the teamhub
// services. Transport maps each kind to a status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure. The zero value is not a valid kind.
type Kind uint8

const (
	NotFound   Kind = iota + 1 // entity absent
	Forbidden                  // entity exists but the caller's tenant or role lacks permission
	BadRequest                 // structurally invalid request or disallowed transition
	Validation                 // value fails an enum or format check
	Conflict                   // uniqueness violation
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NOT_FOUND"
	case Forbidden:
		return "FORBIDDEN"
	case BadRequest:
		return "BAD_REQUEST"
	case Validation:
		return "VALIDATION_ERROR"
	case Conflict:
		return "CONFLICT"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is a classified failure with a human-readable message.
//
// Op optionally names the operation that failed, and Err the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Op   string
	Err  error
}

// Error implements the error interface by writing out the recursive messages.
func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return fmt.Sprintf("<%s>", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error   { return newf(NotFound, format, args...) }
func Forbiddenf(format string, args ...any) *Error  { return newf(Forbidden, format, args...) }
func BadRequestf(format string, args ...any) *Error { return newf(BadRequest, format, args...) }
func Validationf(format string, args ...any) *Error { return newf(Validation, format, args...) }
func Conflictf(format string, args ...any) *Error   { return newf(Conflict, format, args...) }

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind != 0 {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err carries kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Message returns the user facing message for err, hiding unclassified causes.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != 0 {
		if e.Msg != "" {
			return e.Msg
		}
		return e.Error()
	}
	return "Internal server error"
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case BadRequest, Validation:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
