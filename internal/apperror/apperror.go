// Package apperror defines the error kinds shared by the services and the
// HTTP surface. Handlers pick a status code from the kind alone.
package apperror

import (
	"errors"
	"fmt"
)

// Kind tags an error with the class of failure it represents.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Issue is a single field-level validation problem.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is a result-or-error value carrying an explicit kind.
type Error struct {
	Kind    Kind
	Message string
	Issues  []Issue
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case len(e.Issues) > 0:
		return fmt.Sprintf("%s: %s %s", e.Message, e.Issues[0].Path, e.Issues[0].Message)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(message string, issues ...Issue) *Error {
	return &Error{Kind: KindValidation, Message: message, Issues: issues}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf classifies err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}
