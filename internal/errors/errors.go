// Package errors provides standardized domain errors with codes for the Bookworm API.
//
// Usage:
//
//	// In services - return typed errors
//	if exists {
//	    return errors.AlreadyExists("ISBN already in catalog")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrAlreadyExists) {
//	    response.Conflict(w, err.Error(), logger)
//	    return
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	// CodeInvalidISBN marks malformed ISBN input. The caller's fault; never retried.
	CodeInvalidISBN Code = "INVALID_ISBN"
	// CodeNotFound means the lookup service has no record for the ISBN.
	CodeNotFound Code = "NOT_FOUND"
	// CodeNetwork marks transient lookup failures (connectivity, timeout, 5xx).
	CodeNetwork Code = "NETWORK"
	// CodeAlreadyExists means the ISBN is already in the catalog, on either shelf.
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	// CodeNotInCatalog means an operation referenced an ISBN the store doesn't hold.
	CodeNotInCatalog Code = "NOT_IN_CATALOG"
	// CodeWrongShelf marks a read-flag change attempted on a Wishlist entry.
	CodeWrongShelf Code = "WRONG_SHELF"
	// CodePersistence marks an underlying storage write failure.
	CodePersistence Code = "PERSISTENCE"
	CodeValidation  Code = "VALIDATION"
	CodeInternal    Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeNotInCatalog:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeWrongShelf:
		return http.StatusConflict
	case CodeInvalidISBN, CodeValidation:
		return http.StatusBadRequest
	case CodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrInvalidISBN   = &Error{Code: CodeInvalidISBN, Message: "invalid ISBN"}
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrNetwork       = &Error{Code: CodeNetwork, Message: "lookup service unreachable"}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrNotInCatalog  = &Error{Code: CodeNotInCatalog, Message: "not in catalog"}
	ErrWrongShelf    = &Error{Code: CodeWrongShelf, Message: "wrong shelf"}
	ErrPersistence   = &Error{Code: CodePersistence, Message: "persistence failure"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// InvalidISBN creates an invalid ISBN error.
func InvalidISBN(msg string) *Error {
	return &Error{Code: CodeInvalidISBN, Message: msg}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Network creates a network error.
func Network(msg string) *Error {
	return &Error{Code: CodeNetwork, Message: msg}
}

// AlreadyExists creates an already exists error.
func AlreadyExists(msg string) *Error {
	return &Error{Code: CodeAlreadyExists, Message: msg}
}

// AlreadyExistsf creates an already exists error with formatted message.
func AlreadyExistsf(format string, args ...any) *Error {
	return &Error{Code: CodeAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// NotInCatalog creates a not-in-catalog error.
func NotInCatalog(msg string) *Error {
	return &Error{Code: CodeNotInCatalog, Message: msg}
}

// NotInCatalogf creates a not-in-catalog error with formatted message.
func NotInCatalogf(format string, args ...any) *Error {
	return &Error{Code: CodeNotInCatalog, Message: fmt.Sprintf(format, args...)}
}

// WrongShelf creates a wrong shelf error.
func WrongShelf(msg string) *Error {
	return &Error{Code: CodeWrongShelf, Message: msg}
}

// Persistence creates a persistence error.
func Persistence(msg string) *Error {
	return &Error{Code: CodePersistence, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
