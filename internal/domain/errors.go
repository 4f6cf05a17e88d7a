package domain

import (
	"errors"
	"net/http"
)

// ErrorCode classifies an AppError.
type ErrorCode int

// Error codes for business logic errors.
const (
	CodeNotFound ErrorCode = iota + 1
	CodeAlreadyExists
	CodeValidation
	CodeInternal
	CodeUnauthorized
	CodeForbidden
)

var codeInfo = map[ErrorCode]struct {
	name   string
	status int
}{
	CodeNotFound:      {"not_found", http.StatusNotFound},
	CodeAlreadyExists: {"already_exists", http.StatusConflict},
	CodeValidation:    {"validation", http.StatusBadRequest},
	CodeInternal:      {"internal", http.StatusInternalServerError},
	CodeUnauthorized:  {"unauthorized", http.StatusUnauthorized},
	CodeForbidden:     {"forbidden", http.StatusForbidden},
}

// String returns a stable name for the code, used in logs.
func (c ErrorCode) String() string {
	if info, ok := codeInfo[c]; ok {
		return info.name
	}
	return "unknown"
}

// HTTPStatus returns the HTTP status for the code. Unknown codes map to 500.
func (c ErrorCode) HTTPStatus() int {
	if info, ok := codeInfo[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// AppError is a business error carrying a code, a client-safe message and
// an optional cause.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrNotFound) and friends match any AppError with
// the same code, not only the sentinel pointer.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Sentinel errors, one per code.
var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrUnauthorized  = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden     = &AppError{Code: CodeForbidden, Message: "forbidden"}
)

// NewAppError creates an AppError.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// HasCode reports whether err is or wraps an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool      { return HasCode(err, CodeNotFound) }
func IsAlreadyExists(err error) bool { return HasCode(err, CodeAlreadyExists) }
func IsValidation(err error) bool    { return HasCode(err, CodeValidation) }
func IsInternal(err error) bool      { return HasCode(err, CodeInternal) }
func IsUnauthorized(err error) bool  { return HasCode(err, CodeUnauthorized) }
func IsForbidden(err error) bool     { return HasCode(err, CodeForbidden) }

// HTTPStatusCode maps err to an HTTP status. Anything that is not an
// AppError, nil included, maps to 500.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		return appErr.Code.HTTPStatus()
	}
	return http.StatusInternalServerError
}
