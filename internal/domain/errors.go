package domain

import (
	"errors"
	"maps"
	"net/http"
)

// Error codes for business logic errors.
const (
	CodeNotFound      = 1
	CodeAlreadyExists = 2
	CodeValidation    = 3
	CodeInternal      = 4
	CodeUnauthorized  = 5
	CodeUnavailable   = 6
)

// AppError represents a business logic error with a code, message, and optional wrapped error.
//
// Fields carries per-field messages for validation errors. Status is the HTTP
// status observed by a client when the error was decoded from a response; it
// is zero for errors raised locally.
type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"errors,omitempty"`
	Status  int               `json:"-"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined business errors.
//
// To check whether an error matches one of these categories, use the
// corresponding helper function (IsNotFound, IsValidation, etc.) instead of
// errors.Is. The helpers compare error codes via errors.As, so they match any
// *AppError with the same code, including wrapped ones.
var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrUnauthorized  = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
)

// NewAppError creates a new AppError with the given code, message, and wrapped error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a validation AppError carrying per-field messages.
// The fields map is copied.
func NewValidationError(message string, fields map[string]string) *AppError {
	if message == "" {
		message = "validation error"
	}
	var copied map[string]string
	if len(fields) > 0 {
		copied = maps.Clone(fields)
	}
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Fields:  copied,
	}
}

// IsNotFound reports whether err is or wraps an AppError with CodeNotFound.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsAlreadyExists reports whether err is or wraps an AppError with CodeAlreadyExists.
func IsAlreadyExists(err error) bool {
	return hasCode(err, CodeAlreadyExists)
}

// IsValidation reports whether err is or wraps an AppError with CodeValidation.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsInternal reports whether err is or wraps an AppError with CodeInternal.
func IsInternal(err error) bool {
	return hasCode(err, CodeInternal)
}

// IsServer is an alias of IsInternal used on the client side, where
// CodeInternal stands for any unexpected server response.
func IsServer(err error) bool {
	return hasCode(err, CodeInternal)
}

// IsUnauthorized reports whether err is or wraps an AppError with CodeUnauthorized.
func IsUnauthorized(err error) bool {
	return hasCode(err, CodeUnauthorized)
}

// IsNetwork reports whether err is or wraps an AppError with CodeUnavailable,
// i.e. no response was received from the server.
func IsNetwork(err error) bool {
	return hasCode(err, CodeUnavailable)
}

// FieldErrors returns the per-field messages of a validation error, or nil.
func FieldErrors(err error) map[string]string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == CodeValidation {
		return appErr.Fields
	}
	return nil
}

// hasCode checks whether err is or wraps an *AppError with the given code.
func hasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HTTPStatusCode maps an error to an HTTP status code.
// If the error is an *AppError, the code is mapped; otherwise http.StatusInternalServerError is returned.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeNotFound:
			return http.StatusNotFound
		case CodeAlreadyExists:
			return http.StatusConflict
		case CodeValidation:
			return http.StatusUnprocessableEntity
		case CodeUnauthorized:
			return http.StatusUnauthorized
		case CodeUnavailable:
			return http.StatusServiceUnavailable
		case CodeInternal:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// CodeForStatus maps an HTTP error status received by a client back onto an
// error code. 400 and 422 are both treated as validation failures.
func CodeForStatus(status int) int {
	switch status {
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeAlreadyExists
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return CodeUnauthorized
	default:
		return CodeInternal
	}
}
