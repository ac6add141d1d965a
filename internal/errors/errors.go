// FilePath: internal/errors/errors.go
package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Error types
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeAuth       ErrorType = "authentication"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeVendor     ErrorType = "vendor"
	ErrorTypeTransport  ErrorType = "transport"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeInternal   ErrorType = "internal"
)

// APIError is a structured error that marshals directly into the failure
// envelope every endpoint returns: {"success":false,"error":...,"type":...}.
type APIError struct {
	Success   bool      `json:"success"`
	Type      ErrorType `json:"type"`
	Message   string    `json:"error"`
	Code      int       `json:"-"`
	RequestID string    `json:"request_id,omitempty"`
	err       error     // Internal error for logging
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the wrapped internal error
func (e *APIError) Unwrap() error {
	return e.err
}

// WithRequestID adds a request ID to the error
func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

func newError(t ErrorType, code int, msg string, err error) *APIError {
	return &APIError{
		Success: false,
		Type:    t,
		Message: msg,
		Code:    code,
		err:     err,
	}
}

// NewValidationError creates a new validation error (HTTP 400)
func NewValidationError(msg string, err error) *APIError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, msg, err)
}

// NewAuthError creates a new authentication error (HTTP 401)
func NewAuthError(msg string, err error) *APIError {
	return newError(ErrorTypeAuth, http.StatusUnauthorized, msg, err)
}

// NewNotFoundError creates a new not found error (HTTP 404)
func NewNotFoundError(msg string, err error) *APIError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, msg, err)
}

// NewVendorError creates an error for an application-level vendor failure:
// the vendor answered, but its response body signals an error (HTTP 500)
func NewVendorError(msg string, err error) *APIError {
	return newError(ErrorTypeVendor, http.StatusInternalServerError, msg, err)
}

// NewTransportError creates an error for an HTTP-transport failure reaching a
// vendor: timeout, DNS, TLS (HTTP 500)
func NewTransportError(msg string, err error) *APIError {
	return newError(ErrorTypeTransport, http.StatusInternalServerError, msg, err)
}

// NewDatabaseError creates a new store error (HTTP 500)
func NewDatabaseError(msg string, err error) *APIError {
	return newError(ErrorTypeDatabase, http.StatusInternalServerError, msg, err)
}

// NewInternalError creates a new internal server error (HTTP 500)
func NewInternalError(msg string, err error) *APIError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, msg, err)
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == ErrorTypeNotFound
	}
	return false
}

// IsValidation checks if an error is a Validation error
func IsValidation(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == ErrorTypeValidation
	}
	return false
}

// IsAuth checks if an error is an Authentication error
func IsAuth(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == ErrorTypeAuth
	}
	return false
}
