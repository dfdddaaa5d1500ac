package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is lets wrapped copies of a sentinel match the sentinel by code.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if errors.As(target, &de) {
		return e.Code == de.Code
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// NewValidationError builds a validation error with a caller-facing message.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message}
}

// Error codes
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeConflict        = "EMAIL_EXISTS"
	CodeNotFound        = "USER_NOT_FOUND"
	CodePersistence     = "PERSISTENCE_ERROR"
	CodeExternalService = "EXTERNAL_SERVICE_ERROR"
	CodeBulkDelete      = "BULK_DELETE_FAILED"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInvalidToken    = "INVALID_TOKEN"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeInvalidRefresh  = "INVALID_REFRESH_TOKEN"
	CodeBadCredentials  = "INVALID_CREDENTIALS"
	CodeInternal        = "INTERNAL_ERROR"
	CodeUnavailable     = "SERVICE_UNAVAILABLE"
)

// Predefined domain errors
var (
	// User errors
	ErrUserNotFound = NewDomainError(CodeNotFound, "user not found")
	ErrEmailExists  = NewDomainError(CodeConflict, "email already exists")

	// Store errors. Persistence covers credential/role/profile writes that
	// were attempted and rejected by a store; partial state may remain.
	ErrPersistence     = NewDomainError(CodePersistence, "store operation failed")
	ErrExternalService = NewDomainError(CodeExternalService, "external service failure")

	// Validation
	ErrInvalidInput = NewDomainError(CodeValidation, "invalid input")

	// Authentication errors
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "unauthorized")
	ErrInvalidCredentials  = NewDomainError(CodeBadCredentials, "invalid credentials")
	ErrInvalidToken        = NewDomainError(CodeInvalidToken, "invalid token")
	ErrTokenExpired        = NewDomainError(CodeTokenExpired, "token has expired")
	ErrInvalidRefreshToken = NewDomainError(CodeInvalidRefresh, "invalid refresh token")

	// System errors
	ErrInternal           = NewDomainError(CodeInternal, "internal server error")
	ErrServiceUnavailable = NewDomainError(CodeUnavailable, "service unavailable")
)

// BulkError aggregates per-item failures from a batch operation. Successful
// items are not rolled back; Failures carries one message per failed item.
type BulkError struct {
	DomainError
	Failures []string
}

// Unwrap exposes the embedded DomainError so status mapping sees the code.
func (e *BulkError) Unwrap() error {
	return &e.DomainError
}

// NewBulkError builds the aggregate failure for a batch operation.
func NewBulkError(failures []string) *BulkError {
	return &BulkError{
		DomainError: DomainError{
			Code:    CodeBulkDelete,
			Message: "Some deletions failed.",
		},
		Failures: failures,
	}
}

// AsBulkError extracts a BulkError if err carries one.
func AsBulkError(err error) (*BulkError, bool) {
	var be *BulkError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	// Default to internal server error for unknown errors
	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case CodeValidation, CodeBulkDelete:
		return http.StatusBadRequest

	// 401 Unauthorized
	case CodeUnauthorized, CodeBadCredentials, CodeInvalidToken,
		CodeTokenExpired, CodeInvalidRefresh:
		return http.StatusUnauthorized

	// 404 Not Found
	case CodeNotFound:
		return http.StatusNotFound

	// 409 Conflict
	case CodeConflict:
		return http.StatusConflict

	// 502 Bad Gateway: the image store (or another upstream) failed, the
	// caller can retry just that step
	case CodeExternalService:
		return http.StatusBadGateway

	// 503 Service Unavailable
	case CodeUnavailable:
		return http.StatusServiceUnavailable

	// 500 Internal Server Error (default, includes persistence failures)
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}
