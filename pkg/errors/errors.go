package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"

	// Relationship rule errors
	ErrorTypeCrossTree             ErrorType = "CROSS_TREE"
	ErrorTypeInvalidCategory       ErrorType = "INVALID_CATEGORY"
	ErrorTypeInvalidSubtype        ErrorType = "INVALID_SUBTYPE"
	ErrorTypeMissingGenerationDiff ErrorType = "MISSING_GENERATION_DIFFERENCE"
	ErrorTypeDuplicateRelationship ErrorType = "DUPLICATE_RELATIONSHIP"
	ErrorTypeCyclicLineage         ErrorType = "CYCLIC_LINEAGE"
	ErrorTypeValidationTimeout     ErrorType = "VALIDATION_TIMEOUT"

	// Application errors
	ErrorTypeInternal ErrorType = "INTERNAL"
	ErrorTypeTimeout  ErrorType = "TIMEOUT"

	// Infrastructure errors
	ErrorTypeStorageUnavailable ErrorType = "STORAGE_UNAVAILABLE"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// Constructor functions for common error types

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return &AppError{
		Type:       ErrorTypeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewCrossTreeError creates an error for relationship endpoints in different family trees
func NewCrossTreeError() *AppError {
	return &AppError{
		Type:       ErrorTypeCrossTree,
		Message:    "both people must belong to the same family tree",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInvalidCategoryError creates an error for an unknown relationship category
func NewInvalidCategoryError(category string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidCategory,
		Message:    fmt.Sprintf("invalid relationship category %q", category),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInvalidSubtypeError creates an error for a subtype that does not belong to the category
func NewInvalidSubtypeError(category, subtype string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidSubtype,
		Message:    fmt.Sprintf("invalid subtype %q for category %q", subtype, category),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewMissingGenerationDifferenceError creates an error for a family_line edge without a generation difference
func NewMissingGenerationDifferenceError() *AppError {
	return &AppError{
		Type:       ErrorTypeMissingGenerationDiff,
		Message:    "generation difference of -1 (parent) or +1 (child) is required for family_line relationships",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewDuplicateRelationshipError creates an error for an edge that already connects the pair
func NewDuplicateRelationshipError(category string) *AppError {
	return &AppError{
		Type:       ErrorTypeDuplicateRelationship,
		Message:    fmt.Sprintf("a %s relationship already exists between these people", category),
		HTTPStatus: http.StatusConflict,
	}
}

// NewCyclicLineageError creates an error for a family_line edge that would close an ancestry cycle
func NewCyclicLineageError() *AppError {
	return &AppError{
		Type:       ErrorTypeCyclicLineage,
		Message:    "relationship would make a person their own ancestor",
		HTTPStatus: http.StatusConflict,
	}
}

// NewValidationTimeoutError creates an error for a traversal that exhausted the safety cap
func NewValidationTimeoutError(operation string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidationTimeout,
		Message:    fmt.Sprintf("traversal cap exceeded during %s", operation),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(operation string) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    fmt.Sprintf("operation '%s' timed out", operation),
		HTTPStatus: http.StatusRequestTimeout,
	}
}

// NewStorageUnavailableError creates an error for a storage backend that stayed unreachable after retries
func NewStorageUnavailableError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeStorageUnavailable,
		Message:    fmt.Sprintf("storage operation '%s' failed after retries", operation),
		Cause:      err,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsCrossTree checks if an error is a cross tree error
func IsCrossTree(err error) bool {
	return IsType(err, ErrorTypeCrossTree)
}

// IsDuplicateRelationship checks if an error is a duplicate relationship error
func IsDuplicateRelationship(err error) bool {
	return IsType(err, ErrorTypeDuplicateRelationship)
}

// IsCyclicLineage checks if an error is a cyclic lineage error
func IsCyclicLineage(err error) bool {
	return IsType(err, ErrorTypeCyclicLineage)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// IsStorageUnavailable checks if an error is a storage unavailable error
func IsStorageUnavailable(err error) bool {
	return IsType(err, ErrorTypeStorageUnavailable)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, add context to message
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	// Otherwise create a new internal error
	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
