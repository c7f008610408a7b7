package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents a single invalid field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined errors returned by the handlers
var (
	ErrUnsupportedFormat  = New(http.StatusBadRequest, "UNSUPPORTED_FORMAT", "Unsupported export format")
	ErrEntityNotFound     = New(http.StatusNotFound, "ENTITY_NOT_FOUND", "Driver or constructor not found")
	ErrDatasetUnavailable = New(http.StatusServiceUnavailable, "DATASET_NOT_LOADED", "Dataset is not loaded")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// UnknownActionError reports an action id missing from the menu
func UnknownActionError(action string) *APIError {
	return NewWithDetails(http.StatusNotFound, "ACTION_NOT_FOUND", fmt.Sprintf("analytics action %q not found", action), action)
}

// AnalyticsError wraps a failure inside an analytics module
func AnalyticsError(action string, err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, "ANALYTICS_FAILED", fmt.Sprintf("analytics action %s failed", action), err.Error())
}

// ExportError wraps a failure while writing a spreadsheet or CSV file
func ExportError(action string, err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, "EXPORT_FAILED", fmt.Sprintf("export of %s failed", action), err.Error())
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Request validation failed",
		ValidationErrors{Errors: errors},
	)
}
