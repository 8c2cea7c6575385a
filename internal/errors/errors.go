package errors

import (
	"fmt"
	"net/http"
)

// APIError carries the status code and machine-readable error code for a
// failed request. The handler converts it to an RFC 7807 problem before it
// reaches the wire.
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

// ErrDatasetNotProcessed is returned when a cleaned view is requested before
// a processing run has completed.
var ErrDatasetNotProcessed = New(http.StatusConflict, "DATASET_NOT_PROCESSED", "Dataset has not been processed yet")

// ValidationError describes a single failed field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
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

// DatasetNotFoundError creates a dataset not found error
func DatasetNotFoundError(id int64) *APIError {
	return NewWithDetails(http.StatusNotFound, "DATASET_NOT_FOUND",
		fmt.Sprintf("Dataset %d not found", id),
		map[string]interface{}{"dataset_id": id})
}

// FileTooLargeError creates an oversized upload error
func FileTooLargeError(limitBytes int64) *APIError {
	return NewWithDetails(http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
		"Uploaded file exceeds the size limit",
		map[string]interface{}{"limit_bytes": limitBytes})
}

// InvalidFileTypeError creates an unsupported upload format error
func InvalidFileTypeError(filename string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_FILE_TYPE",
		"Only csv, xls, and xlsx files are supported",
		map[string]interface{}{"filename": filename})
}

// InvalidFileError creates an unparseable upload error
func InvalidFileError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_FILE", "File could not be parsed", err.Error())
}

// UnsupportedStrategyError creates an unknown imputation strategy error
func UnsupportedStrategyError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "UNSUPPORTED_STRATEGY",
		"Missing-value strategy must be one of mean, median, mode, constant", err.Error())
}

// InvalidDatasetError creates an invalid input dataset error
func InvalidDatasetError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_DATASET", "Dataset cannot be processed", err.Error())
}
