// Package errors provides standardized error handling for the dashboard HTTP API.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidDataset     ErrorCode = "INVALID_DATASET"
	ErrCodeDatasetNotFound    ErrorCode = "DATASET_NOT_FOUND"
	ErrCodeInvalidFilter      ErrorCode = "INVALID_FILTER"
	ErrCodeMessageRequired    ErrorCode = "MESSAGE_REQUIRED"
	ErrCodeInvalidRequestBody ErrorCode = "INVALID_REQUEST_BODY"
	ErrCodeRequestTooLarge    ErrorCode = "REQUEST_TOO_LARGE"

	ErrCodeContextUnavailable ErrorCode = "CONTEXT_UNAVAILABLE"

	ErrCodeLLMUnavailable   ErrorCode = "LLM_UNAVAILABLE"
	ErrCodeLLMRequestFailed ErrorCode = "LLM_REQUEST_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus returns the response status for this error.
func (e *StandardError) HTTPStatus() int {
	return HTTPStatus(e.Code)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidDatasetError is returned for a dataset key outside the fixed set.
func NewInvalidDatasetError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidDataset,
		Message:   "Invalid dataset",
		Details:   fmt.Sprintf("dataset: %s", key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatasetNotFoundError uses the "<Display> data not found" message the
// dashboard front end shows verbatim.
func NewDatasetNotFoundError(displayName string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeDatasetNotFound,
		Message:   fmt.Sprintf("%s data not found", displayName),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidFilterError rejects a query parameter that is not a known filter.
func NewInvalidFilterError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFilter,
		Message:   fmt.Sprintf("Unknown filter: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewMessageRequiredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeMessageRequired,
		Message:   "Message is required",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidRequestBodyError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequestBody,
		Message:   "Invalid request body",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestTooLargeError is returned when a request body exceeds limit bytes.
func NewRequestTooLargeError(limit int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestTooLarge,
		Message:   "Request body too large",
		Details:   fmt.Sprintf("limit is %d bytes", limit),
		Retryable: false,
		Metadata:  map[string]interface{}{"limit_bytes": limit},
		Timestamp: time.Now().UTC(),
	}
}

// NewContextUnavailableError reports that the chat data context could not be built.
func NewContextUnavailableError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeContextUnavailable,
		Message:   "Data context unavailable",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMUnavailableError marks the completion API as not configured.
func NewLLMUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMUnavailable,
		Message:   "Completion API unavailable",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMRequestFailedError wraps transport, status and decode failures of the completion API.
func NewLLMRequestFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMRequestFailed,
		Message:   "Completion API request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatusMapping maps internal error codes to response status codes.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeInvalidDataset:     http.StatusBadRequest,
	ErrCodeDatasetNotFound:    http.StatusNotFound,
	ErrCodeInvalidFilter:      http.StatusBadRequest,
	ErrCodeMessageRequired:    http.StatusBadRequest,
	ErrCodeInvalidRequestBody: http.StatusBadRequest,
	ErrCodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeContextUnavailable: http.StatusInternalServerError,
	ErrCodeLLMUnavailable:     http.StatusServiceUnavailable,
	ErrCodeLLMRequestFailed:   http.StatusBadGateway,
	ErrCodeInternal:           http.StatusInternalServerError,
}

// HTTPStatus returns the status for code, 500 for unknown codes.
func HTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ==========================
// 4. Utility Functions
// ==========================

// AsStandardError unwraps err to a StandardError, wrapping unknown errors as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// IsValidationErrorCode reports codes caused by the caller's input.
func IsValidationErrorCode(code ErrorCode) bool {
	return HTTPStatus(code) == http.StatusBadRequest
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "LLM"):
		return "AI"
	case strings.Contains(codeStr, "CONTEXT"), strings.Contains(codeStr, "DATASET_NOT_FOUND"):
		return "DATA"
	case strings.Contains(codeStr, "INVALID"), strings.Contains(codeStr, "REQUIRED"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
