// Package errors provides the error model shared by the HTTP API and the
// pipeline stage workers, including conversion to BPMN errors for Zeebe.
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
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodePlanningFailed    ErrorCode = "PLANNING_FAILED"
	ErrCodeUpstreamAPIFailed ErrorCode = "UPSTREAM_API_FAILED"
	ErrCodeDatabase          ErrorCode = "DATABASE_ERROR"
	ErrCodeCache             ErrorCode = "CACHE_ERROR"
	ErrCodeSearchIndex       ErrorCode = "SEARCH_INDEX_ERROR"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause so errors.Is keeps matching stage sentinels.
func (e *StandardError) Unwrap() error {
	return e.cause
}

func newError(code ErrorCode, message string, cause error) *StandardError {
	se := &StandardError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		se.Details = cause.Error()
	}
	return se
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationError reports a malformed request or job payload.
func NewValidationError(message string) *StandardError {
	return newError(ErrCodeValidation, message, nil)
}

// NewPlanningFailedError reports that the language model did not produce a usable request.
func NewPlanningFailedError(cause error) *StandardError {
	return newError(ErrCodePlanningFailed, "Request planning failed", cause)
}

// NewUpstreamAPIError reports a failed call to the recommendation API.
// status is zero for transport errors.
func NewUpstreamAPIError(status int, cause error) *StandardError {
	se := newError(ErrCodeUpstreamAPIFailed, "Recommendation API call failed", cause)
	se.Metadata = map[string]interface{}{"upstreamStatus": status}
	return se
}

func NewDatabaseError(operation string, cause error) *StandardError {
	return newError(ErrCodeDatabase, fmt.Sprintf("Database %s failed", operation), cause)
}

func NewCacheError(cause error) *StandardError {
	return newError(ErrCodeCache, "Cache operation failed", cause)
}

func NewSearchIndexError(index string, cause error) *StandardError {
	return newError(ErrCodeSearchIndex, fmt.Sprintf("Search index %s unavailable", index), cause)
}

func NewInternalError(cause error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", cause)
}

// ==========================
// 4. Classification
// ==========================

// AsStandardError finds a StandardError in err's chain, wrapping anything
// else as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se
	}
	return NewInternalError(err)
}

// UpstreamStatus returns the recommendation API status carried by err, or 0.
func UpstreamStatus(err error) int {
	var se *StandardError
	if !stderrors.As(err, &se) || se.Code != ErrCodeUpstreamAPIFailed {
		return 0
	}
	status, _ := se.Metadata["upstreamStatus"].(int)
	return status
}

// HTTPStatus maps an error to the status code returned by the HTTP API.
func HTTPStatus(err error) int {
	switch AsStandardError(err).Code {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeUpstreamAPIFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	vars := map[string]interface{}{
		"timestamp": stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}
	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		ErrorVariables: vars,
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PLANNING"):
		return "AI"
	case strings.Contains(codeStr, "UPSTREAM"):
		return "UPSTREAM"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "CACHE"):
		return "STORAGE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
