// Package errors provides standardized error handling for the trip service.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeAssistantSendFailed    ErrorCode = "ASSISTANT_SEND_FAILED"
	ErrCodeAssistantTimeout       ErrorCode = "ASSISTANT_TIMEOUT"
	ErrCodeAssistantSessionFailed ErrorCode = "ASSISTANT_SESSION_FAILED"

	ErrCodeTripNotFound         ErrorCode = "TRIP_NOT_FOUND"
	ErrCodeTripValidationFailed ErrorCode = "TRIP_VALIDATION_FAILED"
	ErrCodeTripMappingFailed    ErrorCode = "TRIP_MAPPING_FAILED"

	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDatabaseQueryFailed      ErrorCode = "DATABASE_QUERY_FAILED"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchIndexFailed ErrorCode = "SEARCH_INDEX_FAILED"

	ErrCodeTTSFailed  ErrorCode = "TTS_FAILED"
	ErrCodeTTSTimeout ErrorCode = "TTS_TIMEOUT"

	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
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
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewAssistantSendFailedError creates a retryable assistant delivery error.
func NewAssistantSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssistantSendFailed,
		Message:   "Failed to deliver message to assistant",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssistantTimeoutError creates a retryable assistant reply timeout error.
func NewAssistantTimeoutError(attempts int) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssistantTimeout,
		Message:   "Assistant did not reply in time",
		Details:   fmt.Sprintf("gave up after %d poll attempts", attempts),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssistantSessionFailedError creates a retryable session bootstrap error.
func NewAssistantSessionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssistantSessionFailed,
		Message:   "Failed to establish assistant session",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTripNotFoundError creates a non-retryable lookup error.
func NewTripNotFoundError(tripID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTripNotFound,
		Message:   "Trip not found",
		Details:   fmt.Sprintf("tripId: %s", tripID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTripValidationFailedError creates a non-retryable structural validation error.
func NewTripValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTripValidationFailed,
		Message:   "Trip payload failed structural validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTripMappingFailedError creates a non-retryable mapping error.
func NewTripMappingFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTripMappingFailed,
		Message:   "Trip payload could not be mapped",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError creates a retryable session store error.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseQueryFailedError creates a retryable database query error.
func NewDatabaseQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseQueryFailed,
		Message:   "Database query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Search query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchIndexFailedError creates a retryable search indexing error.
func NewSearchIndexFailedError(tripID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchIndexFailed,
		Message:   "Search index update failed",
		Details:   fmt.Sprintf("tripId: %s, error: %s", tripID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTTSFailedError creates a retryable text-to-speech error.
func NewTTSFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTTSFailed,
		Message:   "Text-to-speech synthesis failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTTSTimeoutError creates a retryable text-to-speech timeout error.
func NewTTSTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTTSTimeout,
		Message:   "Text-to-speech synthesis timeout",
		Details:   "TTS call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable request validation error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry Policy
// ==========================

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeAssistantSendFailed,
		ErrCodeAssistantSessionFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeDatabaseQueryFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeSearchIndexFailed,
		ErrCodeSessionStoreFailed,
		ErrCodeTTSFailed:
		return 3 // Retryable technical errors

	case ErrCodeAssistantTimeout,
		ErrCodeTTSTimeout:
		return 1 // Timeouts already consumed their budget polling

	default:
		return 0 // Business errors: no retry
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "ASSISTANT"):
		return "ASSISTANT"
	case strings.Contains(codeStr, "TRIP"):
		return "TRIP"
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "TTS"):
		return "TTS"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
