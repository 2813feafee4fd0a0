// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorHandler writes StandardError responses to HTTP clients with
// consistent logging.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// statusForCode maps internal error codes to HTTP status codes.
func statusForCode(code ErrorCode) int {
	switch code {
	case ErrCodeTripNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidRequest, ErrCodeTripValidationFailed, ErrCodeTripMappingFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeAssistantTimeout, ErrCodeTTSTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeAssistantSendFailed, ErrCodeAssistantSessionFailed, ErrCodeTTSFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError normalizes err to a StandardError, logs it, and writes
// the JSON error body with the mapped status code.
func (h *ErrorHandler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := h.normalizeError(err)
	status := statusForCode(stdErr.Code)

	h.logger.Error("request failed", map[string]interface{}{
		"method":        r.Method,
		"path":          r.URL.Path,
		"status":        status,
		"errorCode":     string(stdErr.Code),
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": stdErr,
	})
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
