// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorHandler renders errors as JSON responses with standardized logging.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Write normalizes err, logs it when it is not a plain input error, and
// writes {bodyKey: message} with the mapped status. bodyKey is "error" for
// the JSON API; the legacy chat route uses "response".
func (h *ErrorHandler) Write(w http.ResponseWriter, r *http.Request, err error, bodyKey string) {
	stdErr := AsStandardError(err)
	status := stdErr.HTTPStatus()

	h.logError(r, stdErr, status)

	if bodyKey == "" {
		bodyKey = "error"
	}
	WriteJSON(w, status, map[string]string{bodyKey: stdErr.Message})
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError, status int) {
	if IsValidationErrorCode(stdErr.Code) {
		return
	}

	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"status":        status,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if r != nil {
		fields["method"] = r.Method
		fields["path"] = r.URL.Path
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", fields)
		return
	}
	h.logger.Warn("Request failed", fields)
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
