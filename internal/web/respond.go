package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/roach88/precario/internal/catalog"
)

// Error codes carried in the JSON envelope.
const (
	CodeInternal     = "E001"
	CodeNotFound     = "E005"
	CodeValidation   = "E201"
	CodeBadRequest   = "E400"
	CodeUnauthorized = "E401"
)

// Response is the JSON envelope for every /api/ response except the display
// feed.
type Response struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *APIError `json:"error,omitempty"`
}

// APIError is the error part of the envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Status: "ok", Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, Response{
		Status: "error",
		Error:  &APIError{Code: code, Message: message, Details: details},
	})
}

// writeUnauthorized is the auth middleware hook for anonymous /api/ calls.
func writeUnauthorized(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="precario"`)
	writeError(w, http.StatusUnauthorized, CodeUnauthorized, "authentication required", nil)
}

// statusFor maps service errors to HTTP status and envelope code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case catalog.IsValidationError(err):
		return http.StatusUnprocessableEntity, CodeValidation
	case errors.Is(err, catalog.ErrAlreadyExists):
		return http.StatusConflict, CodeValidation
	}
	return http.StatusInternalServerError, CodeInternal
}

// writeServiceError renders err from the catalog service. Validation errors
// carry their per-field messages as details; internal errors are logged and
// reported without their text.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	switch code {
	case CodeValidation:
		var ve *catalog.ValidationError
		if errors.As(err, &ve) {
			writeError(w, status, code, "validation failed", ve.Fields)
			return
		}
		writeError(w, status, code, err.Error(), nil)
	case CodeNotFound:
		writeError(w, status, code, "not found", nil)
	default:
		s.logger.Error("request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, status, code, "internal error", nil)
	}
}
