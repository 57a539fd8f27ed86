package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"spendwise/internal/core"
	applog "spendwise/internal/log"
	"spendwise/internal/middleware/trace"
)

const internalErrorMessage = "An error occurred while processing your request"

type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "component", applog.ComponentHTTP, "error", err)
	}
}

// writeError maps the error taxonomy onto a status code and a JSON body.
// Internal details leave the process only in development.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body, errType := classify(err)
	if s.dev && status >= 500 {
		body.Details = err.Error()
	}

	fields := applog.NewFields().
		WithRequestID(trace.GetRequestID(r.Context())).
		WithErrorType(errType).
		WithError(err)
	fields["method"] = r.Method
	fields["path"] = r.URL.Path
	if status >= 500 {
		s.logger.ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
	} else {
		s.logger.DebugContext(r.Context(), "Request rejected", fields.ToSlice()...)
	}
	writeJSON(w, status, body)
}

func classify(err error) (int, errorBody, string) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorBody{Message: ve.Message, Field: ve.Field}, applog.ErrorTypeValidation
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, errorBody{Message: "Resource not found"}, applog.ErrorTypeNotFound
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict, errorBody{Message: conflictMessage(err)}, applog.ErrorTypeConflict
	case core.IsTransportError(err):
		return http.StatusInternalServerError, errorBody{Message: internalErrorMessage}, applog.ErrorTypeTransport
	default:
		return http.StatusInternalServerError, errorBody{Message: internalErrorMessage}, applog.ErrorTypeInternal
	}
}

// conflictMessage strips the sentinel suffix from a wrapped ErrConflict.
func conflictMessage(err error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+core.ErrConflict.Error())
	if msg == "" || msg == core.ErrConflict.Error() {
		return "Resource already exists"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
