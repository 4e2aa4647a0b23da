package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/trip-overtime/internal/domain"
)

// errBadRequest marks requests rejected before reaching the service layer,
// such as a missing upload or a malformed path parameter.
var errBadRequest = errors.New("bad request")

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeError maps a service error onto a status and error code.
// Unrecognised errors are logged and reported as 500 without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, "not_found", unwrapMessage(err, domain.ErrNotFound))
	case errors.Is(err, domain.ErrValidation):
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrUnsupportedFormat):
		writeErrorBody(w, http.StatusUnsupportedMediaType, "unsupported_format", unwrapMessage(err, domain.ErrUnsupportedFormat))
	case errors.Is(err, domain.ErrInvalidWorkbook):
		writeErrorBody(w, http.StatusBadRequest, "invalid_workbook", unwrapMessage(err, domain.ErrInvalidWorkbook))
	case errors.Is(err, errBadRequest):
		writeErrorBody(w, http.StatusBadRequest, "bad_request", unwrapMessage(err, errBadRequest))
	case errors.As(err, &tooLarge):
		writeErrorBody(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
	default:
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeErrorBody(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part that follows the sentinel.
// e.g. "service.OvertimeService.Overtime: validation error: empty upload" → "empty upload"
// When the sentinel has no detail, its own text is returned.
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error()
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return msg
	}
	rest := strings.TrimPrefix(msg[i+len(marker):], ": ")
	if rest == "" {
		return marker
	}
	return rest
}
