package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/case-gallery/internal/domain"
)

// errorDetail and errorResponse are the JSON error envelope:
// {"error":{"code":"not_found","message":"case not found"}}.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

// writeJSON encodes v with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WarnContext(r.Context(), "write response", "error", err)
	}
}

// writeError maps err onto an HTTP status and the error envelope.
// ErrNotFound is 404, ErrValidation and ErrUnknownKind are 422, and anything
// else is logged and hidden behind a 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.writeJSON(w, r, http.StatusNotFound, errorResponse{errorDetail{Code: "not_found", Message: unwrapMessage(err)}})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnknownKind):
		s.writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{errorDetail{Code: "validation_error", Message: unwrapMessage(err)}})
	default:
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{errorDetail{Code: "internal_error", Message: "internal server error"}})
	}
}

// unwrapMessage drops the "pkg.Type.Method: " wrapping prefixes from err so
// clients see only the human-readable part, e.g.
// "service.QueryEngine.GetOne: not found" → "not found".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for {
		head, rest, ok := strings.Cut(msg, ": ")
		if !ok || strings.ContainsAny(head, " \"") || !strings.Contains(head, ".") {
			return msg
		}
		msg = rest
	}
}
