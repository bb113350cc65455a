package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophdrive/internal/common"
)

const genericErrorMessage = "Something went wrong!"

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func (s *HTTPServer) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(ctx, "error writing response", "error", err)
	}
}

// writeError is the single place core errors become HTTP responses.
func (s *HTTPServer) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, body := errorBody(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", "error", err)
	}
	s.writeJSON(ctx, w, status, body)
}

func errorBody(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, errorResponse{Message: detail(err, common.ErrorValidation)}
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, errorResponse{Message: detail(err, common.ErrorUnauthorized)}
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, errorResponse{Message: detail(err, common.ErrorNotFound)}
	case errors.Is(err, common.ErrorStorageIO):
		return http.StatusInternalServerError, errorResponse{
			Message: "Storage operation failed",
			Error:   detail(err, common.ErrorStorageIO),
		}
	default:
		return http.StatusInternalServerError, errorResponse{Message: genericErrorMessage, Error: err.Error()}
	}
}

// detail strips the sentinel text from err so the caller sees only the
// specific reason, e.g. "file not found" or "name failed \"required\"".
func detail(err, sentinel error) string {
	msg := err.Error()
	tag := sentinel.Error()
	switch {
	case strings.HasPrefix(msg, tag+": "):
		msg = strings.TrimPrefix(msg, tag+": ")
	case strings.HasSuffix(msg, ": "+tag):
		msg = strings.TrimSuffix(msg, ": "+tag)
	}
	if msg == "" {
		return tag
	}
	return msg
}
