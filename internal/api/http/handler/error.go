package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/qivlabs/qiv-auth/internal/model"
)

// errorResponse is the JSON body for all failed requests.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusForKind maps flow error kinds to HTTP statuses. Unexpected
// internal errors become a generic 500 without detail leakage.
func statusForKind(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation, model.KindUnsupported:
		return http.StatusBadRequest
	case model.KindAuth:
		return http.StatusUnauthorized
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	case model.KindDispatch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	var flowErr *model.Error
	if !errors.As(err, &flowErr) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	writeJSON(w, statusForKind(flowErr.Kind), errorResponse{
		Error: flowErr.Message,
		Field: flowErr.Field,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
