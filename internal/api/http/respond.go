package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"rental-backend/internal/domain"
	"rental-backend/internal/logger"
	"rental-backend/internal/storage"

	"github.com/gorilla/mux"
)

var errForbidden = errors.New("forbidden")

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors to HTTP statuses. Anything unrecognised is
// logged and reported as a 500 without its details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, storage.ErrInvalidKey):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, errForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrStatusChanged),
		errors.Is(err, domain.ErrPhoneTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("body", "malformed JSON")
	}
	return nil
}

func pathID(r *http.Request, name string) (int32, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return int32(id), nil
}
