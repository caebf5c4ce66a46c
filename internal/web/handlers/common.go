package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-gate/internal/detector"
	"github.com/kozaktomas/face-gate/internal/registry"
	"github.com/kozaktomas/face-gate/internal/service"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps workflow errors onto HTTP statuses. Denial is
// not an error and never reaches this path.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, detector.ErrNoFace):
		respondError(w, http.StatusBadRequest, "no face detected, try again with better framing")
	case errors.Is(err, service.ErrEmptyRegistry):
		respondError(w, http.StatusBadRequest, "no registered users")
	case errors.Is(err, registry.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, detector.ErrUnavailable):
		respondError(w, http.StatusBadGateway, "detection service unavailable")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
