package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-gate/internal/service"
)

// UsersHandler serves the enrolled-user management endpoints.
type UsersHandler struct {
	svc *service.Service
}

// NewUsersHandler creates the handler.
func NewUsersHandler(svc *service.Service) *UsersHandler {
	return &UsersHandler{svc: svc}
}

// ListResponse is the user listing response body.
type ListResponse struct {
	Users []service.RegisteredUser `json:"users"`
	Count int                      `json:"count"`
}

// List handles GET /users with an optional q= name filter.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		log.Printf("Listing users failed: %v", err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ListResponse{Users: users, Count: len(users)})
}

// Delete handles DELETE /users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing user id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		log.Printf("Deleting user %s failed: %v", sanitizeForLog(id), err)
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
