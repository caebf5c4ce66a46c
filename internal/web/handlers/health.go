package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/kozaktomas/face-gate/internal/detector"
)

// HealthHandler reports service and detector status.
type HealthHandler struct {
	det *detector.Client
	dim int
}

// NewHealthHandler creates the handler.
func NewHealthHandler(det *detector.Client, dim int) *HealthHandler {
	return &HealthHandler{det: det, dim: dim}
}

// HealthResponse is the health endpoint body.
type HealthResponse struct {
	Status       string         `json:"status"`
	ModelsLoaded map[string]any `json:"modelsLoaded"`
}

// Get handles GET /health. The service itself answering is "ok"; the
// detector probe result is reported alongside so a dashboard can tell
// "service up, detector down" apart from "all down".
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	detectorUp := h.det.Health(ctx) == nil
	respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		ModelsLoaded: map[string]any{
			"detector": detectorUp,
			"model":    h.det.Model(),
			"dim":      h.dim,
		},
	})
}
