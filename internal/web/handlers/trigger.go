package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-gate/internal/service"
)

// TriggerHandler serves the hardware-button trigger endpoints.
type TriggerHandler struct {
	svc *service.Service
}

// NewTriggerHandler creates the handler.
func NewTriggerHandler(svc *service.Service) *TriggerHandler {
	return &TriggerHandler{svc: svc}
}

// TriggerResponse carries the stored trigger timestamp in Unix millis.
type TriggerResponse struct {
	Timestamp int64 `json:"timestamp"`
}

// Fire handles POST or GET /trigger. The button firmware only does plain
// GETs, so both methods are accepted.
func (h *TriggerHandler) Fire(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, TriggerResponse{Timestamp: h.svc.Trigger()})
}

// Latest handles GET /trigger/latest for pollers: any increase over the
// last observed value is a new trigger signal.
func (h *TriggerHandler) Latest(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, TriggerResponse{Timestamp: h.svc.LastTrigger()})
}
