package handlers

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-gate/internal/service"
)

// AccessHandler serves the registration and verification endpoints.
type AccessHandler struct {
	svc *service.Service
}

// NewAccessHandler creates the handler.
func NewAccessHandler(svc *service.Service) *AccessHandler {
	return &AccessHandler{svc: svc}
}

// RegisterRequest is the enrollment request body.
type RegisterRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"` // base64, optionally a data URL
}

// RegisterResponse is the enrollment response body.
type RegisterResponse struct {
	Success bool                    `json:"success"`
	User    *service.RegisteredUser `json:"user"`
}

// VerifyRequest is the verification request body.
type VerifyRequest struct {
	Image string `json:"image"`
}

// VerifyResponse is the verification response body. Denial is a 200 with
// Success false: the verification call itself succeeded.
type VerifyResponse struct {
	Success    bool                    `json:"success"`
	User       *service.RegisteredUser `json:"user,omitempty"`
	Message    string                  `json:"message,omitempty"`
	Confidence float64                 `json:"confidence"`
}

// decodeImage decodes a base64 image payload, tolerating a data URL prefix
// (the camera UI sends canvas.toDataURL output).
func decodeImage(payload string) ([]byte, error) {
	if i := strings.Index(payload, ";base64,"); i != -1 {
		payload = payload[i+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(payload)
}

// Register handles POST /register.
func (h *AccessHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	imageData, err := decodeImage(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, "image is not valid base64")
		return
	}

	user, err := h.svc.Register(r.Context(), req.Name, imageData)
	if err != nil {
		log.Printf("Registration failed for %q: %v", sanitizeForLog(req.Name), err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, RegisterResponse{Success: true, User: user})
}

// Verify handles POST /verify.
func (h *AccessHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	imageData, err := decodeImage(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, "image is not valid base64")
		return
	}

	outcome, err := h.svc.Verify(r.Context(), imageData)
	if err != nil {
		log.Printf("Verification failed: %v", err)
		respondServiceError(w, err)
		return
	}

	resp := VerifyResponse{
		Success:    outcome.Success,
		Message:    outcome.Message,
		Confidence: outcome.Confidence,
	}
	if outcome.User != nil {
		resp.User = &service.RegisteredUser{ID: outcome.User.ID, Name: outcome.User.Name}
	}
	respondJSON(w, http.StatusOK, resp)
}
