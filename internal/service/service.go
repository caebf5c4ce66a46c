// Package service coordinates the registration and verification workflows:
// it validates input, calls the external detector, matches against the
// registry, and fans results out to observers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-gate/internal/detector"
	"github.com/kozaktomas/face-gate/internal/events"
	"github.com/kozaktomas/face-gate/internal/facematch"
	"github.com/kozaktomas/face-gate/internal/registry"
	"github.com/kozaktomas/face-gate/internal/trigger"
)

// Detector is the boundary to the external detection capability.
type Detector interface {
	Detect(ctx context.Context, imageData []byte) (*detector.Detection, error)
}

// Service owns the access-control workflows. The store, gate, and hub are
// injected so there is no ambient shared state.
type Service struct {
	store     registry.Store
	det       Detector
	hub       *events.Hub
	gate      *trigger.Gate
	threshold float64
	dim       int
	maxImage  int
}

// New wires a service from its collaborators.
func New(store registry.Store, det Detector, hub *events.Hub, gate *trigger.Gate, threshold float64, dim int) *Service {
	return &Service{
		store:     store,
		det:       det,
		hub:       hub,
		gate:      gate,
		threshold: threshold,
		dim:       dim,
		maxImage:  detector.DefaultMaxImageSize,
	}
}

// RegisteredUser is the result of a successful registration.
type RegisteredUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Register enrolls a new user from a captured frame. Two registrations
// with the same name create two distinct records; the design does not
// dedupe by name.
func (s *Service) Register(ctx context.Context, name string, imageData []byte) (*RegisteredUser, error) {
	var missing []string
	if strings.TrimSpace(name) == "" {
		missing = append(missing, "name")
	}
	if len(imageData) == 0 {
		missing = append(missing, "image")
	}
	if len(missing) > 0 {
		return nil, NewValidationError(missing...)
	}

	descriptor, err := s.extractDescriptor(ctx, imageData)
	if err != nil {
		return nil, err
	}

	id, err := s.newUserID(ctx)
	if err != nil {
		return nil, err
	}

	rec := registry.UserRecord{ID: id, Name: name, Descriptor: descriptor}
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, err
	}

	log.Printf("Registered user %s (%s)", name, id)
	s.hub.Publish(events.Event{
		Type: events.TypeUserRegistered,
		Data: events.UserPayload{User: events.UserInfo{ID: id, Name: name}},
	})

	return &RegisteredUser{ID: id, Name: name}, nil
}

// VerificationOutcome is the transient result of a verification. Denial is
// a normal outcome: Success false with no error.
type VerificationOutcome struct {
	Success    bool
	User       *events.UserInfo
	Distance   float64
	Confidence float64
	Message    string
}

// Verify matches a captured frame against the registry and broadcasts the
// outcome to observers.
func (s *Service) Verify(ctx context.Context, imageData []byte) (*VerificationOutcome, error) {
	if len(imageData) == 0 {
		return nil, NewValidationError("image")
	}

	descriptor, err := s.extractDescriptor(ctx, imageData)
	if err != nil {
		return nil, err
	}

	users, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrEmptyRegistry
	}

	candidates := make([][]float32, len(users))
	for i := range users {
		candidates[i] = users[i].Descriptor
	}

	match, err := facematch.Nearest(descriptor, candidates, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("matching failed: %w", err)
	}

	outcome := &VerificationOutcome{
		Success:    match.Matched,
		Distance:   match.Distance,
		Confidence: match.Confidence,
	}

	if match.Matched {
		user := users[match.Index]
		outcome.User = &events.UserInfo{ID: user.ID, Name: user.Name}
		outcome.Message = fmt.Sprintf("Access granted: %s", user.Name)
		log.Printf("Access granted for %s (distance %.4f)", user.Name, match.Distance)
	} else {
		outcome.Message = "Access denied: face not recognized"
		log.Printf("Access denied (distance %.4f)", match.Distance)
	}

	s.hub.Publish(events.Event{
		Type: events.TypeAccessAttempt,
		Data: events.AccessPayload{
			Success:    outcome.Success,
			Message:    outcome.Message,
			User:       outcome.User,
			Confidence: outcome.Confidence,
		},
	})

	return outcome, nil
}

// Delete removes an enrolled user and notifies observers.
func (s *Service) Delete(ctx context.Context, id string) error {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("Deleted user %s (%s)", rec.Name, rec.ID)
	s.hub.Publish(events.Event{
		Type: events.TypeUserDeleted,
		Data: events.UserPayload{User: events.UserInfo{ID: rec.ID, Name: rec.Name}},
	})
	return nil
}

// List returns enrolled users, optionally filtered by a
// diacritics-insensitive name query.
func (s *Service) List(ctx context.Context, query string) ([]RegisteredUser, error) {
	records, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}

	normalized := facematch.NormalizeUserName(query)
	users := make([]RegisteredUser, 0, len(records))
	for _, rec := range records {
		if normalized != "" && !strings.Contains(facematch.NormalizeUserName(rec.Name), normalized) {
			continue
		}
		users = append(users, RegisteredUser{ID: rec.ID, Name: rec.Name})
	}
	return users, nil
}

// Trigger fires the debounce gate. An accepted trigger is broadcast to
// observers; a rejected one returns the prior timestamp silently.
func (s *Service) Trigger() int64 {
	ts, accepted := s.gate.Fire()
	if accepted {
		log.Printf("Capture trigger accepted at %d", ts)
		s.hub.Publish(events.Event{
			Type: events.TypeTrigger,
			Data: events.TriggerPayload{Timestamp: ts},
		})
	}
	return ts
}

// LastTrigger returns the stored trigger timestamp for pollers.
func (s *Service) LastTrigger() int64 {
	return s.gate.Peek()
}

// extractDescriptor preprocesses the frame and runs detection, enforcing
// the configured descriptor dimensionality.
func (s *Service) extractDescriptor(ctx context.Context, imageData []byte) ([]float32, error) {
	prepared, err := detector.PrepareImage(imageData, s.maxImage)
	if err != nil {
		return nil, NewValidationError("image")
	}

	detection, err := s.det.Detect(ctx, prepared)
	if err != nil {
		return nil, err
	}
	if len(detection.Descriptor) != s.dim {
		return nil, fmt.Errorf("detector returned %d-dim descriptor, expected %d", len(detection.Descriptor), s.dim)
	}
	return detection.Descriptor, nil
}

// newUserID generates a fresh unique id. Collisions are practically
// impossible with UUIDs, but the registry is checked anyway and the id is
// regenerated if one ever happens.
func (s *Service) newUserID(ctx context.Context) (string, error) {
	for range 3 {
		id := uuid.NewString()
		_, err := s.store.Get(ctx, id)
		if errors.Is(err, registry.ErrUserNotFound) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("could not generate a unique user id")
}
