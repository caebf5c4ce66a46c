package web

import (
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/face-gate/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	accessHandler := handlers.NewAccessHandler(s.svc)
	triggerHandler := handlers.NewTriggerHandler(s.svc)
	usersHandler := handlers.NewUsersHandler(s.svc)
	healthHandler := handlers.NewHealthHandler(s.det, s.config.DescriptorDim())
	wsHandler := handlers.NewWSHandler(s.hub)

	// API routes with a bounded per-request timeout.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Get("/health", healthHandler.Get)

		r.Post("/register", accessHandler.Register)
		r.Post("/verify", accessHandler.Verify)

		// The button firmware only speaks plain GET.
		r.Post("/trigger", triggerHandler.Fire)
		r.Get("/trigger", triggerHandler.Fire)
		r.Get("/trigger/latest", triggerHandler.Latest)

		r.Get("/users", usersHandler.List)
		r.Delete("/users/{id}", usersHandler.Delete)
	})

	// Observer channel: long-lived, outside the request timeout.
	s.router.Get("/ws", wsHandler.Serve)
}
