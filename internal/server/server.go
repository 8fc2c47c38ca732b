// Package server exposes the local HTTP API: event ingestion from CLI
// hooks plus the read/manage surface the dashboard uses.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the chi router for the full API surface.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/event", h.IngestEvent)
		r.Get("/health", h.Health)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.ListSessions)
			r.Get("/{id}/events", h.ListSessionEvents)
			r.Get("/{id}/messages", h.ListSessionMessages)
			r.Post("/{id}/close", h.CloseSession)
			r.Delete("/{id}", h.DeleteSession)
		})

		r.Route("/custom-clis", func(r chi.Router) {
			r.Get("/", h.ListCustomCLIs)
			r.Post("/", h.SaveCustomCLI)
			r.Delete("/{id}", h.DeleteCustomCLI)
		})

		r.Route("/configs", func(r chi.Router) {
			r.Get("/", h.ListConfigs)
			r.Post("/{cli}/mcp", h.SaveMCP)
			r.Delete("/{cli}/mcp/{name}", h.DeleteMCP)
			r.Post("/{cli}/skills", h.SaveSkill)
			r.Delete("/{cli}/skills/{name}", h.DeleteSkill)
		})

		r.Get("/notification-settings", h.GetNotificationSettings)
		r.Put("/notification-settings", h.PutNotificationSettings)
	})

	return r
}

// NewHTTPServer wraps the router in an http.Server bound to addr.
func NewHTTPServer(addr string, h *Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: NewRouter(h),
	}
}
