/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for dashboard frontends

ROUTE GROUPS:
  /api/reports            Report computation (tracker-backed)
  /api/calculate          Offline calculation
  /api/params             Process-default ruleset
  /api/workers/{id}/*     Per-worker profile, overrides, calendars
  /api/health             Liveness

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/reports", h.Report)
		r.Post("/calculate", h.Calculate)

		r.Get("/params", h.GetParams)
		r.Put("/params", h.PutParams)

		r.Route("/workers/{id}", func(r chi.Router) {
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.PutProfile)
			r.Get("/overrides", h.GetOverrides)
			r.Put("/overrides", h.PutOverrides)
			r.Get("/holidays", h.ListHolidays)
			r.Post("/holidays", h.AddHoliday)
			r.Get("/timeoff", h.ListTimeOff)
			r.Post("/timeoff", h.AddTimeOff)
		})

		r.Get("/health", h.Health)
	})

	return r
}
