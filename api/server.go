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
  4. CORS:       Cross-origin requests for the operator console

ROUTE GROUPS:
  /api/leadtime/options     Pricing hot path
  /api/leadtime/capacity/*  Capacity ledger operations
  /api/leadtime/overrides   Manual overrides
  /api/leadtime/profiles    Lead-time profiles
  /api/orgs/*               Org settings and holidays
  /healthz                  Liveness probe

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

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
		// Lead-time routes
		r.Route("/leadtime", func(r chi.Router) {
			r.Get("/options", h.GetOptions)

			r.Route("/capacity", func(r chi.Router) {
				r.Post("/bulk-upsert", h.BulkUpsertCapacity)
				r.Get("/window", h.GetCapacityWindow)
			})

			r.Route("/overrides", func(r chi.Router) {
				r.Get("/", h.ListOverrides)
				r.Post("/", h.CreateOverride)
			})

			r.Route("/profiles", func(r chi.Router) {
				r.Get("/", h.GetProfile)
				r.Post("/", h.CreateProfile)
				r.Put("/", h.UpdateProfile)
			})
		})

		// Org routes
		r.Route("/orgs", func(r chi.Router) {
			r.Post("/", h.UpsertOrg)
			r.Get("/{id}/holidays", h.ListHolidays)
			r.Post("/{id}/holidays", h.CreateHoliday)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
