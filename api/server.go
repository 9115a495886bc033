/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/accountings/{accounting}    Whole accounting
  /api/accountings/{accounting}/*  Status queries, exports, journals
  /api/scenarios/*                 Demo scenarios
  /api/reset                       Clear all data

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

// DefaultAllowedOrigins are used when no origins are configured.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/accountings/{accounting}", func(r chi.Router) {
			r.Get("/", h.GetAccounting)
			r.Get("/accounts", h.ListAccounts)
			r.Get("/accounts/export.csv", h.ExportAccounts)
			r.Get("/accounts/{account}", h.GetAccount)
			r.Get("/accounts/{account}/statement.csv", h.ExportStatement)
			r.Get("/budgetaccounts/export.csv", h.ExportBudgetAccounts)
			r.Get("/budgetaccounts/{account}", h.GetBudgetAccount)
			r.Get("/contactaccounts/export.csv", h.ExportContactAccounts)
			r.Get("/contactaccounts/{account}", h.GetContactAccount)
			r.Get("/accountgroups/status.csv", h.ExportAccountGroupStatuses)
			r.Post("/journal", h.ApplyJournal)
		})

		r.Post("/reset", h.ResetDatabase)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
