package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Get("/health", h.Health)

		// Protected routes (auth optional when no key is configured)
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.apiKey))

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", h.CreateProject)
				r.Get("/", h.ListProjects)
				r.Get("/{id}", h.GetProject)
				r.Patch("/{id}", h.UpdateProject)
				r.Delete("/{id}", h.DeleteProject)
			})

			r.Route("/logs", func(r chi.Router) {
				r.Post("/", h.CreateTimeLog)
				r.Get("/", h.ListTimeLogs)
				r.Get("/{id}", h.GetTimeLog)
				r.Patch("/{id}", h.UpdateTimeLog)
				r.Delete("/{id}", h.DeleteTimeLog)
			})

			r.Route("/journal", func(r chi.Router) {
				r.Post("/", h.CreateJournalEntry)
				r.Get("/", h.ListJournalEntries)
				r.Delete("/{id}", h.DeleteJournalEntry)
			})

			r.Get("/portfolio", h.GetPortfolio)
			r.Put("/portfolio/target", h.UpdateTargetAllocation)

			r.Route("/insights", func(r chi.Router) {
				r.Get("/", h.ListInsights)
				r.Post("/refresh", h.RefreshInsights)
				r.Post("/{id}/dismiss", h.DismissInsight)
				r.Post("/{id}/acted", h.MarkInsightActedOn)
				r.Post("/{id}/feedback", h.SetInsightFeedback)
			})

			r.Post("/chat", h.Chat)
		})
	})

	return r
}
