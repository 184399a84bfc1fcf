package reputation

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns report submission and query routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.SubmitReport)
	r.Get("/player/{username}", h.GetPlayer)
	r.Get("/search", h.Search)

	return r
}

// StatsRoutes returns statistics routes
func (h *Handler) StatsRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/global", h.GlobalStats)

	return r
}

// AdminRoutes returns administrative routes.
// Authentication is intentionally absent: any caller can ban.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/players/{username}/ban", h.SetBanned)

	return r
}
