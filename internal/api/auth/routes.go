package auth

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers token routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/token", func(r chi.Router) {
		r.Post("/", h.ObtainToken)
		r.Post("/refresh/", h.RefreshToken)
	})
}
