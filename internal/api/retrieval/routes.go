package retrieval

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers retrieval routes behind the auth gate middleware.
// The test-query endpoint accepts bearer tokens only.
func RegisterRoutes(r chi.Router, h *Handler, authGate func(http.Handler) http.Handler) {
	r.Route("/api/test-query", func(r chi.Router) {
		r.Use(authGate)
		r.Post("/", h.TestQuery)
	})
}
