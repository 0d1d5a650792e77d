package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat routes behind the auth gate middleware
func RegisterRoutes(r chi.Router, h *Handler, authGate func(http.Handler) http.Handler) {
	r.Route("/api/chat", func(r chi.Router) {
		r.Use(authGate)
		r.Post("/", h.Chat)
	})
}
