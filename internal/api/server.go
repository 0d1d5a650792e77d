package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	authapi "github.com/nexly/rag-backend/internal/api/auth"
	chatapi "github.com/nexly/rag-backend/internal/api/chat"
	"github.com/nexly/rag-backend/internal/api/docs"
	"github.com/nexly/rag-backend/internal/api/middleware"
	retrievalapi "github.com/nexly/rag-backend/internal/api/retrieval"
	"github.com/nexly/rag-backend/internal/pkg/response"
	"github.com/nexly/rag-backend/internal/pkg/token"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	authHandler *authapi.Handler,
	chatHandler *chatapi.Handler,
	retrievalHandler *retrievalapi.Handler,
	tokens *token.Manager,
	apiKey string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                 // Recover from panics
	r.Use(chimiddleware.RequestID)                 // Add request ID
	r.Use(middleware.Logger(logger))               // Log requests
	r.Use(chimiddleware.Timeout(60 * time.Second)) // Default timeout

	// Unknown routes get the same structured JSON as every other error
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "route not found")
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Chat accepts either a bearer token or the static API key; test-query
	// accepts bearer tokens only.
	tokenOrKeyGate := middleware.Auth(tokens, apiKey, true)
	tokenOnlyGate := middleware.Auth(tokens, apiKey, false)

	// Register routes
	authapi.RegisterRoutes(r, authHandler)
	chatapi.RegisterRoutes(r, chatHandler, tokenOrKeyGate)
	retrievalapi.RegisterRoutes(r, retrievalHandler, tokenOnlyGate)

	return r
}
