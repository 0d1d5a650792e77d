package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/nexly/rag-backend/internal/entity"
	"github.com/nexly/rag-backend/internal/pkg/response"
	"github.com/nexly/rag-backend/internal/pkg/token"
	"go.uber.org/zap"
)

const apiKeyHeader = "X-API-Key"

type principalContextKey struct{}

// PrincipalFromContext returns the authenticated caller identity, or nil if
// the request did not pass the auth gate.
func PrincipalFromContext(ctx context.Context) *entity.Principal {
	principal, _ := ctx.Value(principalContextKey{}).(*entity.Principal)
	return principal
}

// Auth is the auth gate. It admits requests carrying a valid bearer access
// token, or, when allowAPIKey is set, a matching static API key header.
// Everything else is rejected with 401 before any downstream call.
func Auth(tokens *token.Manager, apiKey string, allowAPIKey bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
				if !ok {
					response.Error(w, http.StatusUnauthorized, "malformed authorization header, expected 'Bearer <token>'")
					return
				}

				claims, err := tokens.Verify(tokenString, token.TypeAccess)
				if err != nil {
					ctxzap.Warn(ctx, "bearer token rejected", zap.Error(err))
					response.Error(w, http.StatusUnauthorized, err.Error())
					return
				}

				principal := &entity.Principal{
					UserID:   claims.Subject,
					Username: claims.Username,
				}
				next.ServeHTTP(w, r.WithContext(withPrincipal(ctx, principal)))
				return
			}

			if allowAPIKey && apiKey != "" {
				if key := r.Header.Get(apiKeyHeader); key != "" {
					if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
						next.ServeHTTP(w, r.WithContext(withPrincipal(ctx, entity.AnonymousAPIClient())))
						return
					}

					ctxzap.Warn(ctx, "API key rejected")
					response.Error(w, http.StatusUnauthorized, "invalid API key")
					return
				}
			}

			response.Error(w, http.StatusUnauthorized, "authentication credentials were not provided")
		})
	}
}

func withPrincipal(ctx context.Context, principal *entity.Principal) context.Context {
	ctx = context.WithValue(ctx, principalContextKey{}, principal)
	return ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(zap.String("caller", principal.Username)))
}
