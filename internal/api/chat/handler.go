package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/nexly/rag-backend/internal/api/middleware"
	"github.com/nexly/rag-backend/internal/entity"
	"github.com/nexly/rag-backend/internal/pkg/logger"
	"github.com/nexly/rag-backend/internal/pkg/response"
	"github.com/nexly/rag-backend/internal/pkg/validator"
	pkghttp "github.com/nexly/rag-backend/pkg/http"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   ChatUsecase
	validator *validator.Validator
}

func NewHandler(usecase ChatUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// Chat handles POST /api/chat/ - forward a message to the generative service
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Validation happens before any external call
	if err := h.validator.ValidateChat(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := middleware.PrincipalFromContext(ctx)

	ctxzap.Info(ctx, "handling chat message",
		zap.Int("message_length", len(req.Message)),
		zap.String("model", req.Model),
	)

	resp, err := h.usecase.Chat(ctx, &req, principal)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "chat request failed", zap.Error(err))

	var netErr *pkghttp.NetworkError
	var httpErr *pkghttp.HTTPError

	switch {
	case errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidParameter):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrUpstreamUnavailable), errors.As(err, &netErr):
		response.Error(w, http.StatusServiceUnavailable, "text generation service is unavailable")
	case errors.Is(err, entity.ErrUpstreamFailed), errors.As(err, &httpErr):
		response.Error(w, http.StatusBadGateway, "text generation service request failed")
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
