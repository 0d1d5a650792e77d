package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/nexly/rag-backend/internal/entity"
	"github.com/nexly/rag-backend/internal/pkg/logger"
	"github.com/nexly/rag-backend/internal/pkg/response"
	"github.com/nexly/rag-backend/internal/pkg/validator"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   AuthUsecase
	validator *validator.Validator
}

func NewHandler(usecase AuthUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// ObtainToken handles POST /api/token/ - issue an access+refresh pair
func (h *Handler) ObtainToken(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ObtainToken")

	var req entity.ObtainTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateObtainToken(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.usecase.ObtainTokenPair(ctx, req.Username, req.Password)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, pair)
}

// RefreshToken handles POST /api/token/refresh/ - exchange a refresh token
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "RefreshToken")

	var req entity.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateRefreshToken(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	access, err := h.usecase.RefreshAccessToken(ctx, req.Refresh)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, access)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "auth request failed", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrInvalidCredentials),
		errors.Is(err, entity.ErrUserInactive),
		errors.Is(err, entity.ErrTokenExpired),
		errors.Is(err, entity.ErrTokenInvalid),
		errors.Is(err, entity.ErrWrongTokenType):
		response.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, entity.ErrMissingField):
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
