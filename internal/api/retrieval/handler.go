package retrieval

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
	pkghttp "github.com/nexly/rag-backend/pkg/http"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   RetrievalUsecase
	validator *validator.Validator
}

func NewHandler(usecase RetrievalUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// TestQuery handles POST /api/test-query/ - semantic search against the
// vector store
func (h *Handler) TestQuery(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "TestQuery")

	var req entity.VectorQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateVectorQuery(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctxzap.Info(ctx, "handling vector query", zap.Int("top_k", req.TopK))

	resp, err := h.usecase.Query(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "vector query failed", zap.Error(err))

	var netErr *pkghttp.NetworkError
	var httpErr *pkghttp.HTTPError

	switch {
	case errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidParameter):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &netErr):
		response.Error(w, http.StatusServiceUnavailable, "vector search service is unavailable")
	case errors.Is(err, entity.ErrUpstreamFailed), errors.As(err, &httpErr):
		response.Error(w, http.StatusBadGateway, "vector search service request failed")
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
