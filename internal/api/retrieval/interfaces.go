package retrieval

import (
	"context"

	"github.com/nexly/rag-backend/internal/entity"
)

type RetrievalUsecase interface {
	Query(ctx context.Context, req *entity.VectorQueryRequest) (*entity.VectorQueryResponse, error)
}
