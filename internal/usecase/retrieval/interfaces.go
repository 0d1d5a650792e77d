package retrieval

import (
	"context"

	"github.com/nexly/rag-backend/internal/entity"
)

// VectorSearchConnector is the external embedding service and managed
// vector index.
type VectorSearchConnector interface {
	EmbedQuery(ctx context.Context, query string) ([]float64, error)
	FindNeighbors(ctx context.Context, embedding []float64, topK int) ([]entity.Neighbor, error)
}
