package vectorsearch

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/nexly/rag-backend/internal/entity"
	"go.uber.org/zap"
)

// MockConnector is a mock vector search connector for local runs and tests.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	ctxzap.Debug(ctx, "[MOCK] embedding query", zap.Int("query_length", len(query)))

	// Fixed-size deterministic vector derived from the query bytes
	embedding := make([]float64, 8)
	for i, b := range []byte(query) {
		embedding[i%8] += float64(b) / 255.0
	}

	return embedding, nil
}

func (m *MockConnector) FindNeighbors(ctx context.Context, embedding []float64, topK int) ([]entity.Neighbor, error) {
	ctxzap.Debug(ctx, "[MOCK] querying vector index", zap.Int("top_k", topK))

	canned := []entity.Neighbor{
		{DatapointID: "chunk-001", Score: 0.93},
		{DatapointID: "chunk-002", Score: 0.87},
		{DatapointID: "chunk-003", Score: 0.71},
	}

	if topK < len(canned) {
		canned = canned[:topK]
	}

	return canned, nil
}
