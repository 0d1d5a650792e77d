package retrieval

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/nexly/rag-backend/internal/entity"
	"github.com/nexly/rag-backend/internal/repository"
	"go.uber.org/zap"
)

// RetrievalUsecase implements the query → embedding → nearest-neighbor →
// document lookup pipeline.
type RetrievalUsecase struct {
	vector    VectorSearchConnector
	chunkRepo repository.ChunkRepository
	logger    *zap.Logger
}

func NewUsecase(
	vector VectorSearchConnector,
	chunkRepo repository.ChunkRepository,
	logger *zap.Logger,
) *RetrievalUsecase {
	return &RetrievalUsecase{
		vector:    vector,
		chunkRepo: chunkRepo,
		logger:    logger,
	}
}

// Query runs a similarity search for the given query string and maps the
// matched datapoints back to document text. An empty result set is a valid
// response, not an error.
func (uc *RetrievalUsecase) Query(ctx context.Context, req *entity.VectorQueryRequest) (*entity.VectorQueryResponse, error) {
	start := time.Now()

	embedding, err := uc.vector.EmbedQuery(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	neighbors, err := uc.vector.FindNeighbors(ctx, embedding, req.TopK)
	if err != nil {
		return nil, fmt.Errorf("find neighbors: %w", err)
	}

	matches, err := uc.resolveNeighbors(ctx, neighbors)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)

	ctxzap.Info(ctx, "vector query completed",
		zap.Int("top_k", req.TopK),
		zap.Int("neighbor_count", len(neighbors)),
		zap.Int("result_count", len(matches)),
		zap.Duration("elapsed", elapsed),
	)

	return &entity.VectorQueryResponse{
		Query:   req.Query,
		Elapsed: fmt.Sprintf("%.2fs", elapsed.Seconds()),
		Results: matches,
	}, nil
}

// resolveNeighbors maps datapoint ids to stored chunks, dropping neighbors
// with no stored document, and orders by descending similarity.
func (uc *RetrievalUsecase) resolveNeighbors(ctx context.Context, neighbors []entity.Neighbor) ([]entity.VectorQueryMatch, error) {
	matches := []entity.VectorQueryMatch{}
	if len(neighbors) == 0 {
		return matches, nil
	}

	ids := make([]string, 0, len(neighbors))
	for _, n := range neighbors {
		ids = append(ids, n.DatapointID)
	}

	chunks, err := uc.chunkRepo.GetByDatapointIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve chunks: %w", err)
	}

	for _, n := range neighbors {
		chunk, ok := chunks[n.DatapointID]
		if !ok {
			ctxzap.Warn(ctx, "neighbor has no stored chunk, skipping",
				zap.String("datapoint_id", n.DatapointID),
			)
			continue
		}

		matches = append(matches, entity.VectorQueryMatch{
			Doc:      chunk.Content,
			Score:    n.Score,
			Metadata: chunk.Metadata,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches, nil
}
