package vectorsearch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/nexly/rag-backend/internal/config"
	"github.com/nexly/rag-backend/internal/entity"
	"github.com/nexly/rag-backend/internal/integration/common"
	pkghttp "github.com/nexly/rag-backend/pkg/http"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.VectorConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.VectorConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger,
			pkghttp.WithAuthToken(cfg.Token)),
		config: cfg,
		logger: logger,
	}
}

// EmbedQuery converts a query string into an embedding vector via the
// managed embedding model.
func (c *Connector) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	endpoint := fmt.Sprintf("/v1/projects/%s/locations/%s/publishers/google/models/%s:predict",
		c.config.ProjectID, c.config.Region, c.config.EmbeddingModel)

	ctxzap.Debug(ctx, "embedding query", zap.Int("query_length", len(query)))

	req := &entity.EmbedRequest{
		Instances: []entity.EmbedInstance{{Content: query}},
	}

	var resp entity.EmbedResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if len(resp.Predictions) == 0 || len(resp.Predictions[0].Embeddings.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding in prediction response", entity.ErrUpstreamFailed)
	}

	embedding := resp.Predictions[0].Embeddings.Values
	ctxzap.Debug(ctx, "query embedded", zap.Int("dimensions", len(embedding)))

	return embedding, nil
}

// FindNeighbors issues a nearest-neighbor query against the deployed index
// and returns scored datapoint ids.
func (c *Connector) FindNeighbors(ctx context.Context, embedding []float64, topK int) ([]entity.Neighbor, error) {
	endpoint := fmt.Sprintf("/v1/projects/%s/locations/%s/indexEndpoints/%s:findNeighbors",
		c.config.ProjectID, c.config.Region, c.config.IndexEndpointID)

	ctxzap.Debug(ctx, "querying vector index",
		zap.Int("dimensions", len(embedding)),
		zap.Int("top_k", topK),
	)

	req := &entity.FindNeighborsRequest{
		DeployedIndexID: c.config.DeployedIndexID,
		Queries: []entity.FindNeighborsQuery{
			{
				Datapoint:     entity.IndexDatapoint{FeatureVector: embedding},
				NeighborCount: topK,
			},
		},
	}

	var resp entity.FindNeighborsResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("find neighbors: %w", err)
	}

	// An index with no matches returns an empty neighbor list; that is a
	// valid response, not an error.
	var neighbors []entity.Neighbor
	for _, nn := range resp.NearestNeighbors {
		for _, hit := range nn.Neighbors {
			neighbors = append(neighbors, entity.Neighbor{
				DatapointID: hit.Datapoint.DatapointID,
				Score:       hit.Distance,
			})
		}
	}

	ctxzap.Debug(ctx, "vector index queried", zap.Int("neighbor_count", len(neighbors)))

	return neighbors, nil
}
