package genai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/nexly/rag-backend/internal/config"
	"github.com/nexly/rag-backend/internal/entity"
	"github.com/nexly/rag-backend/internal/integration/common"
	pkghttp "github.com/nexly/rag-backend/pkg/http"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.GenAIConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.GenAIConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger,
			pkghttp.WithAuthHeader("x-goog-api-key", cfg.Token)),
		config: cfg,
		logger: logger,
	}
}

// Generate sends a prompt to the generative text service and returns the
// reply verbatim. An empty or disallowed model falls back to the configured
// default; the call is never retried here.
func (c *Connector) Generate(ctx context.Context, prompt, model string, temperature float64) (string, error) {
	if model == "" || !c.config.IsModelAllowed(model) {
		model = c.config.Model
	}

	endpoint := fmt.Sprintf("/v1beta/models/%s:generateContent", model)

	ctxzap.Info(ctx, "generating reply via text generation service",
		zap.String("model", model),
		zap.Float64("temperature", temperature),
	)

	req := &entity.GenAIGenerateRequest{
		Contents: []entity.GenAIContent{
			{
				Role:  "user",
				Parts: []entity.GenAIPart{{Text: prompt}},
			},
		},
		GenerationConfig: &entity.GenAIGenerationConfig{
			Temperature: temperature,
		},
	}

	var resp entity.GenAIGenerateResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty candidates in generation response", entity.ErrUpstreamFailed)
	}

	var parts []string
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}

	reply := strings.TrimSpace(strings.Join(parts, ""))
	ctxzap.Info(ctx, "reply generated successfully", zap.Int("reply_length", len(reply)))

	return reply, nil
}

// Model returns the configured default model identifier.
func (c *Connector) Model() string {
	return c.config.Model
}
