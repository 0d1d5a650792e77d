package genai

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is a mock generation connector for local runs and tests.
// It echoes the prompt back as the reply.
type MockConnector struct {
	model  string
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		model:  "mock-echo",
		logger: logger,
	}
}

func (m *MockConnector) Generate(ctx context.Context, prompt, model string, temperature float64) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating reply",
		zap.String("model", model),
		zap.Int("prompt_length", len(prompt)),
	)

	return prompt, nil
}

func (m *MockConnector) Model() string {
	return m.model
}
