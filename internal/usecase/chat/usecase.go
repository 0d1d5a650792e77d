package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/nexly/rag-backend/internal/config"
	"github.com/nexly/rag-backend/internal/entity"
	"github.com/nexly/rag-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// ChatUsecase forwards chat messages to the generative service, either
// synchronously or through the task queue.
type ChatUsecase struct {
	genai    GenAIConnector
	broker   TaskBroker
	cfg      config.ChatAsyncConfig
	genaiCfg config.GenAIConnectorConfig
	logger   *zap.Logger
}

func NewUsecase(
	genai GenAIConnector,
	broker TaskBroker,
	cfg config.ChatAsyncConfig,
	genaiCfg config.GenAIConnectorConfig,
	logger *zap.Logger,
) *ChatUsecase {
	return &ChatUsecase{
		genai:    genai,
		broker:   broker,
		cfg:      cfg,
		genaiCfg: genaiCfg,
		logger:   logger,
	}
}

// Chat produces a reply for the given message. With async dispatch enabled
// the request is serialized onto the broker and the call blocks on the
// result store; the HTTP contract is identical either way.
func (uc *ChatUsecase) Chat(ctx context.Context, req *entity.ChatRequest, principal *entity.Principal) (*entity.ChatResponse, error) {
	// An empty or unrecognized model resolves to the default rather than
	// failing the request.
	model := req.Model
	if model == "" || !uc.genaiCfg.IsModelAllowed(model) {
		model = uc.genai.Model()
	}

	temperature := uc.genaiCfg.DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	if !uc.cfg.Enabled {
		reply, err := uc.genai.Generate(ctx, req.Message, model, temperature)
		if err != nil {
			return nil, fmt.Errorf("generate reply: %w", err)
		}

		return &entity.ChatResponse{Reply: reply, Model: model}, nil
	}

	return uc.chatAsync(ctx, req.Message, model, temperature, principal)
}

func (uc *ChatUsecase) chatAsync(ctx context.Context, message, model string, temperature float64, principal *entity.Principal) (*entity.ChatResponse, error) {
	task := &entity.ChatTask{
		TaskID:      uuid.New().String(),
		Message:     message,
		Model:       model,
		Temperature: temperature,
		Requester:   principal.Username,
	}

	ctx = logger.AddFields(ctx, zap.String("task_id", task.TaskID))

	if err := uc.broker.Enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueue chat task: %w", err)
	}

	ctxzap.Info(ctx, "chat task enqueued, waiting for result")

	result, err := uc.broker.WaitResult(ctx, task.TaskID, uc.cfg.ResultTimeout)
	if err != nil {
		if errors.Is(err, entity.ErrResultTimeout) {
			return nil, fmt.Errorf("%w: %v", entity.ErrUpstreamUnavailable, err)
		}
		return nil, fmt.Errorf("wait for chat result: %w", err)
	}

	if result.Error != "" {
		return nil, fmt.Errorf("%w: %s", entity.ErrUpstreamFailed, result.Error)
	}

	return &entity.ChatResponse{Reply: result.Reply, Model: result.Model}, nil
}
