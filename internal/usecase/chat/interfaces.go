package chat

import (
	"context"
	"time"

	"github.com/nexly/rag-backend/internal/entity"
)

// GenAIConnector is the external generative text service.
type GenAIConnector interface {
	Generate(ctx context.Context, prompt, model string, temperature float64) (string, error)
	Model() string
}

// TaskBroker is the async dispatch path: enqueue a task, then block on its
// result with a bounded timeout.
type TaskBroker interface {
	Enqueue(ctx context.Context, task *entity.ChatTask) error
	WaitResult(ctx context.Context, taskID string, timeout time.Duration) (*entity.ChatTaskResult, error)
}
