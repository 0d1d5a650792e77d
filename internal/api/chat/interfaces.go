package chat

import (
	"context"

	"github.com/nexly/rag-backend/internal/entity"
)

type ChatUsecase interface {
	Chat(ctx context.Context, req *entity.ChatRequest, principal *entity.Principal) (*entity.ChatResponse, error)
}
