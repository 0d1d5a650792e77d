package auth

import (
	"context"

	"github.com/nexly/rag-backend/internal/entity"
)

type AuthUsecase interface {
	ObtainTokenPair(ctx context.Context, username, password string) (*entity.TokenPairResponse, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*entity.AccessTokenResponse, error)
}
