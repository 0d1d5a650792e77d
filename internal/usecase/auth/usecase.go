package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/nexly/rag-backend/internal/entity"
	"github.com/nexly/rag-backend/internal/pkg/token"
	"github.com/nexly/rag-backend/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthUsecase implements token issue and refresh
type AuthUsecase struct {
	userRepo repository.UserRepository
	tokens   *token.Manager
	logger   *zap.Logger
}

func NewUsecase(
	userRepo repository.UserRepository,
	tokens *token.Manager,
	logger *zap.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// ObtainTokenPair verifies the credentials and issues a fresh access and
// refresh token pair.
func (uc *AuthUsecase) ObtainTokenPair(ctx context.Context, username, password string) (*entity.TokenPairResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			// Same error as a bad password so usernames cannot be probed
			return nil, entity.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.IsActive {
		return nil, entity.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, entity.ErrInvalidCredentials
	}

	access, err := uc.tokens.IssueAccess(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := uc.tokens.IssueRefresh(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	ctxzap.Info(ctx, "token pair issued", zap.String("username", user.Username))

	return &entity.TokenPairResponse{
		Access:  access,
		Refresh: refresh,
	}, nil
}

// RefreshAccessToken exchanges a valid refresh token for a new access token
// with an independent expiry.
func (uc *AuthUsecase) RefreshAccessToken(ctx context.Context, refreshToken string) (*entity.AccessTokenResponse, error) {
	claims, err := uc.tokens.Verify(refreshToken, token.TypeRefresh)
	if err != nil {
		return nil, err
	}

	// The user may have been deactivated since the refresh token was issued
	user, err := uc.userRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, entity.ErrTokenInvalid
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.IsActive {
		return nil, entity.ErrUserInactive
	}

	access, err := uc.tokens.IssueAccess(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	ctxzap.Info(ctx, "access token refreshed", zap.String("username", user.Username))

	return &entity.AccessTokenResponse{Access: access}, nil
}
