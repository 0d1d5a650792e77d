package builder

import (
	"context"
	"fmt"

	"github.com/nexly/rag-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// setupRedis creates the broker/result-store client
func setupRedis(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("redis connection established", zap.String("addr", opts.Addr))

	return client, nil
}
