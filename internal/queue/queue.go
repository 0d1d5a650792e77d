package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nexly/rag-backend/internal/config"
	"github.com/nexly/rag-backend/internal/entity"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Broker is the task queue and result store shared by the API server and
// the chat worker.
type Broker interface {
	Enqueue(ctx context.Context, task *entity.ChatTask) error
	Dequeue(ctx context.Context, timeout time.Duration) (*entity.ChatTask, error)
	Claim(ctx context.Context, taskID string) (bool, error)
	PushResult(ctx context.Context, result *entity.ChatTaskResult) error
	WaitResult(ctx context.Context, taskID string, timeout time.Duration) (*entity.ChatTaskResult, error)
}

var _ Broker = &RedisBroker{}

// RedisBroker implements Broker on a Redis list queue with per-task result
// lists. Result delivery is retried with bounded backoff because a dropped
// result would leave the waiting request to time out.
type RedisBroker struct {
	client *redis.Client
	cfg    config.ChatAsyncConfig
	logger *zap.Logger
}

func NewRedisBroker(client *redis.Client, cfg config.ChatAsyncConfig, logger *zap.Logger) *RedisBroker {
	return &RedisBroker{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (b *RedisBroker) Enqueue(ctx context.Context, task *entity.ChatTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal chat task: %w", err)
	}

	if err := b.client.LPush(ctx, b.cfg.Queue, payload).Err(); err != nil {
		return fmt.Errorf("enqueue chat task: %w", err)
	}

	b.logger.Debug("chat task enqueued",
		zap.String("task_id", task.TaskID),
		zap.String("queue", b.cfg.Queue),
	)

	return nil
}

// Dequeue blocks up to timeout for the next task. Returns (nil, nil) when
// the timeout elapses with an empty queue.
func (b *RedisBroker) Dequeue(ctx context.Context, timeout time.Duration) (*entity.ChatTask, error) {
	res, err := b.client.BRPop(ctx, timeout, b.cfg.Queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue chat task: %w", err)
	}

	// BRPop returns [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply length %d", len(res))
	}

	var task entity.ChatTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, fmt.Errorf("unmarshal chat task: %w", err)
	}

	return &task, nil
}

// Claim marks a task id as taken. A redelivered task whose id is already
// claimed must be dropped by the consumer; resending the same prompt is
// safe, running it twice is wasteful.
func (b *RedisBroker) Claim(ctx context.Context, taskID string) (bool, error) {
	claimed, err := b.client.SetNX(ctx, b.cfg.ClaimPrefix+taskID, "1", b.cfg.ClaimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim chat task: %w", err)
	}

	return claimed, nil
}

func (b *RedisBroker) PushResult(ctx context.Context, result *entity.ChatTaskResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal chat result: %w", err)
	}

	key := b.cfg.ResultPrefix + result.TaskID

	err = retry.Do(func() error {
		pipe := b.client.TxPipeline()
		pipe.LPush(ctx, key, payload)
		pipe.Expire(ctx, key, b.cfg.ResultTTL)
		_, err := pipe.Exec(ctx)
		return err
	}, append(b.cfg.Retry.ToRetryOptions(), retry.Context(ctx))...)
	if err != nil {
		return fmt.Errorf("deliver chat result: %w", err)
	}

	b.logger.Debug("chat result delivered", zap.String("task_id", result.TaskID))
	return nil
}

// WaitResult blocks until the worker delivers the result for taskID or the
// timeout elapses.
func (b *RedisBroker) WaitResult(ctx context.Context, taskID string, timeout time.Duration) (*entity.ChatTaskResult, error) {
	res, err := b.client.BRPop(ctx, timeout, b.cfg.ResultPrefix+taskID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, entity.ErrResultTimeout
		}
		return nil, fmt.Errorf("wait for chat result: %w", err)
	}

	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply length %d", len(res))
	}

	var result entity.ChatTaskResult
	if err := json.Unmarshal([]byte(res[1]), &result); err != nil {
		return nil, fmt.Errorf("unmarshal chat result: %w", err)
	}

	return &result, nil
}
