package queue

import (
	"context"
	"sync"
	"time"

	"github.com/nexly/rag-backend/internal/entity"
	"go.uber.org/zap"
)

const dequeueTimeout = 5 * time.Second

// Generator is the external text generation dependency of the worker.
type Generator interface {
	Generate(ctx context.Context, prompt, model string, temperature float64) (string, error)
}

// Worker consumes chat tasks from the broker, performs the generation call
// and delivers the result back through the result store.
type Worker struct {
	broker    Broker
	generator Generator
	workers   int
	logger    *zap.Logger
}

func NewWorker(broker Broker, generator Generator, workers int, logger *zap.Logger) *Worker {
	return &Worker{
		broker:    broker,
		generator: generator,
		workers:   workers,
		logger:    logger,
	}
}

// Run starts the worker pool and blocks until ctx is cancelled. In-flight
// tasks are drained before returning.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("starting chat worker pool", zap.Int("workers", w.workers))

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.loop(ctx, id)
		}(i)
	}

	wg.Wait()
	w.logger.Info("chat worker pool stopped")
}

func (w *Worker) loop(ctx context.Context, id int) {
	logger := w.logger.With(zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		task, err := w.broker.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("failed to dequeue task", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		if task == nil {
			continue
		}

		w.process(ctx, logger, task)
	}
}

func (w *Worker) process(ctx context.Context, logger *zap.Logger, task *entity.ChatTask) {
	logger = logger.With(zap.String("task_id", task.TaskID))

	// A task picked up before shutdown still runs to completion and delivers
	// its result; cancellation only stops the dequeue loop. Aborting here
	// would drop the result while the claim key keeps a redelivery from
	// ever running.
	ctx = context.WithoutCancel(ctx)

	claimed, err := w.broker.Claim(ctx, task.TaskID)
	if err != nil {
		logger.Error("failed to claim task", zap.Error(err))
		return
	}
	if !claimed {
		logger.Warn("dropping redelivered task, already claimed")
		return
	}

	logger.Info("processing chat task",
		zap.String("model", task.Model),
		zap.String("requester", task.Requester),
	)

	result := &entity.ChatTaskResult{
		TaskID: task.TaskID,
		Model:  task.Model,
	}

	reply, err := w.generator.Generate(ctx, task.Message, task.Model, task.Temperature)
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		result.Error = err.Error()
	} else {
		result.Reply = reply
	}

	if err := w.broker.PushResult(ctx, result); err != nil {
		logger.Error("failed to deliver result", zap.Error(err))
		return
	}

	logger.Info("chat task completed", zap.Bool("success", result.Error == ""))
}
