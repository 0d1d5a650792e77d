package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nexly/rag-backend/internal/entity"
	"go.uber.org/zap"
)

type memBroker struct {
	mu      sync.Mutex
	tasks   []*entity.ChatTask
	claims  map[string]bool
	results []*entity.ChatTaskResult
}

func newMemBroker(tasks ...*entity.ChatTask) *memBroker {
	return &memBroker{tasks: tasks, claims: map[string]bool{}}
}

func (b *memBroker) Enqueue(ctx context.Context, task *entity.ChatTask) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = append(b.tasks, task)
	return nil
}

func (b *memBroker) Dequeue(ctx context.Context, timeout time.Duration) (*entity.ChatTask, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.tasks) == 0 {
		return nil, nil
	}
	task := b.tasks[0]
	b.tasks = b.tasks[1:]
	return task, nil
}

func (b *memBroker) Claim(ctx context.Context, taskID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.claims[taskID] {
		return false, nil
	}
	b.claims[taskID] = true
	return true, nil
}

func (b *memBroker) PushResult(ctx context.Context, result *entity.ChatTaskResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = append(b.results, result)
	return nil
}

func (b *memBroker) WaitResult(ctx context.Context, taskID string, timeout time.Duration) (*entity.ChatTaskResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.results {
		if r.TaskID == taskID {
			return r, nil
		}
	}
	return nil, entity.ErrResultTimeout
}

func (b *memBroker) resultCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.results)
}

type stubGenerator struct {
	err error
}

func (g *stubGenerator) Generate(ctx context.Context, prompt, model string, temperature float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.err != nil {
		return "", g.err
	}
	return "reply to " + prompt, nil
}

func TestWorker_ProcessDeliversResult(t *testing.T) {
	broker := newMemBroker()
	w := NewWorker(broker, &stubGenerator{}, 1, zap.NewNop())

	task := &entity.ChatTask{TaskID: "task-1", Message: "hi", Model: "gemini-2.0-flash", Temperature: 0.4}
	w.process(context.Background(), zap.NewNop(), task)

	result, err := broker.WaitResult(context.Background(), "task-1", time.Second)
	if err != nil {
		t.Fatalf("no result delivered: %v", err)
	}
	if result.Reply != "reply to hi" {
		t.Errorf("unexpected reply: %q", result.Reply)
	}
	if result.Error != "" {
		t.Errorf("unexpected error in result: %q", result.Error)
	}
	if result.Model != "gemini-2.0-flash" {
		t.Errorf("unexpected model: %q", result.Model)
	}
}

func TestWorker_GenerationFailureIsDeliveredAsError(t *testing.T) {
	broker := newMemBroker()
	w := NewWorker(broker, &stubGenerator{err: errors.New("upstream blew up")}, 1, zap.NewNop())

	task := &entity.ChatTask{TaskID: "task-1", Message: "hi"}
	w.process(context.Background(), zap.NewNop(), task)

	result, err := broker.WaitResult(context.Background(), "task-1", time.Second)
	if err != nil {
		t.Fatalf("no result delivered: %v", err)
	}
	if result.Error != "upstream blew up" {
		t.Errorf("expected generation error in result, got %q", result.Error)
	}
	if result.Reply != "" {
		t.Errorf("expected empty reply, got %q", result.Reply)
	}
}

func TestWorker_RedeliveredTaskIsDroppedOnce(t *testing.T) {
	broker := newMemBroker()
	w := NewWorker(broker, &stubGenerator{}, 1, zap.NewNop())

	task := &entity.ChatTask{TaskID: "task-1", Message: "hi"}
	w.process(context.Background(), zap.NewNop(), task)
	w.process(context.Background(), zap.NewNop(), task)

	if got := broker.resultCount(); got != 1 {
		t.Fatalf("expected exactly one result for a redelivered task, got %d", got)
	}
}

func TestWorker_ShutdownDoesNotAbortInFlightTask(t *testing.T) {
	broker := newMemBroker()
	w := NewWorker(broker, &stubGenerator{}, 1, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := &entity.ChatTask{TaskID: "task-1", Message: "hi"}
	w.process(ctx, zap.NewNop(), task)

	result, err := broker.WaitResult(context.Background(), "task-1", time.Second)
	if err != nil {
		t.Fatalf("result dropped on shutdown: %v", err)
	}
	if result.Reply != "reply to hi" {
		t.Errorf("unexpected reply: %q", result.Reply)
	}
	if result.Error != "" {
		t.Errorf("expected completed generation, got error %q", result.Error)
	}
}

func TestWorker_RunDrainsQueueAndStops(t *testing.T) {
	broker := newMemBroker(
		&entity.ChatTask{TaskID: "task-1", Message: "one"},
		&entity.ChatTask{TaskID: "task-2", Message: "two"},
	)
	w := NewWorker(broker, &stubGenerator{}, 2, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for broker.resultCount() < 2 {
		select {
		case <-deadline:
			t.Fatal("worker did not process queued tasks in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker pool did not stop after cancellation")
	}
}
