package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/ntroshin/orderflow/internal/domain/errors"
	"github.com/ntroshin/orderflow/internal/domain/model"
)

// TaskFacade exposes the subset of application functionality required by the worker.
type TaskFacade interface {
	TasksForProcessing(ctx context.Context, limit int) ([]model.Task, error)
	NotifyApprovers(ctx context.Context, orderID int64) error
	SendInvoice(ctx context.Context, orderID int64) error
	CompleteTask(ctx context.Context, taskID int64) error
	RecordTaskError(ctx context.Context, taskID int64, taskErr string) error
	FailTask(ctx context.Context, taskID int64, taskErr string) error
}

// TaskProcessor polls the task outbox and executes side effects concurrently.
type TaskProcessor struct {
	facade       TaskFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	maxAttempts  int
	logger       *slog.Logger

	jobs   chan model.Task
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewTaskProcessor constructs the task processor worker pool.
func NewTaskProcessor(facade TaskFacade, pollInterval time.Duration, batchSize, workers, maxAttempts int, logger *slog.Logger) *TaskProcessor {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &TaskProcessor{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		maxAttempts:  maxAttempts,
		logger:       logger,
		jobs:         make(chan model.Task, batchSize*workers),
	}
}

// Start launches background processing.
func (p *TaskProcessor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *TaskProcessor) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *TaskProcessor) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *TaskProcessor) fetchAndDispatch(ctx context.Context) {
	tasks, err := p.facade.TasksForProcessing(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("fetch tasks for processing failed", slog.String("error", err.Error()))
		return
	}
	for _, task := range tasks {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- task:
		}
	}
}

func (p *TaskProcessor) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handleTask(ctx, task)
		}
	}
}

func (p *TaskProcessor) handleTask(ctx context.Context, task model.Task) {
	err := p.execute(ctx, task)
	if err == nil {
		if err := p.facade.CompleteTask(ctx, task.ID); err != nil {
			p.logger.Error("complete task failed",
				slog.Int64("task", task.ID), slog.String("error", err.Error()))
		}
		return
	}

	// A vanished order or an unrecognized kind cannot succeed on a later
	// attempt; everything else is presumed transient and retried under the
	// attempt bound. The claim already scheduled the next attempt, so a
	// retryable error only needs to be recorded. Attempts includes the one
	// that just ran.
	permanent := errors.Is(err, domainErrors.ErrNotFound) || errors.Is(err, errUnknownTaskKind)
	if !permanent && task.Attempts < p.maxAttempts {
		p.logger.Warn("task attempt failed, will retry",
			slog.Int64("task", task.ID),
			slog.String("kind", string(task.Kind)),
			slog.Int("attempt", task.Attempts),
			slog.String("error", err.Error()))
		if err := p.facade.RecordTaskError(ctx, task.ID, err.Error()); err != nil {
			p.logger.Error("record task error failed",
				slog.Int64("task", task.ID), slog.String("error", err.Error()))
		}
		return
	}

	reason := err.Error()
	if !permanent {
		reason = domainErrors.ErrRetriesExhausted.Error() + ": " + reason
	}
	p.logger.Error("task failed permanently",
		slog.Int64("task", task.ID),
		slog.String("kind", string(task.Kind)),
		slog.Int64("order", task.OrderID),
		slog.Int("attempt", task.Attempts),
		slog.String("error", reason))
	if err := p.facade.FailTask(ctx, task.ID, reason); err != nil {
		p.logger.Error("fail task failed",
			slog.Int64("task", task.ID), slog.String("error", err.Error()))
	}
}

var errUnknownTaskKind = errors.New("unknown task kind")

func (p *TaskProcessor) execute(ctx context.Context, task model.Task) error {
	switch task.Kind {
	case model.TaskNotifyApprovers:
		return p.facade.NotifyApprovers(ctx, task.OrderID)
	case model.TaskSendInvoice:
		return p.facade.SendInvoice(ctx, task.OrderID)
	default:
		return fmt.Errorf("%w %q", errUnknownTaskKind, string(task.Kind))
	}
}
