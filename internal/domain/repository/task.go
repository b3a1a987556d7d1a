package repository

import (
	"context"
	"time"

	"github.com/ntroshin/orderflow/internal/domain/model"
)

// TaskRepository describes the durable outbox of asynchronous side effects.
type TaskRepository interface {
	// Enqueue inserts a pending task, due immediately.
	Enqueue(ctx context.Context, kind model.TaskKind, orderID int64) (*model.Task, error)
	// ClaimDue picks up to limit due pending tasks, increments their attempt
	// counters and pushes their next attempt into the future by lease
	// doubled per prior attempt. Claimed rows are skipped by concurrent
	// pollers, so a task runs on one worker at a time.
	ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]model.Task, error)
	MarkDone(ctx context.Context, taskID int64) error
	// RecordError keeps the task pending for its already scheduled retry.
	RecordError(ctx context.Context, taskID int64, taskErr string) error
	// MarkFailed terminally fails the task; it will not run again.
	MarkFailed(ctx context.Context, taskID int64, taskErr string) error
}
