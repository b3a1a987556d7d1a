package model

import "time"

// TaskKind identifies an asynchronous side-effect handler.
type TaskKind string

const (
	TaskNotifyApprovers TaskKind = "notify_approvers"
	TaskSendInvoice     TaskKind = "send_invoice"
)

// TaskStatus describes outbox task processing state.
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusDone    TaskStatus = "done"
	TaskStatusFailed  TaskStatus = "failed"
)

// Task is a durable outbox record enqueued in the same transaction as the
// state change it reacts to, so a task never observes a rolled-back order.
type Task struct {
	ID            int64
	EventID       string
	Kind          TaskKind
	OrderID       int64
	Status        TaskStatus
	Attempts      int
	NextAttemptAt time.Time
	LastError     *string
	CreatedAt     time.Time
}
