package app

import (
	"context"
	"time"

	"github.com/ntroshin/orderflow/internal/domain/model"
	"github.com/ntroshin/orderflow/internal/domain/repository"
	"github.com/ntroshin/orderflow/internal/usecase"
)

// HealthChecker reports storage availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// OrderFacade aggregates use cases behind a single application surface
// consumed by HTTP handlers and the task worker.
type OrderFacade struct {
	orders    *usecase.OrderUseCase
	approvals *usecase.ApprovalUseCase
	workflow  *usecase.WorkflowUseCase
	tasks     repository.TaskRepository
	health    HealthChecker
	taskLease time.Duration
}

// NewOrderFacade constructs OrderFacade.
func NewOrderFacade(
	orders *usecase.OrderUseCase,
	approvals *usecase.ApprovalUseCase,
	workflow *usecase.WorkflowUseCase,
	tasks repository.TaskRepository,
	health HealthChecker,
	taskLease time.Duration,
) *OrderFacade {
	return &OrderFacade{
		orders:    orders,
		approvals: approvals,
		workflow:  workflow,
		tasks:     tasks,
		health:    health,
		taskLease: taskLease,
	}
}

func (f *OrderFacade) CreateOrder(ctx context.Context, draft repository.OrderDraft) (*model.Order, error) {
	return f.orders.Create(ctx, draft)
}

func (f *OrderFacade) Order(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	return f.orders.Get(ctx, userID, orderID)
}

func (f *OrderFacade) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.orders.List(ctx, userID)
}

func (f *OrderFacade) AdvanceOrder(ctx context.Context, orderID int64, transition string) (*model.Order, error) {
	return f.orders.Advance(ctx, orderID, transition)
}

func (f *OrderFacade) ApproveOrder(ctx context.Context, orderID, approverID int64, token string) (*model.Order, error) {
	return f.approvals.Approve(ctx, orderID, approverID, token)
}

func (f *OrderFacade) RejectOrder(ctx context.Context, orderID, approverID int64, token string) (*model.Order, error) {
	return f.approvals.Reject(ctx, orderID, approverID, token)
}

func (f *OrderFacade) TasksForProcessing(ctx context.Context, limit int) ([]model.Task, error) {
	return f.tasks.ClaimDue(ctx, limit, f.taskLease)
}

func (f *OrderFacade) NotifyApprovers(ctx context.Context, orderID int64) error {
	return f.workflow.NotifyApprovers(ctx, orderID)
}

func (f *OrderFacade) SendInvoice(ctx context.Context, orderID int64) error {
	return f.workflow.SendInvoice(ctx, orderID)
}

func (f *OrderFacade) CompleteTask(ctx context.Context, taskID int64) error {
	return f.tasks.MarkDone(ctx, taskID)
}

func (f *OrderFacade) RecordTaskError(ctx context.Context, taskID int64, taskErr string) error {
	return f.tasks.RecordError(ctx, taskID, taskErr)
}

func (f *OrderFacade) FailTask(ctx context.Context, taskID int64, taskErr string) error {
	return f.tasks.MarkFailed(ctx, taskID, taskErr)
}

func (f *OrderFacade) Health(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
