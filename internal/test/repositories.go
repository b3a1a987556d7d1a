package test

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/ntroshin/orderflow/internal/domain/errors"
	"github.com/ntroshin/orderflow/internal/domain/gateway"
	"github.com/ntroshin/orderflow/internal/domain/model"
	"github.com/ntroshin/orderflow/internal/domain/repository"
)

// OrderRepositoryStub keeps orders in memory and records transitions.
type OrderRepositoryStub struct {
	mu          sync.Mutex
	nextID      int64
	ByID        map[int64]*model.Order
	Transitions []string

	CreateFn     func(context.Context, repository.OrderDraft) (*model.Order, error)
	TransitionFn func(context.Context, int64, string, model.TaskKind) (*model.Order, error)
}

// Create stores the draft as a new order or delegates to the override.
func (s *OrderRepositoryStub) Create(ctx context.Context, draft repository.OrderDraft) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, draft)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.Order)
	}
	s.nextID++
	order := &model.Order{
		ID:                s.nextID,
		Status:            model.OrderStatusNew,
		CustomerType:      draft.CustomerType,
		PaymentMethod:     draft.PaymentMethod,
		LegalEntityID:     draft.LegalEntityID,
		DeliveryAddressID: draft.DeliveryAddressID,
		PlacedBy:          draft.PlacedBy,
		CustomerName:      draft.CustomerName,
		CustomerPhone:     draft.CustomerPhone,
		AddressText:       draft.AddressText,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	for _, item := range draft.Items {
		order.Items = append(order.Items, model.OrderItem{ProductID: item.ProductID, Qty: item.Qty})
	}
	order.RecalcTotals()
	s.ByID[order.ID] = order
	return order, nil
}

// GetByID returns the stored order or domain ErrNotFound.
func (s *OrderRepositoryStub) GetByID(_ context.Context, orderID int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.ByID[orderID]; ok {
		return order, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListForUser returns orders placed by the user.
func (s *OrderRepositoryStub) ListForUser(_ context.Context, userID int64) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	for _, order := range s.ByID {
		if order.PlacedBy == userID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

// Transition applies the lifecycle machine against the stored order.
func (s *OrderRepositoryStub) Transition(ctx context.Context, orderID int64, name string, followUp model.TaskKind) (*model.Order, error) {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, orderID, name, followUp)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.ByID[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	target, err := model.Lifecycle.Apply(name, order.Status)
	if err != nil {
		return nil, err
	}
	order.Status = target
	s.Transitions = append(s.Transitions, name)
	return order, nil
}

// TaskRepositoryStub keeps outbox tasks in memory.
type TaskRepositoryStub struct {
	mu     sync.Mutex
	nextID int64
	Tasks  []*model.Task

	ClaimFn func(context.Context, int, time.Duration) ([]model.Task, error)
}

// Enqueue appends a pending task.
func (s *TaskRepositoryStub) Enqueue(_ context.Context, kind model.TaskKind, orderID int64) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	task := &model.Task{ID: s.nextID, Kind: kind, OrderID: orderID, Status: model.TaskStatusPending, CreatedAt: time.Now()}
	s.Tasks = append(s.Tasks, task)
	return task, nil
}

// ClaimDue returns pending tasks up to limit or delegates to the override.
func (s *TaskRepositoryStub) ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]model.Task, error) {
	if s.ClaimFn != nil {
		return s.ClaimFn(ctx, limit, lease)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var claimed []model.Task
	for _, task := range s.Tasks {
		if task.Status != model.TaskStatusPending || len(claimed) >= limit {
			continue
		}
		task.Attempts++
		claimed = append(claimed, *task)
	}
	return claimed, nil
}

// MarkDone moves the task to done.
func (s *TaskRepositoryStub) MarkDone(_ context.Context, taskID int64) error {
	return s.setStatus(taskID, model.TaskStatusDone, "")
}

// RecordError keeps the task pending and records the error.
func (s *TaskRepositoryStub) RecordError(_ context.Context, taskID int64, taskErr string) error {
	return s.setStatus(taskID, model.TaskStatusPending, taskErr)
}

// MarkFailed terminally fails the task.
func (s *TaskRepositoryStub) MarkFailed(_ context.Context, taskID int64, taskErr string) error {
	return s.setStatus(taskID, model.TaskStatusFailed, taskErr)
}

func (s *TaskRepositoryStub) setStatus(taskID int64, status model.TaskStatus, taskErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.Tasks {
		if task.ID == taskID {
			task.Status = status
			if taskErr != "" {
				task.LastError = &taskErr
			}
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// MembershipDirectoryStub answers membership questions from fixed data.
type MembershipDirectoryStub struct {
	Members    map[int64][]gateway.Member
	Identities map[int64]int64
}

// HasMembership reports whether the user appears among the entity members.
func (s MembershipDirectoryStub) HasMembership(_ context.Context, userID, entityID int64) (bool, error) {
	for _, m := range s.Members[entityID] {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// MembersWithRole filters entity members by role.
func (s MembershipDirectoryStub) MembersWithRole(_ context.Context, entityID int64, roles []gateway.Role) ([]gateway.Member, error) {
	var out []gateway.Member
	for _, m := range s.Members[entityID] {
		for _, role := range roles {
			if m.Role == role {
				out = append(out, m)
				break
			}
		}
	}
	return out, nil
}

// IsEntityApprover reports whether the messaging identity belongs to an approver.
func (s MembershipDirectoryStub) IsEntityApprover(_ context.Context, entityID, messagingID int64) (bool, error) {
	for _, m := range s.Members[entityID] {
		if m.MessagingID != nil && *m.MessagingID == messagingID {
			for _, role := range gateway.ApproverRoles {
				if m.Role == role {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

// MessagingIdentity resolves a user to a messaging identity when configured.
func (s MembershipDirectoryStub) MessagingIdentity(_ context.Context, userID int64) (*int64, error) {
	if id, ok := s.Identities[userID]; ok {
		return &id, nil
	}
	return nil, nil
}

// HealthCheckerStub reports configured readiness.
type HealthCheckerStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s HealthCheckerStub) HealthCheck(context.Context) error { return s.Err }
