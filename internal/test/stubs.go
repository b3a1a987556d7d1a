package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ntroshin/orderflow/internal/domain/model"
	"github.com/ntroshin/orderflow/internal/domain/repository"
)

// TokenParserStub implements the middleware token parsing contract.
type TokenParserStub struct {
	ID      int64
	Err     error
	ParseFn func(string) (int64, error)
}

// ParseToken either delegates to the override or returns the predefined result.
func (s TokenParserStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	if s.Err != nil {
		return 0, s.Err
	}
	return s.ID, nil
}

// CredentialVerifierStub accepts a single configured credential.
type CredentialVerifierStub struct {
	Accept string
}

// Verify reports whether presented matches the configured credential.
func (s CredentialVerifierStub) Verify(presented string) bool {
	return presented != "" && presented == s.Accept
}

// EngineFacadeStub provides controllable behaviour for HTTP handler tests.
type EngineFacadeStub struct {
	CreateFn  func(context.Context, repository.OrderDraft) (*model.Order, error)
	OrderFn   func(context.Context, int64, int64) (*model.Order, error)
	OrdersFn  func(context.Context, int64) ([]model.Order, error)
	AdvanceFn func(context.Context, int64, string) (*model.Order, error)
	ApproveFn func(context.Context, int64, int64, string) (*model.Order, error)
	RejectFn  func(context.Context, int64, int64, string) (*model.Order, error)
	HealthFn  func(context.Context) error
}

// CreateOrder delegates to the provided function or returns a default order.
func (s EngineFacadeStub) CreateOrder(ctx context.Context, draft repository.OrderDraft) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, draft)
	}
	return &model.Order{ID: 1, Status: model.OrderStatusNew, PlacedBy: draft.PlacedBy}, nil
}

// Order delegates to the provided function or returns a default order.
func (s EngineFacadeStub) Order(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, userID, orderID)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusNew, PlacedBy: userID}, nil
}

// Orders returns predefined orders for the given user.
func (s EngineFacadeStub) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID)
	}
	return []model.Order{{ID: 1, Status: model.OrderStatusNew, PlacedBy: userID}}, nil
}

// AdvanceOrder delegates to the provided function or echoes a paid order.
func (s EngineFacadeStub) AdvanceOrder(ctx context.Context, orderID int64, transition string) (*model.Order, error) {
	if s.AdvanceFn != nil {
		return s.AdvanceFn(ctx, orderID, transition)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusPaid}, nil
}

// ApproveOrder delegates to the provided function or approves the order.
func (s EngineFacadeStub) ApproveOrder(ctx context.Context, orderID, approverID int64, token string) (*model.Order, error) {
	if s.ApproveFn != nil {
		return s.ApproveFn(ctx, orderID, approverID, token)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusApproved}, nil
}

// RejectOrder delegates to the provided function or cancels the order.
func (s EngineFacadeStub) RejectOrder(ctx context.Context, orderID, approverID int64, token string) (*model.Order, error) {
	if s.RejectFn != nil {
		return s.RejectFn(ctx, orderID, approverID, token)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusCanceled}, nil
}

// Health reports configured readiness.
func (s EngineFacadeStub) Health(ctx context.Context) error {
	if s.HealthFn != nil {
		return s.HealthFn(ctx)
	}
	return nil
}

// TaskCompletion records terminal task handling during worker tests.
type TaskCompletion struct {
	TaskID int64
	Error  string
	Failed bool
}

// WorkerFacadeStub mimics worker interactions with the application facade.
type WorkerFacadeStub struct {
	Batches     [][]model.Task
	TasksFn     func(context.Context, int) ([]model.Task, error)
	NotifyFn    func(context.Context, int64) error
	InvoiceFn   func(context.Context, int64) error
	Completions []TaskCompletion

	mu             sync.Mutex
	tasksCallCount int32
}

// Lock exposes the internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases a previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// TasksForProcessing returns batches from the configured queue.
func (s *WorkerFacadeStub) TasksForProcessing(ctx context.Context, limit int) ([]model.Task, error) {
	if s.TasksFn != nil {
		return s.TasksFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.tasksCallCount, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// NotifyApprovers delegates to the override or succeeds.
func (s *WorkerFacadeStub) NotifyApprovers(ctx context.Context, orderID int64) error {
	if s.NotifyFn != nil {
		return s.NotifyFn(ctx, orderID)
	}
	return nil
}

// SendInvoice delegates to the override or succeeds.
func (s *WorkerFacadeStub) SendInvoice(ctx context.Context, orderID int64) error {
	if s.InvoiceFn != nil {
		return s.InvoiceFn(ctx, orderID)
	}
	return nil
}

// CompleteTask records successful completion.
func (s *WorkerFacadeStub) CompleteTask(_ context.Context, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Completions = append(s.Completions, TaskCompletion{TaskID: taskID})
	return nil
}

// RecordTaskError records a transient failure.
func (s *WorkerFacadeStub) RecordTaskError(_ context.Context, taskID int64, taskErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Completions = append(s.Completions, TaskCompletion{TaskID: taskID, Error: taskErr})
	return nil
}

// FailTask records a permanent failure.
func (s *WorkerFacadeStub) FailTask(_ context.Context, taskID int64, taskErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Completions = append(s.Completions, TaskCompletion{TaskID: taskID, Error: taskErr, Failed: true})
	return nil
}

// IdempotencyStoreStub keeps reservations in memory.
type IdempotencyStoreStub struct {
	mu      sync.Mutex
	Records map[string]*model.IdempotencyRecord
}

func idemKey(caller, route, key string) string {
	return caller + "|" + route + "|" + key
}

// Reserve claims the key or returns the live record.
func (s *IdempotencyStoreStub) Reserve(_ context.Context, caller, route, key string, ttl time.Duration) (*model.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Records == nil {
		s.Records = make(map[string]*model.IdempotencyRecord)
	}
	k := idemKey(caller, route, key)
	if rec, ok := s.Records[k]; ok {
		return rec, false, nil
	}
	rec := &model.IdempotencyRecord{
		Caller:    caller,
		Route:     route,
		Key:       key,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}
	s.Records[k] = rec
	return rec, true, nil
}

// Complete stores the captured response.
func (s *IdempotencyStoreStub) Complete(_ context.Context, caller, route, key string, status int, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.Records[idemKey(caller, route, key)]; ok {
		rec.ResponseStatus = &status
		rec.ResponseBody = body
	}
	return nil
}
