package app

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "github.com/ntroshin/orderflow/internal/domain/errors"
	"github.com/ntroshin/orderflow/internal/domain/gateway"
	"github.com/ntroshin/orderflow/internal/domain/model"
	"github.com/ntroshin/orderflow/internal/domain/repository"
	"github.com/ntroshin/orderflow/internal/pkg/auth"
	testhelpers "github.com/ntroshin/orderflow/internal/test"
	"github.com/ntroshin/orderflow/internal/usecase"
)

type entityDirectoryStub struct{}

func (entityDirectoryStub) Entity(_ context.Context, entityID int64) (*gateway.LegalEntity, error) {
	return &gateway.LegalEntity{ID: entityID, Name: "Acme LLC"}, nil
}

type messengerStub struct{ sent []int64 }

func (m *messengerStub) SendInteractive(_ context.Context, identity int64, _ string, _ []gateway.Action) error {
	m.sent = append(m.sent, identity)
	return nil
}

func (m *messengerStub) SendDocument(_ context.Context, identity int64, _, _ string) error {
	m.sent = append(m.sent, identity)
	return nil
}

type rendererStub struct{}

func (rendererStub) Render(_ context.Context, order *model.Order, _ string) (string, error) {
	return "/tmp/invoice.html", nil
}

func newFacade() (*OrderFacade, *testhelpers.OrderRepositoryStub, *testhelpers.TaskRepositoryStub) {
	orderRepo := &testhelpers.OrderRepositoryStub{}
	taskRepo := &testhelpers.TaskRepositoryStub{}
	memberships := testhelpers.MembershipDirectoryStub{
		Members: map[int64][]gateway.Member{
			3: {{UserID: 1, Role: gateway.RoleOwner, MessagingID: int64Ptr(700)}},
		},
		Identities: map[int64]int64{7: 700},
	}
	signer := auth.NewActionSigner("approval-secret")

	ordersUC := usecase.NewOrderUseCase(orderRepo, memberships)
	approvalsUC := usecase.NewApprovalUseCase(orderRepo, memberships, signer)
	workflowUC := usecase.NewWorkflowUseCase(orderRepo, memberships, entityDirectoryStub{}, &messengerStub{}, rendererStub{}, signer)

	facade := NewOrderFacade(ordersUC, approvalsUC, workflowUC, taskRepo, testhelpers.HealthCheckerStub{}, 30*time.Second)
	return facade, orderRepo, taskRepo
}

func int64Ptr(v int64) *int64 { return &v }

func TestFacadeCreateAndAdvanceOrder(t *testing.T) {
	facade, _, _ := newFacade()

	draft := repository.OrderDraft{
		PlacedBy:      7,
		CustomerType:  model.CustomerTypeIndividual,
		PaymentMethod: model.PaymentMethodCash,
		CustomerName:  "Jamie Doe",
		CustomerPhone: "+15550100",
		AddressText:   "1 Main St",
		Items:         []repository.OrderDraftItem{{ProductID: 1, Qty: 1}},
	}
	order, err := facade.CreateOrder(context.Background(), draft)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Status != model.OrderStatusNew {
		t.Fatalf("unexpected status %s", order.Status)
	}

	got, err := facade.Order(context.Background(), 7, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.ID != order.ID {
		t.Fatalf("unexpected order %+v", got)
	}

	if _, err := facade.AdvanceOrder(context.Background(), order.ID, model.TransitionCancel); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := facade.AdvanceOrder(context.Background(), order.ID, model.TransitionPay); err == nil {
		t.Fatal("expected illegal transition after cancel")
	}
}

func TestFacadeApprovalFlow(t *testing.T) {
	facade, orderRepo, _ := newFacade()

	draft := repository.OrderDraft{
		PlacedBy:          7,
		CustomerType:      model.CustomerTypeCompany,
		PaymentMethod:     model.PaymentMethodInvoice,
		LegalEntityID:     int64Ptr(3),
		DeliveryAddressID: int64Ptr(5),
		Items:             []repository.OrderDraftItem{{ProductID: 1, Qty: 1}},
	}
	order, err := facade.CreateOrder(context.Background(), draft)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	signer := auth.NewActionSigner("approval-secret")
	approved, err := facade.ApproveOrder(context.Background(), order.ID, 700, signer.Sign(order.ID, 700))
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != model.OrderStatusApproved {
		t.Fatalf("unexpected status %s", approved.Status)
	}
	if len(orderRepo.Transitions) != 1 || orderRepo.Transitions[0] != model.TransitionApprove {
		t.Fatalf("unexpected transitions %v", orderRepo.Transitions)
	}

	if _, err := facade.ApproveOrder(context.Background(), order.ID, 999, signer.Sign(order.ID, 999)); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for unknown approver, got %v", err)
	}
}

func TestFacadeTaskLifecycle(t *testing.T) {
	facade, _, taskRepo := newFacade()

	if _, err := taskRepo.Enqueue(context.Background(), model.TaskNotifyApprovers, 9); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	tasks, err := facade.TasksForProcessing(context.Background(), 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Attempts != 1 {
		t.Fatalf("unexpected claim result %+v", tasks)
	}

	if err := facade.RecordTaskError(context.Background(), tasks[0].ID, "boom"); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if err := facade.FailTask(context.Background(), tasks[0].ID, "gave up"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if taskRepo.Tasks[0].Status != model.TaskStatusFailed {
		t.Fatalf("expected failed status, got %s", taskRepo.Tasks[0].Status)
	}

	if err := facade.CompleteTask(context.Background(), 404); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for missing task, got %v", err)
	}
}

func TestFacadeClaimLeasePassThrough(t *testing.T) {
	taskRepo := &testhelpers.TaskRepositoryStub{ClaimFn: func(_ context.Context, limit int, lease time.Duration) ([]model.Task, error) {
		if limit != 5 || lease != 30*time.Second {
			return nil, errors.New("unexpected claim arguments")
		}
		return nil, nil
	}}
	facade := NewOrderFacade(nil, nil, nil, taskRepo, testhelpers.HealthCheckerStub{}, 30*time.Second)
	if _, err := facade.TasksForProcessing(context.Background(), 5); err != nil {
		t.Fatalf("claim: %v", err)
	}
}

func TestFacadeHealth(t *testing.T) {
	facade, _, _ := newFacade()
	if err := facade.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}

	down := NewOrderFacade(nil, nil, nil, nil, testhelpers.HealthCheckerStub{Err: errors.New("db down")}, time.Second)
	if err := down.Health(context.Background()); err == nil {
		t.Fatal("expected health error")
	}
}
