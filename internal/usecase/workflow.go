package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	domainErrors "github.com/ntroshin/orderflow/internal/domain/errors"
	"github.com/ntroshin/orderflow/internal/domain/gateway"
	"github.com/ntroshin/orderflow/internal/domain/model"
	"github.com/ntroshin/orderflow/internal/domain/repository"
	"github.com/ntroshin/orderflow/internal/pkg/auth"
)

const (
	sendAttempts = 3
	sendBackoff  = 500 * time.Millisecond
)

// WorkflowUseCase executes the asynchronous side effects of order lifecycle
// events: approver notifications and invoice delivery. Both run off a claimed
// outbox task and must tolerate re-execution, transient delivery failures are
// retried in place before the task itself is rescheduled.
type WorkflowUseCase struct {
	orders      repository.OrderRepository
	memberships gateway.MembershipDirectory
	entities    gateway.EntityDirectory
	messenger   gateway.Messenger
	invoices    gateway.InvoiceRenderer
	signer      *auth.ActionSigner
}

// NewWorkflowUseCase constructs WorkflowUseCase.
func NewWorkflowUseCase(
	orders repository.OrderRepository,
	memberships gateway.MembershipDirectory,
	entities gateway.EntityDirectory,
	messenger gateway.Messenger,
	invoices gateway.InvoiceRenderer,
	signer *auth.ActionSigner,
) *WorkflowUseCase {
	return &WorkflowUseCase{
		orders:      orders,
		memberships: memberships,
		entities:    entities,
		messenger:   messenger,
		invoices:    invoices,
		signer:      signer,
	}
}

// NotifyApprovers sends an interactive approval request to every reachable
// approver of the order's legal entity. Members without a messaging identity
// are skipped; an entity with no reachable approvers is not an error.
func (u *WorkflowUseCase) NotifyApprovers(ctx context.Context, orderID int64) error {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.LegalEntityID == nil {
		return nil
	}
	if !model.Lifecycle.Can(model.TransitionApprove, order.Status) {
		// Already decided; re-notifying would only confuse approvers.
		return nil
	}

	entity, err := u.entities.Entity(ctx, *order.LegalEntityID)
	if err != nil {
		return err
	}
	members, err := u.memberships.MembersWithRole(ctx, entity.ID, gateway.ApproverRoles)
	if err != nil {
		return err
	}

	text := approvalText(order, entity.Name)
	for _, member := range members {
		if member.MessagingID == nil {
			continue
		}
		identity := *member.MessagingID
		token := u.signer.Sign(order.ID, identity)
		actions := []gateway.Action{
			{Text: "Approve", Callback: fmt.Sprintf("approve:%d:%s", order.ID, token)},
			{Text: "Reject", Callback: fmt.Sprintf("reject:%d:%s", order.ID, token)},
		}
		if err := u.sendWithRetry(ctx, func(ctx context.Context) error {
			return u.messenger.SendInteractive(ctx, identity, text, actions)
		}); err != nil {
			return err
		}
	}
	return nil
}

// SendInvoice renders the invoice document and delivers it to the user who
// placed the order. A user without a messaging identity makes the invoice a
// no-op after rendering; the artifact stays on disk.
func (u *WorkflowUseCase) SendInvoice(ctx context.Context, orderID int64) error {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	entityName := ""
	if order.LegalEntityID != nil {
		entity, err := u.entities.Entity(ctx, *order.LegalEntityID)
		if err != nil {
			return err
		}
		entityName = entity.Name
	}

	path, err := u.invoices.Render(ctx, order, entityName)
	if err != nil {
		return err
	}

	identity, err := u.memberships.MessagingIdentity(ctx, order.PlacedBy)
	if err != nil {
		return err
	}
	if identity == nil {
		return nil
	}

	caption := fmt.Sprintf("Invoice for order #%d, total %s", order.ID, order.Total.StringFixed(2))
	return u.sendWithRetry(ctx, func(ctx context.Context) error {
		return u.messenger.SendDocument(ctx, *identity, path, caption)
	})
}

func (u *WorkflowUseCase) sendWithRetry(ctx context.Context, send func(context.Context) error) error {
	backoff := retry.WithMaxRetries(sendAttempts-1, retry.NewExponential(sendBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := send(ctx)
		if errors.Is(err, domainErrors.ErrDeliveryFailure) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func approvalText(order *model.Order, entityName string) string {
	return fmt.Sprintf(
		"Order #%d for %s awaits approval.\nItems: %d, total %s.",
		order.ID, entityName, len(order.Items), order.Total.StringFixed(2),
	)
}
