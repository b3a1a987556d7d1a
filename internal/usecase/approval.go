package usecase

import (
	"context"

	domainErrors "github.com/ntroshin/orderflow/internal/domain/errors"
	"github.com/ntroshin/orderflow/internal/domain/gateway"
	"github.com/ntroshin/orderflow/internal/domain/model"
	"github.com/ntroshin/orderflow/internal/domain/repository"
	"github.com/ntroshin/orderflow/internal/pkg/auth"
)

// ApprovalUseCase handles approve and reject decisions arriving from the
// messaging channel on behalf of legal-entity approvers.
type ApprovalUseCase struct {
	orders      repository.OrderRepository
	memberships gateway.MembershipDirectory
	signer      *auth.ActionSigner
}

// NewApprovalUseCase constructs ApprovalUseCase.
func NewApprovalUseCase(orders repository.OrderRepository, memberships gateway.MembershipDirectory, signer *auth.ActionSigner) *ApprovalUseCase {
	return &ApprovalUseCase{orders: orders, memberships: memberships, signer: signer}
}

// Approve moves the order to approved and schedules invoice delivery in the
// same transaction. approverID is the messaging identity of the decision
// maker; it must carry an approver role within the order's legal entity and
// present a token signed for exactly this order and identity.
func (u *ApprovalUseCase) Approve(ctx context.Context, orderID, approverID int64, token string) (*model.Order, error) {
	if err := u.authorize(ctx, orderID, approverID, token); err != nil {
		return nil, err
	}
	return u.orders.Transition(ctx, orderID, model.TransitionApprove, model.TaskSendInvoice)
}

// Reject cancels the order. Authorization rules match Approve.
func (u *ApprovalUseCase) Reject(ctx context.Context, orderID, approverID int64, token string) (*model.Order, error) {
	if err := u.authorize(ctx, orderID, approverID, token); err != nil {
		return nil, err
	}
	return u.orders.Transition(ctx, orderID, model.TransitionCancel, "")
}

func (u *ApprovalUseCase) authorize(ctx context.Context, orderID, approverID int64, token string) error {
	if !u.signer.Verify(orderID, approverID, token) {
		return domainErrors.ErrForbidden
	}
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.LegalEntityID == nil {
		return domainErrors.ErrForbidden
	}
	ok, err := u.memberships.IsEntityApprover(ctx, *order.LegalEntityID, approverID)
	if err != nil {
		return err
	}
	if !ok {
		return domainErrors.ErrForbidden
	}
	return nil
}
