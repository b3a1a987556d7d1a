package usecase

import (
	"context"
	"strings"

	domainErrors "github.com/ntroshin/orderflow/internal/domain/errors"
	"github.com/ntroshin/orderflow/internal/domain/gateway"
	"github.com/ntroshin/orderflow/internal/domain/model"
	"github.com/ntroshin/orderflow/internal/domain/repository"
)

// OrderUseCase encapsulates order lifecycle logic: cart-to-order conversion,
// reads scoped to the caller and administrative lifecycle transitions.
type OrderUseCase struct {
	orders      repository.OrderRepository
	memberships gateway.MembershipDirectory
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, memberships gateway.MembershipDirectory) *OrderUseCase {
	return &OrderUseCase{orders: orders, memberships: memberships}
}

// Create validates the draft and converts it into a committed order.
// Validation order is fixed: empty cart, quantities, then customer-type
// specific checks; reference checks run inside the creating transaction.
// Omitted customer type and payment method fall back to company and cash.
func (u *OrderUseCase) Create(ctx context.Context, draft repository.OrderDraft) (*model.Order, error) {
	if len(draft.Items) == 0 {
		return nil, domainErrors.ErrEmptyCart
	}
	for _, item := range draft.Items {
		if item.Qty <= 0 {
			return nil, domainErrors.ErrInvalidQuantity
		}
	}

	if draft.CustomerType == "" {
		draft.CustomerType = model.CustomerTypeCompany
	}
	if draft.PaymentMethod == "" {
		draft.PaymentMethod = model.PaymentMethodCash
	}
	switch draft.PaymentMethod {
	case model.PaymentMethodCash, model.PaymentMethodInvoice:
	default:
		return nil, domainErrors.ErrInvalidPayment
	}

	switch draft.CustomerType {
	case model.CustomerTypeCompany:
		if draft.LegalEntityID == nil || draft.DeliveryAddressID == nil {
			return nil, domainErrors.ErrInvalidCustomer
		}
	case model.CustomerTypeIndividual:
		if strings.TrimSpace(draft.CustomerName) == "" ||
			strings.TrimSpace(draft.CustomerPhone) == "" ||
			strings.TrimSpace(draft.AddressText) == "" {
			return nil, domainErrors.ErrInvalidCustomer
		}
		draft.LegalEntityID = nil
		draft.DeliveryAddressID = nil
	default:
		return nil, domainErrors.ErrInvalidCustomer
	}

	return u.orders.Create(ctx, draft)
}

// Get returns the order when the caller placed it or belongs to its legal
// entity; otherwise ErrForbidden.
func (u *OrderUseCase) Get(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	visible, err := u.visibleTo(ctx, order, userID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, domainErrors.ErrForbidden
	}
	return order, nil
}

// List returns orders visible to the user, newest first.
func (u *OrderUseCase) List(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListForUser(ctx, userID)
}

// Advance applies an administrative lifecycle transition. Completing the
// payment of a company order schedules no follow-up; the invoice is already
// sent on approval.
func (u *OrderUseCase) Advance(ctx context.Context, orderID int64, transition string) (*model.Order, error) {
	switch transition {
	case model.TransitionPay, model.TransitionShip, model.TransitionComplete, model.TransitionCancel:
	default:
		return nil, domainErrors.ErrNotFound
	}
	return u.orders.Transition(ctx, orderID, transition, "")
}

func (u *OrderUseCase) visibleTo(ctx context.Context, order *model.Order, userID int64) (bool, error) {
	if order.PlacedBy == userID {
		return true, nil
	}
	if order.LegalEntityID == nil {
		return false, nil
	}
	return u.memberships.HasMembership(ctx, userID, *order.LegalEntityID)
}
