package repository

import (
	"context"

	"github.com/ntroshin/orderflow/internal/domain/model"
)

// OrderDraftItem is a requested order line before catalog resolution.
type OrderDraftItem struct {
	ProductID int64
	Qty       int
}

// OrderDraft is a validated cart-to-order conversion request. Reference
// checks (membership, address ownership, product existence) run inside the
// creating transaction, not here.
type OrderDraft struct {
	PlacedBy          int64
	CustomerType      model.CustomerType
	PaymentMethod     model.PaymentMethod
	LegalEntityID     *int64
	DeliveryAddressID *int64
	CustomerName      string
	CustomerPhone     string
	AddressText       string
	Items             []OrderDraftItem
}

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create validates the draft's references and persists the order with
	// all items and the follow-up notification task as one atomic unit.
	// Returns ErrForbidden, ErrInvalidAddress or UnknownProductError when a
	// reference check fails; nothing is persisted in that case.
	Create(ctx context.Context, draft OrderDraft) (*model.Order, error)
	GetByID(ctx context.Context, orderID int64) (*model.Order, error)
	ListForUser(ctx context.Context, userID int64) ([]model.Order, error)
	// Transition atomically applies a named lifecycle transition under a row
	// lock and, when followUp is non-empty, enqueues the follow-up task in
	// the same transaction. Concurrent attempts resolve to one winner; the
	// loser receives an IllegalTransitionError.
	Transition(ctx context.Context, orderID int64, name string, followUp model.TaskKind) (*model.Order, error)
}
