package handlers

import (
	"context"

	"github.com/ntroshin/orderflow/internal/domain/model"
	"github.com/ntroshin/orderflow/internal/domain/repository"
)

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, draft repository.OrderDraft) (*model.Order, error)
	Order(ctx context.Context, userID, orderID int64) (*model.Order, error)
	Orders(ctx context.Context, userID int64) ([]model.Order, error)
}

// ApprovalFacade handles approve and reject decisions from the messaging channel.
type ApprovalFacade interface {
	ApproveOrder(ctx context.Context, orderID, approverID int64, token string) (*model.Order, error)
	RejectOrder(ctx context.Context, orderID, approverID int64, token string) (*model.Order, error)
}

// AdminFacade applies administrative lifecycle transitions.
type AdminFacade interface {
	AdvanceOrder(ctx context.Context, orderID int64, transition string) (*model.Order, error)
}

// HealthFacade reports readiness of backing services.
type HealthFacade interface {
	Health(ctx context.Context) error
}

// EngineFacade aggregates the full set of operations used across handlers.
type EngineFacade interface {
	OrderFacade
	ApprovalFacade
	AdminFacade
	HealthFacade
}
