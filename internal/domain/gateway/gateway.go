// Package gateway defines the narrow contracts to subsystems the order
// engine consumes but does not own: the product catalog, legal-entity
// membership, delivery addresses, the messaging channel and the invoice
// renderer. The engine depends on these interfaces only, never on the
// collaborators' internal representations.
package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ntroshin/orderflow/internal/domain/model"
)

// Product is the catalog projection the engine cares about.
type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// Role is a membership role within a legal entity.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleViewer  Role = "viewer"
)

// ApproverRoles are the roles allowed to approve or reject orders.
var ApproverRoles = []Role{RoleOwner, RoleAdmin}

// Member is a role-bearing member of a legal entity. MessagingID is the
// member's external messaging identity; nil when the member is unreachable.
type Member struct {
	UserID      int64
	Role        Role
	MessagingID *int64
}

// LegalEntity carries the entity attributes used in notifications.
type LegalEntity struct {
	ID   int64
	Name string
}

// DeliveryAddress is a shipping destination owned by a legal entity.
type DeliveryAddress struct {
	ID            int64
	LegalEntityID int64
	Label         string
	City          string
	Street        string
	Postcode      string
}

// ProductCatalog resolves product IDs to point-in-time snapshots. The
// returned map contains only IDs that exist; callers distinguish "all
// found" from "some missing" by comparing against the request.
type ProductCatalog interface {
	ProductsByIDs(ctx context.Context, ids []int64) (map[int64]Product, error)
}

// MembershipDirectory answers membership questions about legal entities.
type MembershipDirectory interface {
	HasMembership(ctx context.Context, userID, entityID int64) (bool, error)
	MembersWithRole(ctx context.Context, entityID int64, roles []Role) ([]Member, error)
	IsEntityApprover(ctx context.Context, entityID, messagingID int64) (bool, error)
	MessagingIdentity(ctx context.Context, userID int64) (*int64, error)
}

// EntityDirectory resolves legal entities referenced by orders.
type EntityDirectory interface {
	Entity(ctx context.Context, entityID int64) (*LegalEntity, error)
}

// AddressBook resolves a delivery address scoped to its owning entity.
// Returns domain ErrNotFound when the pair does not match.
type AddressBook interface {
	Address(ctx context.Context, addressID, entityID int64) (*DeliveryAddress, error)
}

// Action is an interactive button attached to a message.
type Action struct {
	Text     string
	Callback string
}

// Messenger delivers messages through the external messaging channel.
// Errors are transient from the workflow's perspective and retryable.
type Messenger interface {
	SendInteractive(ctx context.Context, identity int64, text string, actions []Action) error
	SendDocument(ctx context.Context, identity int64, path, caption string) error
}

// InvoiceRenderer produces a durable invoice artifact for an order; pure
// function of the order state at call time.
type InvoiceRenderer interface {
	Render(ctx context.Context, order *model.Order, entityName string) (string, error)
}
