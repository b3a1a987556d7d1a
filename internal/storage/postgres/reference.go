package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/ntroshin/orderflow/internal/domain/errors"
	"github.com/ntroshin/orderflow/internal/domain/gateway"
)

// Read gateways over reference data projections. Maintained by the catalog
// and commerce systems; this engine only reads them. All four run over the
// querier seam, so order creation can hold them to its transaction.

var (
	_ gateway.ProductCatalog      = (*catalogRepository)(nil)
	_ gateway.MembershipDirectory = (*membershipRepository)(nil)
	_ gateway.EntityDirectory     = (*entityRepository)(nil)
	_ gateway.AddressBook         = (*addressRepository)(nil)
)

func (r *catalogRepository) ProductsByIDs(ctx context.Context, ids []int64) (map[int64]gateway.Product, error) {
	const query = `SELECT id, name, price FROM products WHERE id = ANY($1)`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make(map[int64]gateway.Product)
	for rows.Next() {
		var p gateway.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, err
		}
		products[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *membershipRepository) HasMembership(ctx context.Context, userID, entityID int64) (bool, error) {
	const query = `SELECT EXISTS (
        SELECT 1 FROM legal_entity_memberships WHERE user_id=$1 AND legal_entity_id=$2)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, userID, entityID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *membershipRepository) MembersWithRole(ctx context.Context, entityID int64, roles []gateway.Role) ([]gateway.Member, error) {
	const query = `SELECT m.user_id, m.role, p.messaging_id
                   FROM legal_entity_memberships m
                   LEFT JOIN user_profiles p ON p.user_id = m.user_id
                   WHERE m.legal_entity_id=$1 AND m.role = ANY($2)
                   ORDER BY m.user_id`
	roleNames := make([]string, len(roles))
	for i, role := range roles {
		roleNames[i] = string(role)
	}
	rows, err := r.q.Query(ctx, query, entityID, roleNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []gateway.Member
	for rows.Next() {
		var m gateway.Member
		if err := rows.Scan(&m.UserID, &m.Role, &m.MessagingID); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *membershipRepository) IsEntityApprover(ctx context.Context, entityID, messagingID int64) (bool, error) {
	const query = `SELECT EXISTS (
        SELECT 1 FROM legal_entity_memberships m
        JOIN user_profiles p ON p.user_id = m.user_id
        WHERE m.legal_entity_id=$1 AND p.messaging_id=$2 AND m.role = ANY($3))`
	roleNames := make([]string, len(gateway.ApproverRoles))
	for i, role := range gateway.ApproverRoles {
		roleNames[i] = string(role)
	}
	var exists bool
	if err := r.q.QueryRow(ctx, query, entityID, messagingID, roleNames).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *membershipRepository) MessagingIdentity(ctx context.Context, userID int64) (*int64, error) {
	const query = `SELECT messaging_id FROM user_profiles WHERE user_id=$1`
	var messagingID *int64
	err := r.q.QueryRow(ctx, query, userID).Scan(&messagingID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return messagingID, nil
}

func (r *entityRepository) Entity(ctx context.Context, entityID int64) (*gateway.LegalEntity, error) {
	const query = `SELECT id, name FROM legal_entities WHERE id=$1`
	var entity gateway.LegalEntity
	err := r.q.QueryRow(ctx, query, entityID).Scan(&entity.ID, &entity.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainErrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *addressRepository) Address(ctx context.Context, addressID, entityID int64) (*gateway.DeliveryAddress, error) {
	const query = `SELECT id, legal_entity_id, label, city, street, postcode
                   FROM delivery_addresses WHERE id=$1 AND legal_entity_id=$2`
	var addr gateway.DeliveryAddress
	err := r.q.QueryRow(ctx, query, addressID, entityID).Scan(
		&addr.ID, &addr.LegalEntityID, &addr.Label, &addr.City, &addr.Street, &addr.Postcode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainErrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}
