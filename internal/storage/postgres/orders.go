package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/ntroshin/orderflow/internal/domain/errors"
	"github.com/ntroshin/orderflow/internal/domain/model"
	"github.com/ntroshin/orderflow/internal/domain/repository"
)

const orderColumns = `id, status, customer_type, payment_method, legal_entity_id, delivery_address_id,
                      placed_by, customer_name, customer_phone, address_text,
                      subtotal, discount_amount, total, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o             model.Order
		customerName  *string
		customerPhone *string
		addressText   *string
	)
	err := row.Scan(&o.ID, &o.Status, &o.CustomerType, &o.PaymentMethod, &o.LegalEntityID, &o.DeliveryAddressID,
		&o.PlacedBy, &customerName, &customerPhone, &addressText,
		&o.Subtotal, &o.DiscountAmount, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if customerName != nil {
		o.CustomerName = *customerName
	}
	if customerPhone != nil {
		o.CustomerPhone = *customerPhone
	}
	if addressText != nil {
		o.AddressText = *addressText
	}
	return &o, nil
}

// Create validates the draft's references and persists order, items and the
// follow-up notification task as one atomic unit. Reference checks run on
// the transaction connection, so a membership revoked concurrently cannot
// slip between check and insert.
func (r *orderRepository) Create(ctx context.Context, draft repository.OrderDraft) (*model.Order, error) {
	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if draft.CustomerType == model.CustomerTypeCompany {
			memberships := &membershipRepository{q: tx}
			isMember, err := memberships.HasMembership(ctx, draft.PlacedBy, *draft.LegalEntityID)
			if err != nil {
				return err
			}
			if !isMember {
				return domainErrors.ErrForbidden
			}

			addresses := &addressRepository{q: tx}
			if _, err := addresses.Address(ctx, *draft.DeliveryAddressID, *draft.LegalEntityID); err != nil {
				if errors.Is(err, domainErrors.ErrNotFound) {
					return domainErrors.ErrInvalidAddress
				}
				return err
			}
		}

		ids := make([]int64, 0, len(draft.Items))
		for _, item := range draft.Items {
			ids = append(ids, item.ProductID)
		}

		catalog := &catalogRepository{q: tx}
		products, err := catalog.ProductsByIDs(ctx, ids)
		if err != nil {
			return err
		}

		var missing []int64
		seen := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if _, ok := products[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return &domainErrors.UnknownProductError{IDs: missing}
		}

		o := &model.Order{
			Status:            model.OrderStatusNew,
			CustomerType:      draft.CustomerType,
			PaymentMethod:     draft.PaymentMethod,
			LegalEntityID:     draft.LegalEntityID,
			DeliveryAddressID: draft.DeliveryAddressID,
			PlacedBy:          draft.PlacedBy,
			CustomerName:      draft.CustomerName,
			CustomerPhone:     draft.CustomerPhone,
			AddressText:       draft.AddressText,
		}
		for _, item := range draft.Items {
			snapshot := products[item.ProductID]
			o.Items = append(o.Items, model.OrderItem{
				ProductID: item.ProductID,
				Name:      snapshot.Name,
				Price:     snapshot.Price,
				Qty:       item.Qty,
			})
		}
		o.RecalcTotals()

		const insertOrder = `INSERT INTO orders
            (status, customer_type, payment_method, legal_entity_id, delivery_address_id,
             placed_by, customer_name, customer_phone, address_text, subtotal, discount_amount, total)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
            RETURNING id, created_at, updated_at`
		err = tx.QueryRow(ctx, insertOrder,
			o.Status, o.CustomerType, o.PaymentMethod, o.LegalEntityID, o.DeliveryAddressID,
			o.PlacedBy, nullable(o.CustomerName), nullable(o.CustomerPhone), nullable(o.AddressText),
			o.Subtotal, o.DiscountAmount, o.Total,
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return err
		}

		const insertItem = `INSERT INTO order_items (order_id, product_id, name, price, qty)
                            VALUES ($1,$2,$3,$4,$5) RETURNING id`
		for i := range o.Items {
			if err := tx.QueryRow(ctx, insertItem, o.ID, o.Items[i].ProductID, o.Items[i].Name, o.Items[i].Price, o.Items[i].Qty).Scan(&o.Items[i].ID); err != nil {
				return err
			}
		}

		// Individual orders have no entity approvers to notify.
		if o.IsCompany() {
			if err := enqueueTaskTx(ctx, tx, model.TaskNotifyApprovers, o.ID); err != nil {
				return err
			}
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *orderRepository) GetByID(ctx context.Context, orderID int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	items, err := r.loadItems(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

// ListForUser returns orders placed by the user plus orders of legal
// entities the user is a member of, newest first.
func (r *orderRepository) ListForUser(ctx context.Context, userID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
              WHERE placed_by=$1
                 OR legal_entity_id IN (SELECT legal_entity_id FROM legal_entity_memberships WHERE user_id=$1)
              ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	var orderIDs []int64
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
		orderIDs = append(orderIDs, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	items, err := r.loadItems(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Items = items[result[i].ID]
	}
	return result, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	const query = `SELECT id, order_id, product_id, name, price, qty
                   FROM order_items WHERE order_id = ANY($1) ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[int64][]model.OrderItem)
	for rows.Next() {
		var (
			item    model.OrderItem
			orderID int64
		)
		if err := rows.Scan(&item.ID, &orderID, &item.ProductID, &item.Name, &item.Price, &item.Qty); err != nil {
			return nil, err
		}
		items[orderID] = append(items[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Transition applies a named lifecycle transition under a row lock. The
// machine is consulted after the lock is acquired, so concurrent attempts
// serialize and exactly one wins; the rest observe IllegalTransition.
func (r *orderRepository) Transition(ctx context.Context, orderID int64, name string, followUp model.TaskKind) (*model.Order, error) {
	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
		o, err := scanOrder(tx.QueryRow(ctx, query, orderID))
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		if err != nil {
			return err
		}

		next, err := model.Lifecycle.Apply(name, o.Status)
		if err != nil {
			return err
		}

		const update = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`
		if _, err := tx.Exec(ctx, update, next, o.ID); err != nil {
			return err
		}
		o.Status = next

		if followUp != "" {
			if err := enqueueTaskTx(ctx, tx, followUp, o.ID); err != nil {
				return err
			}
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
