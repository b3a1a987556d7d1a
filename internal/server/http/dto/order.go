package dto

import "time"

// OrderItemRequest is a single cart line in a create request.
type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Qty       int   `json:"qty"`
}

// CreateOrderRequest describes the cart-to-order conversion payload.
// Entity and address references apply to company orders; the free-text
// customer fields apply to individual orders.
type CreateOrderRequest struct {
	CustomerType      string             `json:"customer_type"`
	PaymentMethod     string             `json:"payment_method"`
	LegalEntityID     *int64             `json:"legal_entity_id,omitempty"`
	DeliveryAddressID *int64             `json:"delivery_address_id,omitempty"`
	CustomerName      string             `json:"customer_name,omitempty"`
	CustomerPhone     string             `json:"customer_phone,omitempty"`
	Address           string             `json:"address,omitempty"`
	Items             []OrderItemRequest `json:"items"`
}

// OrderItemResponse is a snapshotted order line. Amounts are decimal
// strings; float rendering of money is never exposed.
type OrderItemResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Qty       int    `json:"qty"`
	LineValue string `json:"line_value"`
}

// OrderResponse is the external projection of an order.
type OrderResponse struct {
	ID                int64               `json:"id"`
	Status            string              `json:"status"`
	CustomerType      string              `json:"customer_type"`
	PaymentMethod     string              `json:"payment_method"`
	LegalEntityID     *int64              `json:"legal_entity_id,omitempty"`
	DeliveryAddressID *int64              `json:"delivery_address_id,omitempty"`
	CustomerName      string              `json:"customer_name,omitempty"`
	CustomerPhone     string              `json:"customer_phone,omitempty"`
	Address           string              `json:"address,omitempty"`
	Subtotal          string              `json:"subtotal"`
	DiscountAmount    string              `json:"discount_amount"`
	Total             string              `json:"total"`
	Items             []OrderItemResponse `json:"items"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}
