package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes order lifecycle state.
type OrderStatus string

const (
	OrderStatusNew      OrderStatus = "new"
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusShipped  OrderStatus = "shipped"
	OrderStatusDone     OrderStatus = "done"
	OrderStatusCanceled OrderStatus = "canceled"
)

// CustomerType distinguishes company and individual checkout paths.
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "individual"
	CustomerTypeCompany    CustomerType = "company"
)

// PaymentMethod describes how the order is going to be paid.
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodInvoice PaymentMethod = "invoice"
)

// Order describes a committed purchase tracked through a fixed lifecycle.
// Company orders reference an external legal entity and one of its delivery
// addresses; individual orders carry free-text customer fields instead.
type Order struct {
	ID                int64
	Status            OrderStatus
	CustomerType      CustomerType
	PaymentMethod     PaymentMethod
	LegalEntityID     *int64
	DeliveryAddressID *int64
	PlacedBy          int64
	CustomerName      string
	CustomerPhone     string
	AddressText       string
	Subtotal          decimal.Decimal
	DiscountAmount    decimal.Decimal
	Total             decimal.Decimal
	Items             []OrderItem
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderItem is a line of an order. Name and Price are snapshotted from the
// catalog at creation time and never follow later catalog changes.
type OrderItem struct {
	ID        int64
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Qty       int
}

// LineValue is price multiplied by quantity; derived, never stored.
func (i OrderItem) LineValue() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// RecalcTotals recomputes subtotal, discount and total from the items.
// Runs exactly once, at creation; items are immutable afterwards.
func (o *Order) RecalcTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineValue())
	}
	o.Subtotal = subtotal
	// No discount engine yet; the field and the invariant stay.
	o.DiscountAmount = decimal.Zero
	o.Total = o.Subtotal.Sub(o.DiscountAmount).Round(2)
}

// IsCompany reports whether the order follows the company checkout path.
func (o *Order) IsCompany() bool {
	return o.CustomerType == CustomerTypeCompany
}
