package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidAddress   = errors.New("delivery address does not belong to legal entity")
	ErrInvalidCustomer  = errors.New("customer details are incomplete")
	ErrInvalidPayment   = errors.New("unknown payment method")
	ErrNotFound         = errors.New("not found")
	ErrDeliveryFailure  = errors.New("delivery failure")
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// UnknownProductError reports which product IDs did not resolve to catalog
// items. A missing product is never coerced to a zero-price line.
type UnknownProductError struct {
	IDs []int64
}

func (e *UnknownProductError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("unknown products: %s", strings.Join(ids, ", "))
}
