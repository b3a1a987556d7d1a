package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestUnknownProductErrorMessage(t *testing.T) {
	err := &UnknownProductError{IDs: []int64{7, 42}}
	if got := err.Error(); got != "unknown products: 7, 42" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestUnknownProductErrorAs(t *testing.T) {
	wrapped := fmt.Errorf("create order: %w", &UnknownProductError{IDs: []int64{1}})
	var unknown *UnknownProductError
	if !stderrors.As(wrapped, &unknown) {
		t.Fatal("expected errors.As to unwrap UnknownProductError")
	}
	if len(unknown.IDs) != 1 || unknown.IDs[0] != 1 {
		t.Fatalf("unexpected IDs: %v", unknown.IDs)
	}
}

func TestDeliveryFailureWrapping(t *testing.T) {
	err := fmt.Errorf("%w: bot gateway returned 502", ErrDeliveryFailure)
	if !stderrors.Is(err, ErrDeliveryFailure) {
		t.Fatal("expected errors.Is to match ErrDeliveryFailure")
	}
}
