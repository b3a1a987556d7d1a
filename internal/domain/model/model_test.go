package model

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ntroshin/orderflow/internal/domain/fsm"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func TestLineValue(t *testing.T) {
	item := OrderItem{Price: mustDecimal(t, "19.99"), Qty: 3}
	if got := item.LineValue(); !got.Equal(mustDecimal(t, "59.97")) {
		t.Fatalf("expected 59.97, got %s", got)
	}
}

func TestRecalcTotalsExactDecimal(t *testing.T) {
	order := &Order{Items: []OrderItem{
		{Price: mustDecimal(t, "19.99"), Qty: 3},
		{Price: mustDecimal(t, "0.10"), Qty: 1},
	}}
	order.RecalcTotals()

	if !order.Subtotal.Equal(mustDecimal(t, "60.07")) {
		t.Fatalf("expected subtotal 60.07, got %s", order.Subtotal)
	}
	if !order.DiscountAmount.IsZero() {
		t.Fatalf("expected zero discount, got %s", order.DiscountAmount)
	}
	if !order.Total.Equal(order.Subtotal.Sub(order.DiscountAmount)) {
		t.Fatalf("total invariant violated: %s != %s - %s", order.Total, order.Subtotal, order.DiscountAmount)
	}
}

func TestRecalcTotalsNoDriftAcrossRepeatedRuns(t *testing.T) {
	order := &Order{Items: []OrderItem{
		{Price: mustDecimal(t, "0.10"), Qty: 3},
	}}
	for i := 0; i < 100; i++ {
		order.RecalcTotals()
		if !order.Subtotal.Equal(mustDecimal(t, "0.30")) {
			t.Fatalf("run %d: expected subtotal 0.30, got %s", i, order.Subtotal)
		}
	}
}

func TestRecalcTotalsScenario(t *testing.T) {
	order := &Order{Items: []OrderItem{
		{ProductID: 1, Price: mustDecimal(t, "100.00"), Qty: 2},
		{ProductID: 2, Price: mustDecimal(t, "50.00"), Qty: 1},
	}}
	order.RecalcTotals()

	if !order.Subtotal.Equal(mustDecimal(t, "250.00")) {
		t.Fatalf("expected subtotal 250.00, got %s", order.Subtotal)
	}
	if !order.Total.Equal(mustDecimal(t, "250.00")) {
		t.Fatalf("expected total 250.00, got %s", order.Total)
	}
}

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		got   OrderStatus
		value string
	}{
		{OrderStatusNew, "new"},
		{OrderStatusApproved, "approved"},
		{OrderStatusPaid, "paid"},
		{OrderStatusShipped, "shipped"},
		{OrderStatusDone, "done"},
		{OrderStatusCanceled, "canceled"},
	}
	for _, tc := range cases {
		if string(tc.got) != tc.value {
			t.Fatalf("expected %s, got %s", tc.value, tc.got)
		}
	}
}

func TestLifecycleTable(t *testing.T) {
	cases := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{TransitionApprove, OrderStatusNew, OrderStatusApproved, true},
		{TransitionApprove, OrderStatusApproved, "", false},
		{TransitionPay, OrderStatusApproved, OrderStatusPaid, true},
		{TransitionPay, OrderStatusNew, "", false},
		{TransitionShip, OrderStatusPaid, OrderStatusShipped, true},
		{TransitionComplete, OrderStatusShipped, OrderStatusDone, true},
		{TransitionCancel, OrderStatusNew, OrderStatusCanceled, true},
		{TransitionCancel, OrderStatusShipped, OrderStatusCanceled, true},
		{TransitionCancel, OrderStatusDone, "", false},
		{TransitionCancel, OrderStatusCanceled, "", false},
	}
	for _, tc := range cases {
		target, err := Lifecycle.Apply(tc.name, tc.from)
		if tc.ok {
			if err != nil {
				t.Fatalf("%s from %s: unexpected error %v", tc.name, tc.from, err)
			}
			if target != tc.to {
				t.Fatalf("%s from %s: expected %s, got %s", tc.name, tc.from, tc.to, target)
			}
			continue
		}
		if !fsm.IsIllegalTransition(err) {
			t.Fatalf("%s from %s: expected illegal transition, got %v", tc.name, tc.from, err)
		}
	}
}

func TestIsCompany(t *testing.T) {
	if (&Order{CustomerType: CustomerTypeIndividual}).IsCompany() {
		t.Fatal("individual order reported as company")
	}
	if !(&Order{CustomerType: CustomerTypeCompany}).IsCompany() {
		t.Fatal("company order not reported as company")
	}
}
