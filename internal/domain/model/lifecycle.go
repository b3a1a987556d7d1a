package model

import "github.com/ntroshin/orderflow/internal/domain/fsm"

// Transition names for the order lifecycle.
const (
	TransitionApprove  = "approve"
	TransitionPay      = "pay"
	TransitionShip     = "ship"
	TransitionComplete = "complete"
	TransitionCancel   = "cancel"
)

// Lifecycle is the order state machine. Status may only change through it.
var Lifecycle = fsm.New(fsm.Config[OrderStatus]{
	Terminal: []OrderStatus{OrderStatusDone, OrderStatusCanceled},
	Transitions: []fsm.Transition[OrderStatus]{
		{Name: TransitionApprove, Sources: []OrderStatus{OrderStatusNew}, Target: OrderStatusApproved},
		{Name: TransitionPay, Sources: []OrderStatus{OrderStatusApproved}, Target: OrderStatusPaid},
		{Name: TransitionShip, Sources: []OrderStatus{OrderStatusPaid}, Target: OrderStatusShipped},
		{Name: TransitionComplete, Sources: []OrderStatus{OrderStatusShipped}, Target: OrderStatusDone},
		{Name: TransitionCancel, AnySource: true, Target: OrderStatusCanceled},
	},
})
