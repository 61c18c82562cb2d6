package world

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a sales order.
type OrderStatus string

const (
	OrderNew       OrderStatus = "new"
	OrderActive    OrderStatus = "active"
	OrderShipped   OrderStatus = "shipped"
	OrderClosed    OrderStatus = "closed"
	OrderPaid      OrderStatus = "paid"
	OrderFailed    OrderStatus = "failed"
	OrderCancelled OrderStatus = "cancelled"
)

// IsTerminal reports whether no further transitions leave the status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderClosed || s == OrderFailed || s == OrderCancelled
}

// OrderTrigger names an order lifecycle transition.
type OrderTrigger string

const (
	TriggerProcess OrderTrigger = "process"
	TriggerShip    OrderTrigger = "ship"
	TriggerPay     OrderTrigger = "pay"
	TriggerClose   OrderTrigger = "close"
	TriggerFail    OrderTrigger = "fail"
	TriggerCancel  OrderTrigger = "cancel"
)

// ErrInvalidTransition is returned when a trigger does not apply to the
// current order status.
var ErrInvalidTransition = errors.New("invalid order transition")

// orderTransitions is the order lifecycle table: from -> trigger -> to.
var orderTransitions = map[OrderStatus]map[OrderTrigger]OrderStatus{
	OrderNew: {
		TriggerProcess: OrderActive,
		TriggerCancel:  OrderCancelled,
	},
	OrderActive: {
		TriggerShip:   OrderShipped,
		TriggerCancel: OrderCancelled,
	},
	OrderShipped: {
		TriggerPay:   OrderPaid,
		TriggerFail:  OrderFailed,
		TriggerClose: OrderClosed,
	},
	OrderPaid: {
		TriggerClose: OrderClosed,
	},
}

// NextStatus is the pure order lifecycle transition function.
func NextStatus(from OrderStatus, trigger OrderTrigger) (OrderStatus, error) {
	if to, ok := orderTransitions[from][trigger]; ok {
		return to, nil
	}
	return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, trigger, from)
}

// SalesOrder is a customer order spawned from an accepted purchase order.
//
// Each timestamp is set exactly once, at the tick its transition happened.
type SalesOrder struct {
	ID                 string      `json:"id" yaml:"id"`
	Status             OrderStatus `json:"status" yaml:"status"`
	Customer           string      `json:"customer" yaml:"customer"`
	CustomerPO         string      `json:"customer_po" yaml:"customer_po"`
	Subject            string      `json:"subject" yaml:"subject"`
	LineItems          []LineItem  `json:"line_items" yaml:"line_items"`
	CreatedAt          int64       `json:"created_at" yaml:"created_at"`
	ProcessedAt        *int64      `json:"processed_at,omitempty" yaml:"processed_at"`
	ShippedAt          *int64      `json:"shipped_at,omitempty" yaml:"shipped_at"`
	ClosedAt           *int64      `json:"closed_at,omitempty" yaml:"closed_at"`
	PaidAt             *int64      `json:"paid_at,omitempty" yaml:"paid_at"`
	FailedAt           *int64      `json:"failed_at,omitempty" yaml:"failed_at"`
	CancelledAt        *int64      `json:"cancelled_at,omitempty" yaml:"cancelled_at"`
	CancellationReason string      `json:"cancellation_reason,omitempty" yaml:"cancellation_reason"`
}

// Total sums quantity × price over the order's line items.
func (o *SalesOrder) Total() decimal.Decimal {
	return SumLineItems(o.LineItems)
}

// Apply runs trigger against the order, stamping the matching timestamp and
// propagating the new status to its line items.
// The order is untouched when the transition is invalid.
func (o *SalesOrder) Apply(trigger OrderTrigger, atMs int64) error {
	to, err := NextStatus(o.Status, trigger)
	if err != nil {
		return fmt.Errorf("order %s: %w", o.ID, err)
	}
	o.Status = to

	var field **int64
	switch to {
	case OrderActive:
		field = &o.ProcessedAt
	case OrderShipped:
		field = &o.ShippedAt
	case OrderPaid:
		field = &o.PaidAt
	case OrderClosed:
		field = &o.ClosedAt
	case OrderFailed:
		field = &o.FailedAt
	case OrderCancelled:
		field = &o.CancelledAt
	}
	if field != nil && *field == nil {
		*field = stamp(atMs)
	}

	for i := range o.LineItems {
		o.LineItems[i].Status = LineItemStatus(to)
	}
	return nil
}
