package order

import "errors"

// Module errors.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotPending    = errors.New("order is not pending")
	ErrOrderNotCancelable = errors.New("order cannot be cancelled")
	ErrOrderNotRefundable = errors.New("order cannot be refunded")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrEmptyOrder         = errors.New("order has no items")
	ErrBelowMinimumAmount = errors.New("order total is below the minimum amount")
)
