package payment

import "errors"

// Module errors.
var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrPaymentNotPending  = errors.New("payment is not pending")
	ErrNotRefundable      = errors.New("payment cannot be refunded")
	ErrMethodNotSupported = errors.New("payment method not supported")
	ErrMethodDisabled     = errors.New("payment method is disabled")
	ErrAmountMismatch     = errors.New("payment amount does not match order total")
	ErrInvalidPayload     = errors.New("invalid invoice payload")
	ErrOrderNotPayable    = errors.New("order cannot be paid")
)
