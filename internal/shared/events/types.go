package events

import (
	"time"

	"github.com/google/uuid"
)

// Payment outcome event type constants.
const (
	PaymentSucceededType = "PaymentSucceeded"
	PaymentCancelledType = "PaymentCancelled"
	PaymentFailedType    = "PaymentFailed"
)

// Order event type constants.
const (
	OrderStatusChangedType = "OrderStatusChanged"
	OrderOverdueType       = "OrderOverdue"
)

// PaymentSucceededEvent is emitted when a payment for an order is
// confirmed by the provider.
type PaymentSucceededEvent struct {
	BaseEvent

	// OrderID is the ID of the order this payment is for.
	OrderID uuid.UUID `json:"order_id"`

	// PaymentID is the unique identifier of the payment.
	PaymentID uuid.UUID `json:"payment_id"`

	// Amount is the confirmed amount in rubles.
	Amount int64 `json:"amount"`

	// Method is the payment method identifier (e.g., "telegram", "cash").
	Method string `json:"method"`
}

// NewPaymentSucceededEvent creates a new PaymentSucceededEvent.
func NewPaymentSucceededEvent(orderID, paymentID uuid.UUID, amount int64, method string) *PaymentSucceededEvent {
	return &PaymentSucceededEvent{
		BaseEvent: NewBaseEvent(PaymentSucceededType, paymentID, "Payment"),
		OrderID:   orderID,
		PaymentID: paymentID,
		Amount:    amount,
		Method:    method,
	}
}

// PaymentCancelledEvent is emitted when the payer aborts a payment.
type PaymentCancelledEvent struct {
	BaseEvent

	// OrderID is the ID of the order the cancelled payment was for.
	OrderID uuid.UUID `json:"order_id"`

	// PaymentID is the unique identifier of the payment.
	PaymentID uuid.UUID `json:"payment_id"`
}

// NewPaymentCancelledEvent creates a new PaymentCancelledEvent.
func NewPaymentCancelledEvent(orderID, paymentID uuid.UUID) *PaymentCancelledEvent {
	return &PaymentCancelledEvent{
		BaseEvent: NewBaseEvent(PaymentCancelledType, paymentID, "Payment"),
		OrderID:   orderID,
		PaymentID: paymentID,
	}
}

// PaymentFailedEvent is emitted when a payment fails.
type PaymentFailedEvent struct {
	BaseEvent

	// OrderID is the ID of the order the failed payment was for.
	OrderID uuid.UUID `json:"order_id"`

	// PaymentID is the unique identifier of the payment.
	PaymentID uuid.UUID `json:"payment_id"`

	// Error is a human-readable failure description.
	Error string `json:"error"`
}

// NewPaymentFailedEvent creates a new PaymentFailedEvent.
func NewPaymentFailedEvent(orderID, paymentID uuid.UUID, errMsg string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent: NewBaseEvent(PaymentFailedType, paymentID, "Payment"),
		OrderID:   orderID,
		PaymentID: paymentID,
		Error:     errMsg,
	}
}

// OrderStatusChangedEvent is emitted when an order transitions between
// workflow statuses.
type OrderStatusChangedEvent struct {
	BaseEvent

	// OrderID is the order that changed status.
	OrderID uuid.UUID `json:"order_id"`

	// From is the previous status.
	From string `json:"from"`

	// To is the new status.
	To string `json:"to"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent.
func NewOrderStatusChangedEvent(orderID uuid.UUID, from, to string) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseEvent: NewBaseEvent(OrderStatusChangedType, orderID, "Order"),
		OrderID:   orderID,
		From:      from,
		To:        to,
	}
}

// OrderOverdueEvent is emitted once per order when it misses its
// preparation deadline while still being worked on.
type OrderOverdueEvent struct {
	BaseEvent

	// OrderID is the order that missed its deadline.
	OrderID uuid.UUID `json:"order_id"`

	// Deadline is the time the order should have been ready by.
	Deadline time.Time `json:"deadline"`
}

// NewOrderOverdueEvent creates a new OrderOverdueEvent.
func NewOrderOverdueEvent(orderID uuid.UUID, deadline time.Time) *OrderOverdueEvent {
	return &OrderOverdueEvent{
		BaseEvent: NewBaseEvent(OrderOverdueType, orderID, "Order"),
		OrderID:   orderID,
		Deadline:  deadline,
	}
}
