package payment

import (
	"github.com/google/uuid"

	"github.com/frozenfood/server/internal/module/order"
)

// MethodsResponse lists the payment methods offered at checkout.
type MethodsResponse struct {
	Methods       []Method            `json:"methods"`
	DefaultMethod order.PaymentMethod `json:"default_method"`
}

// StatusResponse is the payment status snapshot for an order: the latest
// payment's status together with the identifiers and amount the client
// needs to render the checkout screen.
type StatusResponse struct {
	OrderID   uuid.UUID           `json:"order_id"`
	PaymentID uuid.UUID           `json:"payment_id"`
	Status    PaymentStatus       `json:"status"`
	Amount    int64               `json:"amount"`
	Method    order.PaymentMethod `json:"method"`
	Paid      bool                `json:"paid"`
	Error     string              `json:"error,omitempty"`
}
