package payment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// BuildInvoicePayload encodes the order and payment IDs into the opaque
// payload carried through the Telegram invoice round-trip.
func BuildInvoicePayload(orderID, paymentID uuid.UUID) string {
	return fmt.Sprintf("order_%s_payment_%s", orderID, paymentID)
}

// ParseInvoicePayload decodes a payload produced by BuildInvoicePayload.
func ParseInvoicePayload(payload string) (orderID, paymentID uuid.UUID, err error) {
	rest, ok := strings.CutPrefix(payload, "order_")
	if !ok {
		return uuid.Nil, uuid.Nil, ErrInvalidPayload
	}
	orderPart, paymentPart, ok := strings.Cut(rest, "_payment_")
	if !ok {
		return uuid.Nil, uuid.Nil, ErrInvalidPayload
	}

	orderID, err = uuid.Parse(orderPart)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: bad order id", ErrInvalidPayload)
	}
	paymentID, err = uuid.Parse(paymentPart)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: bad payment id", ErrInvalidPayload)
	}
	return orderID, paymentID, nil
}
