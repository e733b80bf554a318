package provider

import "context"

// Line is a single priced line on a payment request, in rubles.
type Line struct {
	Label  string
	Amount int64
}

// Request asks a provider to start payment for an order.
type Request struct {
	// ChatID is the Telegram chat to bill.
	ChatID int64

	// Payload is the opaque payload carried through the provider
	// round-trip and back on confirmation.
	Payload string

	Title       string
	Description string

	// Amount is the order total in rubles.
	Amount int64

	// Lines is the price breakdown shown to the payer.
	Lines []Line
}

// Initiation is the result of starting a payment.
type Initiation struct {
	// PaymentRequired reports whether the payer must complete an online
	// payment step before the order is confirmed.
	PaymentRequired bool

	// Instructions carries human-readable payment instructions for
	// offline methods.
	Instructions string
}

// Provider is a payment method backend.
type Provider interface {
	// Name returns the method identifier this provider serves.
	Name() string

	// RequiresOnlinePayment reports whether this method needs an online
	// payment step.
	RequiresOnlinePayment() bool

	// Initiate starts payment for an order.
	Initiate(ctx context.Context, req *Request) (*Initiation, error)
}

// Invoice describes a Telegram payment sheet.
type Invoice struct {
	ChatID        int64
	Title         string
	Description   string
	Payload       string
	ProviderToken string
	Currency      string

	// Prices are the labeled amounts in minor currency units (kopecks).
	Prices []Line
}

// Invoicer sends Telegram invoices. Implemented by the bot client.
type Invoicer interface {
	SendInvoice(ctx context.Context, inv Invoice) error
}
