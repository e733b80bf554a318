package provider

import "context"

// CashProvider handles cash-on-delivery. No online payment step happens;
// the order goes straight to confirmation.
type CashProvider struct{}

// NewCashProvider creates a cash-on-delivery provider.
func NewCashProvider() *CashProvider {
	return &CashProvider{}
}

// Name returns the method identifier.
func (p *CashProvider) Name() string { return "cash" }

// RequiresOnlinePayment reports that cash is settled on delivery.
func (p *CashProvider) RequiresOnlinePayment() bool { return false }

// Initiate completes immediately with no payment step.
func (p *CashProvider) Initiate(ctx context.Context, req *Request) (*Initiation, error) {
	return &Initiation{
		PaymentRequired: false,
		Instructions:    "Оплата наличными или картой курьеру при получении",
	}, nil
}

// CardProvider handles manual card transfers. The customer receives the
// transfer details and pays outside the bot.
type CardProvider struct {
	cardInfo string
}

// NewCardProvider creates a card transfer provider.
func NewCardProvider(cardInfo string) *CardProvider {
	return &CardProvider{cardInfo: cardInfo}
}

// Name returns the method identifier.
func (p *CardProvider) Name() string { return "card" }

// RequiresOnlinePayment reports that the transfer happens outside the bot.
func (p *CardProvider) RequiresOnlinePayment() bool { return false }

// Initiate returns the transfer details.
func (p *CardProvider) Initiate(ctx context.Context, req *Request) (*Initiation, error) {
	return &Initiation{
		PaymentRequired: false,
		Instructions:    p.cardInfo,
	}, nil
}
