package provider

import (
	"context"
	"fmt"
)

// TelegramProvider starts payments through Telegram Payments invoices.
type TelegramProvider struct {
	invoicer      Invoicer
	providerToken string
	currency      string
}

// NewTelegramProvider creates a Telegram Payments provider.
func NewTelegramProvider(invoicer Invoicer, providerToken, currency string) *TelegramProvider {
	if currency == "" {
		currency = "RUB"
	}
	return &TelegramProvider{
		invoicer:      invoicer,
		providerToken: providerToken,
		currency:      currency,
	}
}

// Name returns the method identifier.
func (p *TelegramProvider) Name() string {
	return "telegram"
}

// RequiresOnlinePayment reports that Telegram payments happen online.
func (p *TelegramProvider) RequiresOnlinePayment() bool {
	return true
}

// Initiate sends an invoice to the payer. Line amounts are converted from
// rubles to kopecks, the minor units Telegram expects.
func (p *TelegramProvider) Initiate(ctx context.Context, req *Request) (*Initiation, error) {
	prices := make([]Line, 0, len(req.Lines))
	for _, line := range req.Lines {
		prices = append(prices, Line{Label: line.Label, Amount: line.Amount * 100})
	}

	inv := Invoice{
		ChatID:        req.ChatID,
		Title:         req.Title,
		Description:   req.Description,
		Payload:       req.Payload,
		ProviderToken: p.providerToken,
		Currency:      p.currency,
		Prices:        prices,
	}
	if err := p.invoicer.SendInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("send invoice: %w", err)
	}

	return &Initiation{PaymentRequired: true}, nil
}
