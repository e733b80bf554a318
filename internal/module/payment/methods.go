package payment

import "github.com/frozenfood/server/internal/module/order"

// Method describes a payment method offered at checkout.
type Method struct {
	ID          order.PaymentMethod `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Enabled     bool                `json:"enabled"`
}

// DefaultMethod is the method preselected at checkout.
const DefaultMethod = order.PaymentMethodTelegram

// methodCatalog is the full set of supported methods in display order.
func methodCatalog() []Method {
	return []Method{
		{
			ID:          order.PaymentMethodTelegram,
			Name:        "Оплата через Telegram",
			Description: "Безопасная оплата картой через Telegram Payments",
			Enabled:     true,
		},
		{
			ID:          order.PaymentMethodCard,
			Name:        "Перевод на карту",
			Description: "Реквизиты для перевода придут после оформления",
			Enabled:     true,
		},
		{
			ID:          order.PaymentMethodCash,
			Name:        "Наличными при получении",
			Description: "Оплата курьеру при доставке",
			Enabled:     true,
		},
	}
}
