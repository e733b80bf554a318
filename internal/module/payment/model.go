package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/frozenfood/server/internal/module/order"
)

// PaymentStatus represents the status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment represents a payment record for an order.
type Payment struct {
	ID             uuid.UUID           `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID        uuid.UUID           `json:"order_id" gorm:"type:uuid;not null;index"`
	TelegramUserID int64               `json:"telegram_user_id" gorm:"not null;index"`
	Amount         int64               `json:"amount"` // In rubles
	Currency       string              `json:"currency" gorm:"default:RUB"`
	Method         order.PaymentMethod `json:"method" gorm:"not null"`
	Status         PaymentStatus       `json:"status" gorm:"not null;default:pending;index"`
	InvoicePayload string              `json:"-" gorm:"index"`

	// Charge identifiers returned by Telegram on successful payment.
	TelegramPaymentChargeID string `json:"-"`
	ProviderPaymentChargeID string `json:"-"`

	FailureMessage *string    `json:"failure_message,omitempty"`
	SucceededAt    *time.Time `json:"succeeded_at,omitempty"`
	FailedAt       *time.Time `json:"failed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName returns the database table name.
func (Payment) TableName() string {
	return "payments"
}

// IsPending returns true if the payment awaits confirmation.
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// IsSucceeded returns true if the payment succeeded.
func (p *Payment) IsSucceeded() bool {
	return p.Status == PaymentStatusSucceeded
}

// WebhookEvent represents a stored payment provider event, used for
// idempotent processing.
type WebhookEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Provider    string    `gorm:"not null;index"`
	EventID     string    `gorm:"uniqueIndex:idx_provider_event;not null"`
	EventType   string    `gorm:"not null"`
	Data        string    `gorm:"type:jsonb"`
	Processed   bool      `gorm:"default:false"`
	ProcessedAt *time.Time
	Error       *string
	CreatedAt   time.Time
}

// TableName returns the database table name.
func (WebhookEvent) TableName() string {
	return "payment_webhook_events"
}

// FormatAmount renders a ruble amount the way the storefront shows it.
func FormatAmount(amount int64) string {
	return fmt.Sprintf("%d₽", amount)
}
