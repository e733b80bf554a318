package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for payment data access.
type Repository interface {
	// Payment operations
	CreatePayment(ctx context.Context, payment *Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetLatestPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error)
	UpdatePayment(ctx context.Context, payment *Payment) error

	// Webhook event operations
	WebhookEventExists(ctx context.Context, provider, eventID string) (bool, error)
	CreateWebhookEvent(ctx context.Context, event *WebhookEvent) error
	MarkWebhookEventProcessed(ctx context.Context, provider, eventID string, processErr error) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new payment repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePayment(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetLatestPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) UpdatePayment(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *repository) WebhookEventExists(ctx context.Context, provider, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&WebhookEvent{}).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateWebhookEvent(ctx context.Context, event *WebhookEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) MarkWebhookEventProcessed(ctx context.Context, provider, eventID string, processErr error) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed":    true,
		"processed_at": &now,
	}
	if processErr != nil {
		msg := processErr.Error()
		updates["error"] = &msg
	}
	return r.db.WithContext(ctx).Model(&WebhookEvent{}).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Updates(updates).Error
}
