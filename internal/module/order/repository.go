package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for order data access.
type Repository interface {
	// Order operations
	CreateOrder(ctx context.Context, order *Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderWithItems(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderByNo(ctx context.Context, orderNo string) (*Order, error)
	ListOrders(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Order, int64, error)
	ListOrdersByUser(ctx context.Context, telegramUserID int64, limit int) ([]*Order, error)
	ListOverdueOrders(ctx context.Context, now time.Time) ([]*Order, error)
	UpdateOrder(ctx context.Context, order *Order) error

	// Order item operations
	CreateOrderItems(ctx context.Context, items []OrderItem) error

	// Status history operations
	CreateStatusHistory(ctx context.Context, entry *StatusHistory) error
	ListStatusHistory(ctx context.Context, orderID uuid.UUID) ([]*StatusHistory, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new order repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// --- Order Operations ---

func (r *repository) CreateOrder(ctx context.Context, order *Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) GetOrderWithItems(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) GetOrderByNo(ctx context.Context, orderNo string) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "order_no = ?", orderNo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrders(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Order, int64, error) {
	var orders []*Order
	var total int64

	query := r.db.WithContext(ctx).Model(&Order{})

	if filter != nil {
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.PaymentMethod != nil {
			query = query.Where("payment_method = ?", *filter.PaymentMethod)
		}
		if filter.TelegramUserID != nil {
			query = query.Where("telegram_user_id = ?", *filter.TelegramUserID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pagination != nil {
		query = query.Offset(pagination.Offset()).Limit(pagination.PageSize)
	}

	if err := query.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *repository) ListOrdersByUser(ctx context.Context, telegramUserID int64, limit int) ([]*Order, error) {
	var orders []*Order
	query := r.db.WithContext(ctx).
		Where("telegram_user_id = ?", telegramUserID).
		Preload("Items").
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&orders).Error
	return orders, err
}

func (r *repository) ListOverdueOrders(ctx context.Context, now time.Time) ([]*Order, error) {
	var orders []*Order
	err := r.db.WithContext(ctx).
		Where("status IN ?", []OrderStatus{OrderStatusConfirmed, OrderStatusPreparing}).
		Where("estimated_ready_at < ?", now).
		Where("overdue_notified_at IS NULL").
		Order("estimated_ready_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *repository) UpdateOrder(ctx context.Context, order *Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// --- Order Item Operations ---

func (r *repository) CreateOrderItems(ctx context.Context, items []OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// --- Status History Operations ---

func (r *repository) CreateStatusHistory(ctx context.Context, entry *StatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListStatusHistory(ctx context.Context, orderID uuid.UUID) ([]*StatusHistory, error) {
	var entries []*StatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
