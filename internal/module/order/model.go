package order

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the status of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
	OrderStatusFailed    OrderStatus = "failed"
)

// DeliveryType represents how an order is fulfilled.
type DeliveryType string

const (
	DeliveryTypeCourier DeliveryType = "courier"
	DeliveryTypePickup  DeliveryType = "pickup"
)

// PaymentMethod identifies how the customer pays for an order.
type PaymentMethod string

const (
	PaymentMethodTelegram PaymentMethod = "telegram"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodCash     PaymentMethod = "cash"
)

// Order represents a customer order.
type Order struct {
	ID             uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNo        string        `json:"order_no" gorm:"uniqueIndex;not null"`
	TelegramUserID int64         `json:"telegram_user_id" gorm:"not null;index"`
	Status         OrderStatus   `json:"status" gorm:"not null;default:pending;index"`
	PaymentMethod  PaymentMethod `json:"payment_method" gorm:"not null"`
	DeliveryType   DeliveryType  `json:"delivery_type" gorm:"not null;default:courier"`
	CustomerName   string        `json:"customer_name" gorm:"not null"`
	CustomerPhone  string        `json:"customer_phone" gorm:"not null"`
	Address        string        `json:"address,omitempty"`
	Comment        string        `json:"comment,omitempty"`
	Subtotal       int64         `json:"subtotal"` // In rubles
	DeliveryFee    int64         `json:"delivery_fee"`
	Total          int64         `json:"total"`
	Currency       string        `json:"currency" gorm:"default:RUB"`
	ConfirmedAt    *time.Time    `json:"confirmed_at,omitempty"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
	CancelledAt    *time.Time    `json:"cancelled_at,omitempty"`

	// EstimatedReadyAt is the preparation deadline, set when the order is
	// confirmed. OverdueNotifiedAt records the one-time overdue alert.
	EstimatedReadyAt  *time.Time `json:"estimated_ready_at,omitempty" gorm:"index"`
	OverdueNotifiedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// TableName returns the database table name.
func (Order) TableName() string {
	return "orders"
}

// IsPending returns true if the order awaits confirmation or payment.
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// IsTerminal returns true if no further transitions are possible.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusRefunded
}

// Overdue reports whether the order missed its preparation deadline and
// is still being worked on.
func (o *Order) Overdue(now time.Time) bool {
	if o.EstimatedReadyAt == nil {
		return false
	}
	switch o.Status {
	case OrderStatusConfirmed, OrderStatusPreparing:
		return now.After(*o.EstimatedReadyAt)
	default:
		return false
	}
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Quantity  int       `json:"quantity" gorm:"default:1"`
	UnitPrice int64     `json:"unit_price"` // In rubles
	Amount    int64     `json:"amount"`     // quantity * unit_price
}

// TableName returns the database table name.
func (OrderItem) TableName() string {
	return "order_items"
}

// StatusHistory records a single status transition on an order.
type StatusHistory struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID   `json:"order_id" gorm:"type:uuid;not null;index"`
	From      OrderStatus `json:"from" gorm:"column:from_status;not null"`
	To        OrderStatus `json:"to" gorm:"column:to_status;not null"`
	Reason    string      `json:"reason,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// TableName returns the database table name.
func (StatusHistory) TableName() string {
	return "order_status_history"
}
