package order

import (
	"time"

	"github.com/google/uuid"
)

// Filter represents filters for listing orders.
type Filter struct {
	Status         *OrderStatus   `form:"status"`
	PaymentMethod  *PaymentMethod `form:"payment_method"`
	TelegramUserID *int64         `form:"telegram_user_id"`
}

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int `form:"page" binding:"min=1"`
	PageSize int `form:"page_size" binding:"min=1,max=100"`
}

// NewPagination creates pagination with defaults.
func NewPagination() *Pagination {
	return &Pagination{
		Page:     1,
		PageSize: 20,
	}
}

// Offset returns the offset for database queries.
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TransitionRequest is the request to change an order's status.
type TransitionRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
	Reason string      `json:"reason"`
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNo       string              `json:"order_no"`
	Status        OrderStatus         `json:"status"`
	PaymentMethod PaymentMethod       `json:"payment_method"`
	DeliveryType  DeliveryType        `json:"delivery_type"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	Address       string              `json:"address,omitempty"`
	Comment       string              `json:"comment,omitempty"`
	Subtotal      int64               `json:"subtotal"`
	DeliveryFee   int64               `json:"delivery_fee"`
	Total         int64               `json:"total"`
	Currency      string              `json:"currency"`
	ConfirmedAt   *time.Time          `json:"confirmed_at,omitempty"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	Items         []OrderItemResponse `json:"items,omitempty"`
}

// OrderItemResponse represents an order item in API responses.
type OrderItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	Amount    int64     `json:"amount"`
}

// ToResponse converts an Order to OrderResponse.
func (o *Order) ToResponse() *OrderResponse {
	resp := &OrderResponse{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		DeliveryType:  o.DeliveryType,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Address:       o.Address,
		Comment:       o.Comment,
		Subtotal:      o.Subtotal,
		DeliveryFee:   o.DeliveryFee,
		Total:         o.Total,
		Currency:      o.Currency,
		ConfirmedAt:   o.ConfirmedAt,
		CompletedAt:   o.CompletedAt,
		CancelledAt:   o.CancelledAt,
		CreatedAt:     o.CreatedAt,
		Items:         make([]OrderItemResponse, len(o.Items)),
	}
	for i, item := range o.Items {
		resp.Items[i] = OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Amount:    item.Amount,
		}
	}
	return resp
}

// OrderListResponse represents a paginated list of orders.
type OrderListResponse struct {
	Orders     []*OrderResponse `json:"orders"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// StatusHistoryResponse represents one transition in API responses.
type StatusHistoryResponse struct {
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	Reason    string      `json:"reason,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
