package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frozenfood/server/internal/shared/events"
	"github.com/frozenfood/server/internal/utils/metrics"
	"github.com/frozenfood/server/internal/utils/random"
)

// preparationEstimate is how long a confirmed order has to become ready
// before it counts as overdue.
const preparationEstimate = 60 * time.Minute

// CreateOrderInput carries everything needed to place an order. Line prices
// are resolved server-side before this point and are never taken from the
// client.
type CreateOrderInput struct {
	TelegramUserID int64
	PaymentMethod  PaymentMethod
	DeliveryType   DeliveryType
	CustomerName   string
	CustomerPhone  string
	Address        string
	Comment        string
	Items          []ItemInput
}

// ItemInput is a single resolved order line.
type ItemInput struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice int64
	Quantity  int
}

// Service implements order operations.
type Service struct {
	repo           Repository
	sm             *StateMachine
	bus            *events.Bus
	metrics        *metrics.Metrics
	logger         *zap.Logger
	minOrderAmount int64
}

// NewService creates a new order service.
func NewService(repo Repository, bus *events.Bus, m *metrics.Metrics, logger *zap.Logger, minOrderAmount int64) *Service {
	return &Service{
		repo:           repo,
		sm:             NewStateMachine(),
		bus:            bus,
		metrics:        m,
		logger:         logger,
		minOrderAmount: minOrderAmount,
	}
}

// MinOrderAmount returns the configured minimum order total in rubles.
func (s *Service) MinOrderAmount() int64 {
	return s.minOrderAmount
}

// CreateOrder creates a new pending order with server-computed totals.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	var subtotal int64
	items := make([]OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 || item.UnitPrice <= 0 {
			return nil, fmt.Errorf("invalid order line for product %s", item.ProductID)
		}
		amount := item.UnitPrice * int64(item.Quantity)
		subtotal += amount
		items = append(items, OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Amount:    amount,
		})
	}

	if subtotal < s.minOrderAmount {
		return nil, fmt.Errorf("%w: %d < %d", ErrBelowMinimumAmount, subtotal, s.minOrderAmount)
	}

	deliveryType := input.DeliveryType
	if deliveryType == "" {
		deliveryType = DeliveryTypeCourier
	}

	order := &Order{
		ID:             uuid.New(),
		OrderNo:        generateOrderNo(),
		TelegramUserID: input.TelegramUserID,
		Status:         OrderStatusPending,
		PaymentMethod:  input.PaymentMethod,
		DeliveryType:   deliveryType,
		CustomerName:   input.CustomerName,
		CustomerPhone:  input.CustomerPhone,
		Address:        input.Address,
		Comment:        input.Comment,
		Subtotal:       subtotal,
		Total:          subtotal,
		Currency:       "RUB",
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := s.repo.CreateOrderItems(ctx, items); err != nil {
		return nil, fmt.Errorf("create order items: %w", err)
	}
	order.Items = items

	if s.metrics != nil {
		s.metrics.OrdersCreatedTotal.WithLabelValues(string(order.PaymentMethod), string(order.DeliveryType)).Inc()
	}
	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_no", order.OrderNo),
		zap.Int64("total", order.Total),
		zap.String("payment_method", string(order.PaymentMethod)),
	)

	return order, nil
}

// GetOrder returns an order with its items.
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	return s.repo.GetOrderWithItems(ctx, orderID)
}

// GetOrderByNo returns an order by its order number.
func (s *Service) GetOrderByNo(ctx context.Context, orderNo string) (*Order, error) {
	return s.repo.GetOrderByNo(ctx, orderNo)
}

// ListOrders returns orders matching the filter.
func (s *Service) ListOrders(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Order, int64, error) {
	return s.repo.ListOrders(ctx, filter, pagination)
}

// ListUserOrders returns the latest orders for a Telegram user.
func (s *Service) ListUserOrders(ctx context.Context, telegramUserID int64, limit int) ([]*Order, error) {
	return s.repo.ListOrdersByUser(ctx, telegramUserID, limit)
}

// GetStatusHistory returns the transition history of an order.
func (s *Service) GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]*StatusHistory, error) {
	return s.repo.ListStatusHistory(ctx, orderID)
}

// AllowedTransitions returns the statuses an order may move to.
func (s *Service) AllowedTransitions(status OrderStatus) []OrderStatus {
	return s.sm.GetAllowedTransitions(status)
}

// TransitionStatus moves an order to a new status, recording history and
// publishing an event.
func (s *Service) TransitionStatus(ctx context.Context, orderID uuid.UUID, to OrderStatus, reason string) (*Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := s.sm.Transition(order, to); err != nil {
		return nil, err
	}

	now := time.Now()
	switch to {
	case OrderStatusConfirmed:
		order.ConfirmedAt = &now
		ready := now.Add(preparationEstimate)
		order.EstimatedReadyAt = &ready
	case OrderStatusCompleted:
		order.CompletedAt = &now
	case OrderStatusCancelled:
		order.CancelledAt = &now
	}

	if err := s.repo.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	history := &StatusHistory{
		ID:      uuid.New(),
		OrderID: order.ID,
		From:    from,
		To:      to,
		Reason:  reason,
	}
	if err := s.repo.CreateStatusHistory(ctx, history); err != nil {
		s.logger.Error("failed to record status history",
			zap.Error(err),
			zap.String("order_id", order.ID.String()),
		)
	}

	if s.metrics != nil {
		s.metrics.OrderStatusTransitions.WithLabelValues(string(from), string(to)).Inc()
	}

	if s.bus != nil {
		s.bus.Publish(events.NewOrderStatusChangedEvent(order.ID, string(from), string(to)))
	}

	s.logger.Info("order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	return order, nil
}

// Confirm moves a pending order to confirmed.
func (s *Service) Confirm(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	return s.TransitionStatus(ctx, orderID, OrderStatusConfirmed, "")
}

// Cancel cancels an order.
func (s *Service) Cancel(ctx context.Context, orderID uuid.UUID, reason string) (*Order, error) {
	order, err := s.TransitionStatus(ctx, orderID, OrderStatusCancelled, reason)
	if err != nil {
		return nil, ErrOrderNotCancelable
	}
	return order, nil
}

// MarkFailed marks an order's payment as failed.
func (s *Service) MarkFailed(ctx context.Context, orderID uuid.UUID, reason string) (*Order, error) {
	return s.TransitionStatus(ctx, orderID, OrderStatusFailed, reason)
}

// MarkRefunded marks an order as refunded.
func (s *Service) MarkRefunded(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	order, err := s.TransitionStatus(ctx, orderID, OrderStatusRefunded, "")
	if err != nil {
		return nil, ErrOrderNotRefundable
	}
	return order, nil
}

// ProcessOverdueOrders finds confirmed or preparing orders past their
// preparation deadline and publishes one overdue event per order. Meant
// to run periodically.
func (s *Service) ProcessOverdueOrders(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.repo.ListOverdueOrders(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list overdue orders: %w", err)
	}

	var count int
	for _, o := range overdue {
		if !o.Overdue(now) {
			continue
		}
		o.OverdueNotifiedAt = &now
		if err := s.repo.UpdateOrder(ctx, o); err != nil {
			s.logger.Error("failed to mark order overdue",
				zap.Error(err),
				zap.String("order_id", o.ID.String()),
			)
			continue
		}
		if s.bus != nil {
			s.bus.Publish(events.NewOrderOverdueEvent(o.ID, *o.EstimatedReadyAt))
		}
		s.logger.Warn("order overdue",
			zap.String("order_id", o.ID.String()),
			zap.String("order_no", o.OrderNo),
			zap.Time("deadline", *o.EstimatedReadyAt),
		)
		count++
	}
	return count, nil
}

func generateOrderNo() string {
	now := time.Now()
	suffix := random.UpperAlphaNum(5)
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
