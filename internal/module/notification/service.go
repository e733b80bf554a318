package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frozenfood/server/internal/module/order"
	"github.com/frozenfood/server/internal/module/payment"
	"github.com/frozenfood/server/internal/shared/events"
	"github.com/frozenfood/server/internal/telegram"
)

// OrderLookup resolves orders for notification targeting. Satisfied by
// *order.Service.
type OrderLookup interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
}

// Service turns payment and order events into bot messages: the customer
// hears about their payment and order progress, the admin chat hears
// about new paid orders. Registered as an event handler on the bus.
type Service struct {
	orders      OrderLookup
	ui          telegram.UI
	adminChatID int64
	logger      *zap.Logger
}

// NewService creates the notification service.
func NewService(orders OrderLookup, ui telegram.UI, adminChatID int64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:      orders,
		ui:          ui,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// Handles returns the event types this service reacts to.
func (s *Service) Handles() []string {
	return []string{
		events.PaymentSucceededType,
		events.PaymentFailedType,
		events.OrderStatusChangedType,
		events.OrderOverdueType,
	}
}

// Handle dispatches one event. Send failures are logged and returned;
// the bus isolates them from other handlers.
func (s *Service) Handle(event events.Event) error {
	ctx := context.Background()

	switch e := event.(type) {
	case *events.PaymentSucceededEvent:
		return s.onPaymentSucceeded(ctx, e)
	case *events.PaymentFailedEvent:
		return s.onPaymentFailed(ctx, e)
	case *events.OrderStatusChangedEvent:
		return s.onOrderStatusChanged(ctx, e)
	case *events.OrderOverdueEvent:
		return s.onOrderOverdue(ctx, e)
	default:
		return nil
	}
}

func (s *Service) onPaymentSucceeded(ctx context.Context, e *events.PaymentSucceededEvent) error {
	o, err := s.orders.GetOrder(ctx, e.OrderID)
	if err != nil {
		return fmt.Errorf("resolve order %s: %w", e.OrderID, err)
	}

	text := fmt.Sprintf("Оплата получена! Заказ %s на сумму %s принят в работу.",
		o.OrderNo, payment.FormatAmount(e.Amount))
	if err := s.ui.Notify(ctx, o.TelegramUserID, text); err != nil {
		s.logger.Error("customer notification failed",
			zap.String("order_no", o.OrderNo),
			zap.Error(err),
		)
	}

	return s.notifyAdmin(ctx, fmt.Sprintf("Новый оплаченный заказ %s на %s (%s, %s)",
		o.OrderNo, payment.FormatAmount(e.Amount), o.CustomerName, o.CustomerPhone))
}

func (s *Service) onPaymentFailed(ctx context.Context, e *events.PaymentFailedEvent) error {
	o, err := s.orders.GetOrder(ctx, e.OrderID)
	if err != nil {
		return fmt.Errorf("resolve order %s: %w", e.OrderID, err)
	}

	text := fmt.Sprintf("Не удалось оплатить заказ %s: %s\nПопробуйте оформить заказ ещё раз.",
		o.OrderNo, e.Error)
	return s.ui.Notify(ctx, o.TelegramUserID, text)
}

// Customer-facing copy per order status. Statuses without copy produce
// no message.
func statusMessage(o *order.Order, to order.OrderStatus) string {
	switch to {
	case order.OrderStatusConfirmed:
		return fmt.Sprintf("Заказ %s подтверждён и передан на кухню.", o.OrderNo)
	case order.OrderStatusPreparing:
		return fmt.Sprintf("Заказ %s готовится.", o.OrderNo)
	case order.OrderStatusReady:
		if o.DeliveryType == order.DeliveryTypePickup {
			return fmt.Sprintf("Заказ %s готов к выдаче.", o.OrderNo)
		}
		return fmt.Sprintf("Заказ %s собран и передан курьеру.", o.OrderNo)
	case order.OrderStatusCompleted:
		return fmt.Sprintf("Заказ %s доставлен. Спасибо, что выбрали нас!", o.OrderNo)
	case order.OrderStatusCancelled:
		return fmt.Sprintf("Заказ %s отменён.", o.OrderNo)
	case order.OrderStatusRefunded:
		return fmt.Sprintf("По заказу %s оформлен возврат средств.", o.OrderNo)
	default:
		return ""
	}
}

func (s *Service) onOrderStatusChanged(ctx context.Context, e *events.OrderStatusChangedEvent) error {
	o, err := s.orders.GetOrder(ctx, e.OrderID)
	if err != nil {
		return fmt.Errorf("resolve order %s: %w", e.OrderID, err)
	}

	text := statusMessage(o, order.OrderStatus(e.To))
	if text == "" {
		return nil
	}
	return s.ui.Notify(ctx, o.TelegramUserID, text)
}

func (s *Service) onOrderOverdue(ctx context.Context, e *events.OrderOverdueEvent) error {
	o, err := s.orders.GetOrder(ctx, e.OrderID)
	if err != nil {
		return fmt.Errorf("resolve order %s: %w", e.OrderID, err)
	}

	return s.notifyAdmin(ctx, fmt.Sprintf("Заказ %s просрочен: должен был быть готов к %s (%s, %s)",
		o.OrderNo, e.Deadline.Format("15:04"), o.CustomerName, o.CustomerPhone))
}

func (s *Service) notifyAdmin(ctx context.Context, text string) error {
	if s.adminChatID == 0 {
		return nil
	}
	return s.ui.Notify(ctx, s.adminChatID, text)
}
