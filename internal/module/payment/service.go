package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frozenfood/server/internal/module/order"
	"github.com/frozenfood/server/internal/module/payment/provider"
	"github.com/frozenfood/server/internal/shared/events"
	"github.com/frozenfood/server/internal/utils/metrics"
)

// Service implements payment operations.
type Service struct {
	repo     Repository
	orders   *order.Service
	registry *ProviderRegistry
	bus      *events.Bus
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService creates a new payment service.
func NewService(
	repo Repository,
	orders *order.Service,
	registry *ProviderRegistry,
	bus *events.Bus,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:     repo,
		orders:   orders,
		registry: registry,
		bus:      bus,
		metrics:  m,
		logger:   logger,
	}
}

// Methods returns the payment method catalog. A method whose provider is
// not registered is reported as disabled.
func (s *Service) Methods() []Method {
	methods := methodCatalog()
	for i := range methods {
		if _, err := s.registry.Get(methods[i].ID); err != nil {
			methods[i].Enabled = false
		}
	}
	return methods
}

// ValidateOrderAmount reports whether an order total meets the minimum
// order amount. Advisory: order creation enforces the same rule itself.
func (s *Service) ValidateOrderAmount(amount int64) bool {
	return amount >= s.orders.MinOrderAmount()
}

// CheckoutResult is the outcome of creating an order with a payment method.
type CheckoutResult struct {
	Order *order.Order

	// PaymentRequired reports whether an online payment step must follow
	// before the order is confirmed.
	PaymentRequired bool

	// Instructions carries offline payment instructions, when any.
	Instructions string
}

// CreateOrderWithPayment creates an order and a pending payment record for
// the chosen method. For online methods the caller still has to initiate
// the payment step separately.
func (s *Service) CreateOrderWithPayment(ctx context.Context, input order.CreateOrderInput) (*CheckoutResult, error) {
	prov, err := s.registry.Get(input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.CreateOrder(ctx, input)
	if err != nil {
		return nil, err
	}

	paymentID := uuid.New()
	payment := &Payment{
		ID:             paymentID,
		OrderID:        o.ID,
		TelegramUserID: o.TelegramUserID,
		Amount:         o.Total,
		Currency:       o.Currency,
		Method:         input.PaymentMethod,
		Status:         PaymentStatusPending,
		InvoicePayload: BuildInvoicePayload(o.ID, paymentID),
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	result := &CheckoutResult{
		Order:           o,
		PaymentRequired: prov.RequiresOnlinePayment(),
	}

	// Offline methods resolve immediately; surface their instructions.
	if !prov.RequiresOnlinePayment() {
		initiation, err := prov.Initiate(ctx, &provider.Request{
			ChatID:  o.TelegramUserID,
			Payload: payment.InvoicePayload,
			Amount:  o.Total,
		})
		if err != nil {
			return nil, err
		}
		result.Instructions = initiation.Instructions
	}

	if s.metrics != nil {
		s.metrics.PaymentsTotal.WithLabelValues(string(input.PaymentMethod), string(PaymentStatusPending)).Inc()
	}

	return result, nil
}

// InitiateTelegramPayment sends the Telegram invoice for a pending order.
func (s *Service) InitiateTelegramPayment(ctx context.Context, orderID uuid.UUID) error {
	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !o.IsPending() {
		return ErrOrderNotPayable
	}

	payment, err := s.repo.GetLatestPaymentByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !payment.IsPending() {
		return ErrPaymentNotPending
	}

	prov, err := s.registry.Get(order.PaymentMethodTelegram)
	if err != nil {
		return err
	}

	lines := make([]provider.Line, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, provider.Line{
			Label:  fmt.Sprintf("%s × %d", item.Name, item.Quantity),
			Amount: item.Amount,
		})
	}
	if o.DeliveryFee > 0 {
		lines = append(lines, provider.Line{Label: "Доставка", Amount: o.DeliveryFee})
	}

	req := &provider.Request{
		ChatID:      o.TelegramUserID,
		Payload:     payment.InvoicePayload,
		Title:       fmt.Sprintf("Заказ %s", o.OrderNo),
		Description: fmt.Sprintf("Оплата заказа на сумму %s", FormatAmount(o.Total)),
		Amount:      o.Total,
		Lines:       lines,
	}
	if _, err := prov.Initiate(ctx, req); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.InvoicesSentTotal.Inc()
	}
	s.logger.Info("invoice sent",
		zap.String("order_id", o.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.Int64("amount", o.Total),
	)

	return nil
}

// CheckStatus returns the status snapshot of the latest payment for an
// order.
func (s *Service) CheckStatus(ctx context.Context, orderID uuid.UUID) (*StatusResponse, error) {
	payment, err := s.repo.GetLatestPaymentByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	resp := &StatusResponse{
		OrderID:   orderID,
		PaymentID: payment.ID,
		Status:    payment.Status,
		Amount:    payment.Amount,
		Method:    payment.Method,
		Paid:      payment.IsSucceeded(),
	}
	if payment.FailureMessage != nil {
		resp.Error = *payment.FailureMessage
	}
	return resp, nil
}

// GetPayment returns a payment by ID.
func (s *Service) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

// HandlePreCheckout validates a Telegram pre-checkout query. The amount
// arrives in kopecks.
func (s *Service) HandlePreCheckout(ctx context.Context, payload string, totalAmount int64) error {
	_, paymentID, err := ParseInvoicePayload(payload)
	if err != nil {
		return err
	}

	payment, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if !payment.IsPending() {
		return ErrPaymentNotPending
	}
	if totalAmount != payment.Amount*100 {
		return fmt.Errorf("%w: got %d kopecks, want %d", ErrAmountMismatch, totalAmount, payment.Amount*100)
	}
	return nil
}

// HandleSuccessfulPayment processes a confirmed Telegram payment. The
// Telegram charge ID doubles as the idempotency key; a payment seen twice
// is acknowledged without reprocessing.
func (s *Service) HandleSuccessfulPayment(
	ctx context.Context,
	payload string,
	totalAmount int64,
	telegramChargeID, providerChargeID string,
) error {
	exists, err := s.repo.WebhookEventExists(ctx, "telegram", telegramChargeID)
	if err != nil {
		s.logger.Error("failed to check webhook event", zap.Error(err))
		// Continue processing - better to process twice than miss
	}
	if exists {
		s.logger.Info("successful payment already processed",
			zap.String("charge_id", telegramChargeID),
		)
		return nil
	}

	event := &WebhookEvent{
		ID:        uuid.New(),
		Provider:  "telegram",
		EventID:   telegramChargeID,
		EventType: "successful_payment",
		Data:      payload,
	}
	if err := s.repo.CreateWebhookEvent(ctx, event); err != nil {
		s.logger.Error("failed to store webhook event", zap.Error(err))
	}

	processErr := s.processSuccessfulPayment(ctx, payload, totalAmount, telegramChargeID, providerChargeID)

	if err := s.repo.MarkWebhookEventProcessed(ctx, "telegram", telegramChargeID, processErr); err != nil {
		s.logger.Error("failed to mark webhook event processed", zap.Error(err))
	}
	return processErr
}

func (s *Service) processSuccessfulPayment(
	ctx context.Context,
	payload string,
	totalAmount int64,
	telegramChargeID, providerChargeID string,
) error {
	orderID, paymentID, err := ParseInvoicePayload(payload)
	if err != nil {
		return err
	}

	payment, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if !payment.IsPending() {
		return ErrPaymentNotPending
	}
	if totalAmount != payment.Amount*100 {
		return fmt.Errorf("%w: got %d kopecks, want %d", ErrAmountMismatch, totalAmount, payment.Amount*100)
	}

	now := time.Now()
	payment.Status = PaymentStatusSucceeded
	payment.TelegramPaymentChargeID = telegramChargeID
	payment.ProviderPaymentChargeID = providerChargeID
	payment.SucceededAt = &now
	if err := s.repo.UpdatePayment(ctx, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	if _, err := s.orders.Confirm(ctx, orderID); err != nil {
		s.logger.Error("failed to confirm paid order",
			zap.Error(err),
			zap.String("order_id", orderID.String()),
		)
	}

	if s.metrics != nil {
		s.metrics.PaymentsTotal.WithLabelValues(string(payment.Method), string(PaymentStatusSucceeded)).Inc()
		s.metrics.PaymentAmountRubles.WithLabelValues(string(payment.Method)).Observe(float64(payment.Amount))
	}

	if s.bus != nil {
		s.bus.Publish(events.NewPaymentSucceededEvent(orderID, payment.ID, payment.Amount, string(payment.Method)))
	}

	s.logger.Info("payment succeeded",
		zap.String("order_id", orderID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.Int64("amount", payment.Amount),
	)

	return nil
}

// HandlePaymentFailed marks a payment as failed and moves the order to the
// failed state so it can be retried.
func (s *Service) HandlePaymentFailed(ctx context.Context, orderID uuid.UUID, reason string) error {
	payment, err := s.repo.GetLatestPaymentByOrder(ctx, orderID)
	if err != nil {
		return err
	}

	now := time.Now()
	payment.Status = PaymentStatusFailed
	payment.FailureMessage = &reason
	payment.FailedAt = &now
	if err := s.repo.UpdatePayment(ctx, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	if _, err := s.orders.MarkFailed(ctx, orderID, reason); err != nil {
		s.logger.Error("failed to mark order failed", zap.Error(err))
	}

	if s.metrics != nil {
		s.metrics.PaymentsTotal.WithLabelValues(string(payment.Method), string(PaymentStatusFailed)).Inc()
	}
	if s.bus != nil {
		s.bus.Publish(events.NewPaymentFailedEvent(orderID, payment.ID, reason))
	}

	return nil
}

// HandlePaymentCancelled marks a payment as cancelled by the payer. The
// order stays pending so payment can be retried.
func (s *Service) HandlePaymentCancelled(ctx context.Context, orderID uuid.UUID) error {
	payment, err := s.repo.GetLatestPaymentByOrder(ctx, orderID)
	if err != nil {
		return err
	}

	payment.Status = PaymentStatusCancelled
	if err := s.repo.UpdatePayment(ctx, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PaymentsTotal.WithLabelValues(string(payment.Method), string(PaymentStatusCancelled)).Inc()
	}
	if s.bus != nil {
		s.bus.Publish(events.NewPaymentCancelledEvent(orderID, payment.ID))
	}

	return nil
}

// MarkRefunded marks a payment as refunded and moves the order along.
func (s *Service) MarkRefunded(ctx context.Context, orderID uuid.UUID) error {
	payment, err := s.repo.GetLatestPaymentByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !payment.IsSucceeded() {
		return ErrNotRefundable
	}

	payment.Status = PaymentStatusRefunded
	if err := s.repo.UpdatePayment(ctx, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	if _, err := s.orders.MarkRefunded(ctx, orderID); err != nil {
		s.logger.Error("failed to mark order refunded", zap.Error(err))
	}
	return nil
}
