package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frozenfood/server/internal/module/order"
	"github.com/frozenfood/server/internal/shared/events"
)

type fakeLookup struct {
	orders map[uuid.UUID]*order.Order
}

func (f *fakeLookup) GetOrder(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeUI struct {
	sent []sentMessage
}

func (f *fakeUI) Available() bool { return true }

func (f *fakeUI) Notify(_ context.Context, chatID int64, text string) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeUI) NotifyWithWebApp(ctx context.Context, chatID int64, text, _, _ string) error {
	return f.Notify(ctx, chatID, text)
}

const adminChat = int64(900)

func newTestService(orders ...*order.Order) (*Service, *fakeUI) {
	lookup := &fakeLookup{orders: make(map[uuid.UUID]*order.Order)}
	for _, o := range orders {
		lookup.orders[o.ID] = o
	}
	ui := &fakeUI{}
	return NewService(lookup, ui, adminChat, zap.NewNop()), ui
}

func paidOrder() *order.Order {
	return &order.Order{
		ID:             uuid.New(),
		OrderNo:        "ORD-20260828-AB12C",
		TelegramUserID: 42,
		Status:         order.OrderStatusConfirmed,
		DeliveryType:   order.DeliveryTypeCourier,
		CustomerName:   "Анна",
		CustomerPhone:  "+79990001122",
		Total:          1800,
	}
}

func TestHandle_PaymentSucceeded_NotifiesCustomerAndAdmin(t *testing.T) {
	o := paidOrder()
	svc, ui := newTestService(o)

	err := svc.Handle(events.NewPaymentSucceededEvent(o.ID, uuid.New(), 1800, "telegram"))
	require.NoError(t, err)

	require.Len(t, ui.sent, 2)
	assert.Equal(t, o.TelegramUserID, ui.sent[0].chatID)
	assert.Contains(t, ui.sent[0].text, o.OrderNo)
	assert.Contains(t, ui.sent[0].text, "1800₽")
	assert.Equal(t, adminChat, ui.sent[1].chatID)
	assert.Contains(t, ui.sent[1].text, "Анна")
}

func TestHandle_PaymentSucceeded_NoAdminChatConfigured(t *testing.T) {
	o := paidOrder()
	lookup := &fakeLookup{orders: map[uuid.UUID]*order.Order{o.ID: o}}
	ui := &fakeUI{}
	svc := NewService(lookup, ui, 0, zap.NewNop())

	require.NoError(t, svc.Handle(events.NewPaymentSucceededEvent(o.ID, uuid.New(), 1800, "telegram")))
	require.Len(t, ui.sent, 1)
	assert.Equal(t, o.TelegramUserID, ui.sent[0].chatID)
}

func TestHandle_PaymentFailed_NotifiesCustomer(t *testing.T) {
	o := paidOrder()
	svc, ui := newTestService(o)

	err := svc.Handle(events.NewPaymentFailedEvent(o.ID, uuid.New(), "карта отклонена"))
	require.NoError(t, err)

	require.Len(t, ui.sent, 1)
	assert.Equal(t, o.TelegramUserID, ui.sent[0].chatID)
	assert.Contains(t, ui.sent[0].text, "карта отклонена")
}

func TestHandle_OrderStatusChanged_PerStatusCopy(t *testing.T) {
	tests := []struct {
		to       order.OrderStatus
		delivery order.DeliveryType
		want     string
	}{
		{order.OrderStatusConfirmed, order.DeliveryTypeCourier, "подтверждён"},
		{order.OrderStatusPreparing, order.DeliveryTypeCourier, "готовится"},
		{order.OrderStatusReady, order.DeliveryTypeCourier, "курьеру"},
		{order.OrderStatusReady, order.DeliveryTypePickup, "к выдаче"},
		{order.OrderStatusCompleted, order.DeliveryTypeCourier, "доставлен"},
		{order.OrderStatusCancelled, order.DeliveryTypeCourier, "отменён"},
		{order.OrderStatusRefunded, order.DeliveryTypeCourier, "возврат"},
	}

	for _, tt := range tests {
		t.Run(string(tt.to)+"_"+string(tt.delivery), func(t *testing.T) {
			o := paidOrder()
			o.DeliveryType = tt.delivery
			svc, ui := newTestService(o)

			err := svc.Handle(events.NewOrderStatusChangedEvent(o.ID, "pending", string(tt.to)))
			require.NoError(t, err)

			require.Len(t, ui.sent, 1)
			assert.Contains(t, ui.sent[0].text, tt.want)
		})
	}
}

func TestHandle_OrderStatusChanged_SilentStatuses(t *testing.T) {
	o := paidOrder()
	svc, ui := newTestService(o)

	require.NoError(t, svc.Handle(events.NewOrderStatusChangedEvent(o.ID, "failed", "pending")))
	assert.Empty(t, ui.sent)
}

func TestHandle_UnknownOrder_ReturnsError(t *testing.T) {
	svc, ui := newTestService()

	err := svc.Handle(events.NewPaymentSucceededEvent(uuid.New(), uuid.New(), 1800, "telegram"))
	require.Error(t, err)
	assert.Empty(t, ui.sent)
}

func TestHandle_OrderOverdue_AlertsAdmin(t *testing.T) {
	o := paidOrder()
	svc, ui := newTestService(o)
	deadline := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)

	err := svc.Handle(events.NewOrderOverdueEvent(o.ID, deadline))
	require.NoError(t, err)

	require.Len(t, ui.sent, 1)
	assert.Equal(t, adminChat, ui.sent[0].chatID)
	assert.Contains(t, ui.sent[0].text, o.OrderNo)
	assert.Contains(t, ui.sent[0].text, "просрочен")
	assert.Contains(t, ui.sent[0].text, "14:30")
	assert.Contains(t, ui.sent[0].text, o.CustomerName)
	assert.Contains(t, ui.sent[0].text, o.CustomerPhone)
}

func TestHandle_OrderOverdue_NoAdminChatConfigured(t *testing.T) {
	o := paidOrder()
	lookup := &fakeLookup{orders: map[uuid.UUID]*order.Order{o.ID: o}}
	ui := &fakeUI{}
	svc := NewService(lookup, ui, 0, zap.NewNop())

	require.NoError(t, svc.Handle(events.NewOrderOverdueEvent(o.ID, time.Now())))
	assert.Empty(t, ui.sent)
}
