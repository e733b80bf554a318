package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frozenfood/server/internal/shared/events"
)

type fakeRepo struct {
	orders  map[uuid.UUID]*Order
	items   map[uuid.UUID][]OrderItem
	history []*StatusHistory
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: make(map[uuid.UUID]*Order),
		items:  make(map[uuid.UUID][]OrderItem),
	}
}

func (f *fakeRepo) CreateOrder(_ context.Context, o *Order) error {
	f.orders[o.ID] = o
	return nil
}

func (f *fakeRepo) GetOrder(_ context.Context, id uuid.UUID) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeRepo) GetOrderWithItems(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := f.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = f.items[id]
	return o, nil
}

func (f *fakeRepo) GetOrderByNo(_ context.Context, orderNo string) (*Order, error) {
	for _, o := range f.orders {
		if o.OrderNo == orderNo {
			return o, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (f *fakeRepo) ListOrders(context.Context, *Filter, *Pagination) ([]*Order, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) ListOrdersByUser(context.Context, int64, int) ([]*Order, error) {
	return nil, nil
}

func (f *fakeRepo) ListOverdueOrders(_ context.Context, now time.Time) ([]*Order, error) {
	var out []*Order
	for _, o := range f.orders {
		if o.Overdue(now) && o.OverdueNotifiedAt == nil {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateOrder(_ context.Context, o *Order) error {
	f.orders[o.ID] = o
	return nil
}

func (f *fakeRepo) CreateOrderItems(_ context.Context, items []OrderItem) error {
	if len(items) > 0 {
		f.items[items[0].OrderID] = items
	}
	return nil
}

func (f *fakeRepo) CreateStatusHistory(_ context.Context, entry *StatusHistory) error {
	f.history = append(f.history, entry)
	return nil
}

func (f *fakeRepo) ListStatusHistory(_ context.Context, orderID uuid.UUID) ([]*StatusHistory, error) {
	var out []*StatusHistory
	for _, h := range f.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}

type capturingHandler struct {
	events []events.Event
}

func (h *capturingHandler) Handles() []string {
	return []string{events.OrderStatusChangedType, events.OrderOverdueType}
}

func (h *capturingHandler) Handle(e events.Event) error {
	h.events = append(h.events, e)
	return nil
}

func newTestService(repo Repository, bus *events.Bus) *Service {
	return NewService(repo, bus, nil, zap.NewNop(), 1500)
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		TelegramUserID: 42,
		PaymentMethod:  PaymentMethodTelegram,
		CustomerName:   "Ivan",
		CustomerPhone:  "+79991234567",
		Address:        "Moscow",
		Items: []ItemInput{
			{ProductID: uuid.New(), Name: "Pelmeni", UnitPrice: 450, Quantity: 2},
			{ProductID: uuid.New(), Name: "Vareniki", UnitPrice: 600, Quantity: 1},
		},
	}
}

func TestCreateOrder_ComputesTotals(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)

	order, err := svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(1500), order.Subtotal)
	assert.Equal(t, int64(1500), order.Total)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, DeliveryTypeCourier, order.DeliveryType)
	assert.NotEmpty(t, order.OrderNo)
	assert.Len(t, order.Items, 2)
}

func TestCreateOrder_RejectsBelowMinimum(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)

	input := validInput()
	input.Items = []ItemInput{{ProductID: uuid.New(), Name: "Pelmeni", UnitPrice: 450, Quantity: 1}}

	_, err := svc.CreateOrder(context.Background(), input)
	assert.ErrorIs(t, err, ErrBelowMinimumAmount)
}

func TestCreateOrder_RejectsEmpty(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)

	input := validInput()
	input.Items = nil

	_, err := svc.CreateOrder(context.Background(), input)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestTransitionStatus_RecordsHistoryAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	bus := events.NewBus(nil)
	handler := &capturingHandler{}
	bus.Register(handler)
	svc := newTestService(repo, bus)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, validInput())
	require.NoError(t, err)

	confirmed, err := svc.Confirm(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusConfirmed, confirmed.Status)
	assert.NotNil(t, confirmed.ConfirmedAt)

	history, err := svc.GetStatusHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, OrderStatusPending, history[0].From)
	assert.Equal(t, OrderStatusConfirmed, history[0].To)

	require.Len(t, handler.events, 1)
	changed, ok := handler.events[0].(*events.OrderStatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, order.ID, changed.OrderID)
	assert.Equal(t, "pending", changed.From)
	assert.Equal(t, "confirmed", changed.To)
}

func TestTransitionStatus_RejectsInvalid(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.TransitionStatus(ctx, order.ID, OrderStatusCompleted, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirm_SetsPreparationDeadline(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, validInput())
	require.NoError(t, err)
	assert.Nil(t, order.EstimatedReadyAt)

	confirmed, err := svc.Confirm(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, confirmed.EstimatedReadyAt)
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, confirmed.ConfirmedAt.Add(preparationEstimate), *confirmed.EstimatedReadyAt)
}

func TestOrder_Overdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, (&Order{Status: OrderStatusConfirmed}).Overdue(now))
	assert.False(t, (&Order{Status: OrderStatusConfirmed, EstimatedReadyAt: &future}).Overdue(now))
	assert.True(t, (&Order{Status: OrderStatusConfirmed, EstimatedReadyAt: &past}).Overdue(now))
	assert.True(t, (&Order{Status: OrderStatusPreparing, EstimatedReadyAt: &past}).Overdue(now))
	assert.False(t, (&Order{Status: OrderStatusCompleted, EstimatedReadyAt: &past}).Overdue(now))
	assert.False(t, (&Order{Status: OrderStatusPending, EstimatedReadyAt: &past}).Overdue(now))
}

func TestProcessOverdueOrders_ReportsEachOrderOnce(t *testing.T) {
	repo := newFakeRepo()
	bus := events.NewBus(nil)
	handler := &capturingHandler{}
	bus.Register(handler)
	svc := newTestService(repo, bus)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, validInput())
	require.NoError(t, err)
	confirmed, err := svc.Confirm(ctx, order.ID)
	require.NoError(t, err)

	count, err := svc.ProcessOverdueOrders(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, count)

	later := confirmed.EstimatedReadyAt.Add(time.Minute)
	count, err = svc.ProcessOverdueOrders(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var overdue []*events.OrderOverdueEvent
	for _, e := range handler.events {
		if oe, ok := e.(*events.OrderOverdueEvent); ok {
			overdue = append(overdue, oe)
		}
	}
	require.Len(t, overdue, 1)
	assert.Equal(t, order.ID, overdue[0].OrderID)
	assert.Equal(t, *confirmed.EstimatedReadyAt, overdue[0].Deadline)

	count, err = svc.ProcessOverdueOrders(ctx, later)
	require.NoError(t, err)
	assert.Zero(t, count)
}
