package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frozenfood/server/internal/module/order"
	"github.com/frozenfood/server/internal/module/payment"
	"github.com/frozenfood/server/internal/shared/events"
)

type fakePayments struct {
	methods []payment.Method

	checkoutResult *payment.CheckoutResult
	checkoutErr    error
	checkoutCalls  []order.CreateOrderInput

	initiateErr   error
	initiateCalls []uuid.UUID

	status        *payment.StatusResponse
	statusErr     error
	statusCalls   []uuid.UUID
	onCheckStatus func()

	minAmount int64
}

func (f *fakePayments) Methods() []payment.Method { return f.methods }

func (f *fakePayments) CreateOrderWithPayment(_ context.Context, input order.CreateOrderInput) (*payment.CheckoutResult, error) {
	f.checkoutCalls = append(f.checkoutCalls, input)
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return f.checkoutResult, nil
}

func (f *fakePayments) InitiateTelegramPayment(_ context.Context, orderID uuid.UUID) error {
	f.initiateCalls = append(f.initiateCalls, orderID)
	return f.initiateErr
}

func (f *fakePayments) CheckStatus(_ context.Context, orderID uuid.UUID) (*payment.StatusResponse, error) {
	f.statusCalls = append(f.statusCalls, orderID)
	if f.onCheckStatus != nil {
		f.onCheckStatus()
	}
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.status, nil
}

func (f *fakePayments) ValidateOrderAmount(amount int64) bool {
	return amount >= f.minAmount
}

func newTestSession(t *testing.T) (*Session, *fakePayments, *events.Bus) {
	t.Helper()
	fake := &fakePayments{
		status:    &payment.StatusResponse{Status: payment.PaymentStatusPending},
		minAmount: 1500,
	}
	bus := events.NewBus(zap.NewNop())
	sess := NewSession(fake, bus, zap.NewNop())
	t.Cleanup(sess.Close)
	return sess, fake, bus
}

func testOrder(total int64) *order.Order {
	return &order.Order{
		ID:     uuid.New(),
		Status: order.OrderStatusPending,
		Total:  total,
	}
}

func TestSession_DefaultState(t *testing.T) {
	sess, _, _ := newTestSession(t)

	st := sess.State()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)
	assert.Nil(t, st.Order)
	assert.Nil(t, st.PaymentStatus)
	assert.Equal(t, order.PaymentMethodTelegram, st.SelectedMethod)
}

func TestSession_SelectPaymentMethod_LastSelectionWins(t *testing.T) {
	sess, fake, _ := newTestSession(t)

	fake.statusErr = errors.New("lookup failed")
	_ = sess.CheckPaymentStatus(context.Background(), uuid.New())
	require.NotEmpty(t, sess.State().Err)

	for _, m := range []order.PaymentMethod{
		order.PaymentMethodCash,
		order.PaymentMethodCard,
		order.PaymentMethodTelegram,
		order.PaymentMethodCash,
	} {
		sess.SelectPaymentMethod(m)
		st := sess.State()
		assert.Equal(t, m, st.SelectedMethod)
		assert.Empty(t, st.Err)
	}
}

func TestSession_Checkout_OfflineMethodSkipsInvoice(t *testing.T) {
	sess, fake, _ := newTestSession(t)
	o := testOrder(1800)
	fake.checkoutResult = &payment.CheckoutResult{Order: o, PaymentRequired: false}

	sess.SelectPaymentMethod(order.PaymentMethodCash)
	err := sess.CreateOrderWithPayment(context.Background(), order.CreateOrderInput{})
	require.NoError(t, err)

	st := sess.State()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)
	assert.Equal(t, o, st.Order)
	assert.Empty(t, fake.initiateCalls)

	require.Len(t, fake.checkoutCalls, 1)
	assert.Equal(t, order.PaymentMethodCash, fake.checkoutCalls[0].PaymentMethod)
}

func TestSession_Checkout_TelegramChainsIntoInvoice(t *testing.T) {
	sess, fake, _ := newTestSession(t)
	o := testOrder(1800)
	fake.checkoutResult = &payment.CheckoutResult{Order: o, PaymentRequired: true}

	err := sess.CreateOrderWithPayment(context.Background(), order.CreateOrderInput{})
	require.NoError(t, err)

	require.Len(t, fake.initiateCalls, 1)
	assert.Equal(t, o.ID, fake.initiateCalls[0])

	st := sess.State()
	assert.False(t, st.Loading)
	assert.Equal(t, o, st.Order)
}

func TestSession_Checkout_PaymentRequiredButNotTelegram(t *testing.T) {
	sess, fake, _ := newTestSession(t)
	fake.checkoutResult = &payment.CheckoutResult{Order: testOrder(1800), PaymentRequired: true}

	sess.SelectPaymentMethod(order.PaymentMethodCash)
	err := sess.CreateOrderWithPayment(context.Background(), order.CreateOrderInput{})
	require.NoError(t, err)

	assert.Empty(t, fake.initiateCalls)
}

func TestSession_Checkout_FailureSetsErrorAndPropagates(t *testing.T) {
	sess, fake, _ := newTestSession(t)
	fake.checkoutErr = errors.New("минимальная сумма заказа не достигнута")

	err := sess.CreateOrderWithPayment(context.Background(), order.CreateOrderInput{})
	require.Error(t, err)

	st := sess.State()
	assert.False(t, st.Loading)
	assert.Equal(t, "минимальная сумма заказа не достигнута", st.Err)
	assert.Nil(t, st.Order)
}

func TestSession_ChainedInvoiceFailurePropagates(t *testing.T) {
	sess, fake, _ := newTestSession(t)
	fake.checkoutResult = &payment.CheckoutResult{Order: testOrder(1800), PaymentRequired: true}
	fake.initiateErr = errors.New("invoice rejected")

	err := sess.CreateOrderWithPayment(context.Background(), order.CreateOrderInput{})
	require.Error(t, err)

	st := sess.State()
	assert.False(t, st.Loading)
	assert.Equal(t, "invoice rejected", st.Err)
	// The created order survives the failed invoice step.
	assert.NotNil(t, st.Order)
}

func TestSession_CheckPaymentStatus_StoresSnapshot(t *testing.T) {
	sess, fake, _ := newTestSession(t)

	orderID := uuid.New()
	fake.status = &payment.StatusResponse{
		OrderID:   orderID,
		PaymentID: uuid.New(),
		Status:    payment.PaymentStatusSucceeded,
		Amount:    1800,
		Method:    order.PaymentMethodTelegram,
		Paid:      true,
	}

	err := sess.CheckPaymentStatus(context.Background(), orderID)
	require.NoError(t, err)

	st := sess.State()
	assert.False(t, st.Loading)
	assert.Equal(t, fake.status, st.PaymentStatus)
	require.Len(t, fake.statusCalls, 1)
	assert.Equal(t, orderID, fake.statusCalls[0])
}

func TestSession_ClearError(t *testing.T) {
	sess, fake, _ := newTestSession(t)
	fake.statusErr = errors.New("boom")
	_ = sess.CheckPaymentStatus(context.Background(), uuid.New())
	require.NotEmpty(t, sess.State().Err)

	sess.ClearError()
	assert.Empty(t, sess.State().Err)
}

func TestSession_Reset_RestoresDefaults(t *testing.T) {
	sess, fake, _ := newTestSession(t)
	fake.checkoutResult = &payment.CheckoutResult{Order: testOrder(1800), PaymentRequired: true}
	fake.status = &payment.StatusResponse{Status: payment.PaymentStatusSucceeded, Paid: true}

	sess.SelectPaymentMethod(order.PaymentMethodCard)
	require.NoError(t, sess.CreateOrderWithPayment(context.Background(), order.CreateOrderInput{}))
	require.NoError(t, sess.CheckPaymentStatus(context.Background(), fake.checkoutResult.Order.ID))

	sess.Reset()

	st := sess.State()
	assert.Equal(t, State{SelectedMethod: order.PaymentMethodTelegram}, st)
}

func TestSession_SuccessEventForOtherOrderIgnored(t *testing.T) {
	sess, fake, bus := newTestSession(t)
	o := testOrder(1800)
	fake.checkoutResult = &payment.CheckoutResult{Order: o}
	require.NoError(t, sess.CreateOrderWithPayment(context.Background(), order.CreateOrderInput{}))

	before := sess.State()
	bus.Publish(events.NewPaymentSucceededEvent(uuid.New(), uuid.New(), 1800, "telegram"))

	assert.Empty(t, fake.statusCalls)
	assert.Equal(t, before, sess.State())
}

func TestSession_SuccessEventTriggersStatusCheck(t *testing.T) {
	sess, fake, bus := newTestSession(t)
	o := testOrder(1800)
	fake.checkoutResult = &payment.CheckoutResult{Order: o}
	fake.status = &payment.StatusResponse{OrderID: o.ID, Status: payment.PaymentStatusSucceeded, Paid: true}
	require.NoError(t, sess.CreateOrderWithPayment(context.Background(), order.CreateOrderInput{}))

	bus.Publish(events.NewPaymentSucceededEvent(o.ID, uuid.New(), 1800, "telegram"))

	require.Len(t, fake.statusCalls, 1)
	assert.Equal(t, o.ID, fake.statusCalls[0])
	require.NotNil(t, sess.State().PaymentStatus)
	assert.Equal(t, payment.PaymentStatusSucceeded, sess.State().PaymentStatus.Status)
}

func TestSession_CancelledEventSetsFixedError(t *testing.T) {
	sess, fake, bus := newTestSession(t)
	o := testOrder(1800)
	fake.checkoutResult = &payment.CheckoutResult{Order: o}
	require.NoError(t, sess.CreateOrderWithPayment(context.Background(), order.CreateOrderInput{}))

	bus.Publish(events.NewPaymentCancelledEvent(o.ID, uuid.New()))

	st := sess.State()
	assert.False(t, st.Loading)
	assert.Equal(t, "Платёж был отменён", st.Err)
}

func TestSession_FailedEventInterpolatesDetail(t *testing.T) {
	sess, fake, bus := newTestSession(t)
	o := testOrder(1800)
	fake.checkoutResult = &payment.CheckoutResult{Order: o}
	require.NoError(t, sess.CreateOrderWithPayment(context.Background(), order.CreateOrderInput{}))

	bus.Publish(events.NewPaymentFailedEvent(o.ID, uuid.New(), "карта отклонена"))

	st := sess.State()
	assert.False(t, st.Loading)
	assert.Contains(t, st.Err, "карта отклонена")
}

func TestSession_NoEventsAfterReset(t *testing.T) {
	sess, fake, bus := newTestSession(t)
	o := testOrder(1800)
	fake.checkoutResult = &payment.CheckoutResult{Order: o}
	require.NoError(t, sess.CreateOrderWithPayment(context.Background(), order.CreateOrderInput{}))

	sess.Reset()
	bus.Publish(events.NewPaymentSucceededEvent(o.ID, uuid.New(), 1800, "telegram"))

	assert.Empty(t, fake.statusCalls)
	assert.Equal(t, State{SelectedMethod: order.PaymentMethodTelegram}, sess.State())
}

func TestSession_NoEventsAfterClose(t *testing.T) {
	sess, fake, bus := newTestSession(t)
	o := testOrder(1800)
	fake.checkoutResult = &payment.CheckoutResult{Order: o}
	require.NoError(t, sess.CreateOrderWithPayment(context.Background(), order.CreateOrderInput{}))

	sess.Close()
	bus.Publish(events.NewPaymentCancelledEvent(o.ID, uuid.New()))

	assert.Empty(t, sess.State().Err)
	assert.Empty(t, fake.statusCalls)
}

func TestSession_OperationsAfterCloseRejected(t *testing.T) {
	sess, _, _ := newTestSession(t)
	sess.Close()

	err := sess.CreateOrderWithPayment(context.Background(), order.CreateOrderInput{})
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, sess.CheckPaymentStatus(context.Background(), uuid.New()), ErrSessionClosed)
}

func TestSession_SupersededCompletionDiscarded(t *testing.T) {
	sess, fake, _ := newTestSession(t)
	fake.status = &payment.StatusResponse{Status: payment.PaymentStatusSucceeded, Paid: true}
	// Reset fires while the status call is in flight; its completion must
	// not write into the fresh state.
	fake.onCheckStatus = func() { sess.Reset() }

	err := sess.CheckPaymentStatus(context.Background(), uuid.New())
	require.NoError(t, err)

	st := sess.State()
	assert.Nil(t, st.PaymentStatus)
	assert.False(t, st.Loading)
}

func TestSession_MethodLookup(t *testing.T) {
	sess, fake, _ := newTestSession(t)
	fake.methods = []payment.Method{
		{ID: order.PaymentMethodTelegram, Name: "Оплата через Telegram", Enabled: true},
		{ID: order.PaymentMethodCash, Name: "Наличными при получении", Enabled: true},
	}

	m, ok := sess.PaymentMethod(order.PaymentMethodCash)
	require.True(t, ok)
	assert.Equal(t, "Наличными при получении", m.Name)

	_, ok = sess.PaymentMethod(order.PaymentMethodCard)
	assert.False(t, ok)
}

func TestSession_ValidateOrderAmount(t *testing.T) {
	sess, _, _ := newTestSession(t)

	assert.False(t, sess.ValidateOrderAmount(1200))
	assert.True(t, sess.ValidateOrderAmount(1500))
	assert.True(t, sess.ValidateOrderAmount(2000))
}
