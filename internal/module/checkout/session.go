package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frozenfood/server/internal/module/order"
	"github.com/frozenfood/server/internal/module/payment"
	"github.com/frozenfood/server/internal/shared/events"
)

// PaymentService is the slice of the payment module a checkout session
// drives. Satisfied by *payment.Service.
type PaymentService interface {
	Methods() []payment.Method
	CreateOrderWithPayment(ctx context.Context, input order.CreateOrderInput) (*payment.CheckoutResult, error)
	InitiateTelegramPayment(ctx context.Context, orderID uuid.UUID) error
	CheckStatus(ctx context.Context, orderID uuid.UUID) (*payment.StatusResponse, error)
	ValidateOrderAmount(amount int64) bool
}

// State is the observable snapshot of a checkout session.
type State struct {
	// Loading is true while an operation is in flight.
	Loading bool

	// Err is the last failure message shown to the user, empty when none.
	Err string

	// Order is the created order, nil until creation succeeds. Cleared
	// only by Reset.
	Order *order.Order

	// PaymentStatus is the last polled payment status snapshot, nil until
	// the first successful status check.
	PaymentStatus *payment.StatusResponse

	// SelectedMethod is the payment method the user picked.
	SelectedMethod order.PaymentMethod
}

// User-facing copy for failures that carry no message of their own.
const (
	genericErrorMessage   = "Произошла ошибка. Попробуйте ещё раз."
	cancelledErrorMessage = "Платёж был отменён"
)

// ErrSessionClosed is returned by operations invoked after Close.
var ErrSessionClosed = errors.New("checkout: session closed")

// Session coordinates one checkout flow: it holds the payment state,
// sequences calls to the payment service and reacts to payment outcome
// events for the order it currently holds.
//
// Operations may overlap: the lock is released during external calls. Each
// invocation takes a generation number and a completion whose generation
// is no longer the latest discards its writes, so a superseded operation
// cannot clobber newer state.
type Session struct {
	payments PaymentService
	bus      *events.Bus
	logger   *zap.Logger

	mu           sync.Mutex
	state        State
	gen          uint64
	subscription events.Handler
	closed       bool
}

// NewSession creates a session with default state.
func NewSession(payments PaymentService, bus *events.Bus, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		payments: payments,
		bus:      bus,
		logger:   logger,
		state:    defaultState(),
	}
}

func defaultState() State {
	return State{SelectedMethod: payment.DefaultMethod}
}

// State returns a snapshot of the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SelectPaymentMethod records the user's choice and clears any previous
// error. No I/O.
func (s *Session) SelectPaymentMethod(method order.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state.SelectedMethod = method
	s.state.Err = ""
}

// ClearError dismisses the current error.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Err = ""
}

// Reset restores the default state and drops the event subscription for
// the held order. In-flight operations are superseded: their completions
// are discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.unbindLocked()
	s.state = defaultState()
}

// Close tears the session down. No event is processed and no operation
// completes after Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gen++
	s.unbindLocked()
}

// CreateOrderWithPayment places the order with the currently selected
// method. When the result requires an online payment and the selected
// method is Telegram, it chains into InitiateTelegramPayment for the new
// order; the chained call starts only after creation succeeded.
func (s *Session) CreateOrderWithPayment(ctx context.Context, input order.CreateOrderInput) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.gen++
	gen := s.gen
	s.state.Loading = true
	s.state.Err = ""
	method := s.state.SelectedMethod
	s.mu.Unlock()

	input.PaymentMethod = method
	result, err := s.payments.CreateOrderWithPayment(ctx, input)
	if err != nil {
		return s.fail(gen, err)
	}

	s.mu.Lock()
	stale := s.closed || gen != s.gen
	if !stale {
		s.state.Loading = false
		s.state.Order = result.Order
		s.bindLocked(result.Order)
	}
	s.mu.Unlock()
	if stale {
		return nil
	}

	if result.PaymentRequired && method == order.PaymentMethodTelegram {
		return s.InitiateTelegramPayment(ctx, result.Order.ID)
	}
	return nil
}

// InitiateTelegramPayment asks the payment service to send the invoice
// for the given order.
func (s *Session) InitiateTelegramPayment(ctx context.Context, orderID uuid.UUID) error {
	gen, err := s.begin()
	if err != nil {
		return err
	}
	if err := s.payments.InitiateTelegramPayment(ctx, orderID); err != nil {
		return s.fail(gen, err)
	}
	s.apply(gen, nil)
	return nil
}

// CheckPaymentStatus polls the authoritative payment status for an order
// and stores the result.
func (s *Session) CheckPaymentStatus(ctx context.Context, orderID uuid.UUID) error {
	gen, err := s.begin()
	if err != nil {
		return err
	}
	status, err := s.payments.CheckStatus(ctx, orderID)
	if err != nil {
		return s.fail(gen, err)
	}
	s.apply(gen, func(st *State) {
		st.PaymentStatus = status
	})
	return nil
}

// PaymentMethods lists the method catalog as the payment service reports
// it.
func (s *Session) PaymentMethods() []payment.Method {
	return s.payments.Methods()
}

// PaymentMethod looks a method up by identifier.
func (s *Session) PaymentMethod(id order.PaymentMethod) (payment.Method, bool) {
	for _, m := range s.payments.Methods() {
		if m.ID == id {
			return m, true
		}
	}
	return payment.Method{}, false
}

// ValidateOrderAmount reports whether the amount meets the minimum order
// rule. Advisory: it does not gate CreateOrderWithPayment.
func (s *Session) ValidateOrderAmount(amount int64) bool {
	return s.payments.ValidateOrderAmount(amount)
}

// begin opens a new operation generation and marks the session loading.
func (s *Session) begin() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSessionClosed
	}
	s.gen++
	s.state.Loading = true
	s.state.Err = ""
	return s.gen, nil
}

// apply commits an operation result unless a newer operation superseded it.
func (s *Session) apply(gen uint64, mutate func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		return
	}
	s.state.Loading = false
	if mutate != nil {
		mutate(&s.state)
	}
}

// fail records a failure message and hands the error back to the caller.
// A superseded failure leaves state alone but is still returned.
func (s *Session) fail(gen uint64, opErr error) error {
	s.mu.Lock()
	if !s.closed && gen == s.gen {
		s.state.Loading = false
		s.state.Err = failureMessage(opErr)
	}
	s.mu.Unlock()
	return opErr
}

func failureMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return genericErrorMessage
}

// bindLocked subscribes the session to payment outcome events for the
// given order, replacing any previous subscription. Caller holds s.mu.
func (s *Session) bindLocked(o *order.Order) {
	s.unbindLocked()
	if o == nil || s.bus == nil {
		return
	}
	orderID := o.ID
	h := events.NewHandlerFunc(
		[]string{events.PaymentSucceededType, events.PaymentCancelledType, events.PaymentFailedType},
		func(e events.Event) error {
			return s.onPaymentEvent(orderID, e)
		},
	)
	s.bus.Register(h)
	s.subscription = h
}

func (s *Session) unbindLocked() {
	if s.subscription != nil && s.bus != nil {
		s.bus.Unregister(s.subscription)
		s.subscription = nil
	}
}

// onPaymentEvent reacts to a payment outcome for the order the handler
// was bound to. Events for any other order, or arriving after the held
// order changed, are discarded.
func (s *Session) onPaymentEvent(boundOrder uuid.UUID, event events.Event) error {
	s.mu.Lock()
	if s.closed || s.state.Order == nil || s.state.Order.ID != boundOrder {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	switch e := event.(type) {
	case *events.PaymentSucceededEvent:
		if e.OrderID != boundOrder {
			return nil
		}
		// The push is a hint; the poll is authoritative.
		return s.CheckPaymentStatus(context.Background(), boundOrder)
	case *events.PaymentCancelledEvent:
		if e.OrderID != boundOrder {
			return nil
		}
		s.setAsyncError(cancelledErrorMessage)
	case *events.PaymentFailedEvent:
		if e.OrderID != boundOrder {
			return nil
		}
		s.setAsyncError(fmt.Sprintf("Ошибка оплаты: %s", e.Error))
	}
	return nil
}

// setAsyncError surfaces a failure delivered by event. There is no
// synchronous caller to hand the error to, so state is the only outlet.
func (s *Session) setAsyncError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state.Loading = false
	s.state.Err = msg
}
