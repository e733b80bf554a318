package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateMachine_CanTransition(t *testing.T) {
	sm := NewStateMachine()

	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusFailed, true},
		{OrderStatusPending, OrderStatusReady, false},
		{OrderStatusPending, OrderStatusCompleted, false},

		{OrderStatusConfirmed, OrderStatusPreparing, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusCompleted, false},

		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusPreparing, OrderStatusCancelled, true},
		{OrderStatusPreparing, OrderStatusConfirmed, false},

		{OrderStatusReady, OrderStatusCompleted, true},
		{OrderStatusReady, OrderStatusCancelled, true},

		{OrderStatusCompleted, OrderStatusRefunded, true},
		{OrderStatusCompleted, OrderStatusPending, false},

		{OrderStatusCancelled, OrderStatusRefunded, true},
		{OrderStatusCancelled, OrderStatusPending, false},

		// Refunded is terminal
		{OrderStatusRefunded, OrderStatusPending, false},
		{OrderStatusRefunded, OrderStatusRefunded, false},

		// Failed payment can be retried or abandoned
		{OrderStatusFailed, OrderStatusPending, true},
		{OrderStatusFailed, OrderStatusCancelled, true},
		{OrderStatusFailed, OrderStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, sm.CanTransition(tt.from, tt.to))
		})
	}
}

func TestStateMachine_Transition(t *testing.T) {
	sm := NewStateMachine()

	order := &Order{Status: OrderStatusPending}
	err := sm.Transition(order, OrderStatusConfirmed)
	assert.NoError(t, err)
	assert.Equal(t, OrderStatusConfirmed, order.Status)

	err = sm.Transition(order, OrderStatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, OrderStatusConfirmed, order.Status)
}

func TestStateMachine_UnknownStatus(t *testing.T) {
	sm := NewStateMachine()
	assert.False(t, sm.CanTransition(OrderStatus("bogus"), OrderStatusPending))
	assert.Empty(t, sm.GetAllowedTransitions(OrderStatus("bogus")))
}
