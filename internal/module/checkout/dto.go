package checkout

import (
	"github.com/google/uuid"

	"github.com/frozenfood/server/internal/module/order"
	"github.com/frozenfood/server/internal/module/payment"
)

// SelectMethodRequest picks a payment method for the session.
type SelectMethodRequest struct {
	Method order.PaymentMethod `json:"method" binding:"required"`
}

// PlaceOrderRequest carries the delivery details for order placement.
// Items and totals come from the user's cart, not the request.
type PlaceOrderRequest struct {
	DeliveryType  order.DeliveryType `json:"delivery_type" binding:"required"`
	CustomerName  string             `json:"customer_name" binding:"required"`
	CustomerPhone string             `json:"customer_phone" binding:"required"`
	Address       string             `json:"address"`
	Comment       string             `json:"comment"`
}

// StateResponse is the session state snapshot shown to the WebApp.
type StateResponse struct {
	Loading        bool                    `json:"loading"`
	Error          string                  `json:"error,omitempty"`
	Order          *order.OrderResponse    `json:"order,omitempty"`
	PaymentStatus  *payment.StatusResponse `json:"payment_status,omitempty"`
	SelectedMethod order.PaymentMethod     `json:"selected_method"`
}

func toStateResponse(st State) StateResponse {
	resp := StateResponse{
		Loading:        st.Loading,
		Error:          st.Err,
		PaymentStatus:  st.PaymentStatus,
		SelectedMethod: st.SelectedMethod,
	}
	if st.Order != nil {
		resp.Order = st.Order.ToResponse()
	}
	return resp
}

// CheckoutResponse is the full checkout screen: state plus view models.
type CheckoutResponse struct {
	State         StateResponse  `json:"state"`
	Methods       MethodSelector `json:"methods"`
	Button        PaymentButton  `json:"button"`
	CartTotal     int64          `json:"cart_total"`
	MinOrderMet   bool           `json:"min_order_met"`
	MinOrderValue int64          `json:"min_order_value"`
}

// PlaceOrderResponse reports the placement outcome.
type PlaceOrderResponse struct {
	State        StateResponse `json:"state"`
	OrderID      uuid.UUID     `json:"order_id"`
	Instructions string        `json:"instructions,omitempty"`
}
