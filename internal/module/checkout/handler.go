package checkout

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frozenfood/server/internal/module/cart"
	"github.com/frozenfood/server/internal/module/catalog"
	"github.com/frozenfood/server/internal/module/order"
	"github.com/frozenfood/server/internal/module/payment"
	apperrors "github.com/frozenfood/server/internal/shared/errors"
	"github.com/frozenfood/server/internal/telegram"
)

// Handler exposes the checkout flow to the Telegram WebApp.
type Handler struct {
	sessions       *Manager
	carts          *cart.Service
	catalog        *catalog.Service
	minOrderAmount int64
	logger         *zap.Logger
}

// NewHandler creates a new checkout handler.
func NewHandler(sessions *Manager, carts *cart.Service, catalogSvc *catalog.Service, minOrderAmount int64, logger *zap.Logger) *Handler {
	return &Handler{
		sessions:       sessions,
		carts:          carts,
		catalog:        catalogSvc,
		minOrderAmount: minOrderAmount,
		logger:         logger,
	}
}

// RegisterRoutes registers checkout routes for Telegram users.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/checkout")
	g.GET("", h.GetCheckout)
	g.GET("/categories", h.CategoryFilter)
	g.POST("/method", h.SelectMethod)
	g.POST("/order", h.PlaceOrder)
	g.POST("/orders/:id/initiate", h.Initiate)
	g.GET("/orders/:id/status", h.Status)
	g.POST("/error/clear", h.ClearError)
	g.POST("/reset", h.Reset)
}

// GetCheckout returns the checkout screen: session state, the method
// selector and the payment button computed from the cart total.
func (h *Handler) GetCheckout(c *gin.Context) {
	userID, ok := telegram.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	userCart, err := h.carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("get cart failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	sess := h.sessions.Session(userID)
	st := sess.State()

	c.JSON(http.StatusOK, CheckoutResponse{
		State:         toStateResponse(st),
		Methods:       BuildMethodSelector(sess.PaymentMethods(), st.SelectedMethod, st.Loading),
		Button:        BuildPaymentButton(userCart.Total, st.SelectedMethod, st.Loading, h.minOrderAmount),
		CartTotal:     userCart.Total,
		MinOrderMet:   sess.ValidateOrderAmount(userCart.Total),
		MinOrderValue: h.minOrderAmount,
	})
}

// CategoryFilter returns the storefront category filter view.
func (h *Handler) CategoryFilter(c *gin.Context) {
	categories, err := h.catalog.ListActiveCategories(c.Request.Context())
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, BuildCategoryFilter(categories, c.Query("selected"), false, false))
}

// SelectMethod records the chosen payment method on the session.
func (h *Handler) SelectMethod(c *gin.Context) {
	userID, ok := telegram.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SelectMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := h.sessions.Session(userID)
	if _, ok := sess.PaymentMethod(req.Method); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": payment.ErrMethodNotSupported.Error()})
		return
	}

	sess.SelectPaymentMethod(req.Method)
	c.JSON(http.StatusOK, toStateResponse(sess.State()))
}

// PlaceOrder builds the order from the user's cart and runs the combined
// create-with-payment flow. The cart is cleared once the order exists.
func (h *Handler) PlaceOrder(c *gin.Context) {
	userID, ok := telegram.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	userCart, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		h.logger.Error("get cart failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if userCart.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": cart.ErrEmptyCart.Error()})
		return
	}

	items := make([]order.ItemInput, 0, len(userCart.Lines))
	for _, line := range userCart.Lines {
		items = append(items, order.ItemInput{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	sess := h.sessions.Session(userID)
	held := sess.State().Order
	err = sess.CreateOrderWithPayment(ctx, order.CreateOrderInput{
		TelegramUserID: userID,
		DeliveryType:   req.DeliveryType,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		Address:        req.Address,
		Comment:        req.Comment,
		Items:          items,
	})
	st := sess.State()

	// The order may exist even when the call failed: the chained invoice
	// step can reject after creation. Clear the cart whenever a new order
	// was created, or a retry would duplicate it.
	if st.Order != nil && (held == nil || held.ID != st.Order.ID) {
		if clearErr := h.carts.Clear(ctx, userID); clearErr != nil {
			h.logger.Warn("cart clear after order failed",
				zap.Int64("user_id", userID),
				zap.Error(clearErr),
			)
		}
	}

	if err != nil {
		handleCheckoutError(c, err, st)
		return
	}

	resp := PlaceOrderResponse{State: toStateResponse(st)}
	if st.Order != nil {
		resp.OrderID = st.Order.ID
	}
	c.JSON(http.StatusCreated, resp)
}

// Initiate re-sends the Telegram invoice for the held order.
func (h *Handler) Initiate(c *gin.Context) {
	userID, ok := telegram.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	sess := h.sessions.Session(userID)
	if !h.ownsOrder(sess, orderID) {
		c.JSON(http.StatusNotFound, gin.H{"error": order.ErrOrderNotFound.Error()})
		return
	}

	if err := sess.InitiateTelegramPayment(c.Request.Context(), orderID); err != nil {
		handleCheckoutError(c, err, sess.State())
		return
	}
	c.JSON(http.StatusOK, toStateResponse(sess.State()))
}

// Status polls the payment status of the held order.
func (h *Handler) Status(c *gin.Context) {
	userID, ok := telegram.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	sess := h.sessions.Session(userID)
	if !h.ownsOrder(sess, orderID) {
		c.JSON(http.StatusNotFound, gin.H{"error": order.ErrOrderNotFound.Error()})
		return
	}

	if err := sess.CheckPaymentStatus(c.Request.Context(), orderID); err != nil {
		handleCheckoutError(c, err, sess.State())
		return
	}
	c.JSON(http.StatusOK, toStateResponse(sess.State()))
}

// ClearError dismisses the session error.
func (h *Handler) ClearError(c *gin.Context) {
	userID, ok := telegram.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sess := h.sessions.Session(userID)
	sess.ClearError()
	c.JSON(http.StatusOK, toStateResponse(sess.State()))
}

// Reset abandons the checkout flow and restores the default state.
func (h *Handler) Reset(c *gin.Context) {
	userID, ok := telegram.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sess := h.sessions.Session(userID)
	sess.Reset()
	c.JSON(http.StatusOK, toStateResponse(sess.State()))
}

// ownsOrder reports whether the session currently holds the given order.
// The checkout surface only ever operates on the held order; everything
// else lives under the order API.
func (h *Handler) ownsOrder(sess *Session, orderID uuid.UUID) bool {
	st := sess.State()
	return st.Order != nil && st.Order.ID == orderID
}

func handleCheckoutError(c *gin.Context, err error, st State) {
	appErr := toAppError(err)
	c.JSON(appErr.StatusCode, gin.H{
		"error": appErr.ToResponse().Error,
		"state": toStateResponse(st),
	})
}

func toAppError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, order.ErrBelowMinimumAmount),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrOrderNotPending),
		errors.Is(err, payment.ErrMethodNotSupported),
		errors.Is(err, payment.ErrMethodDisabled),
		errors.Is(err, payment.ErrPaymentNotPending),
		errors.Is(err, payment.ErrOrderNotPayable):
		return apperrors.BadRequest(err.Error())
	case errors.Is(err, order.ErrOrderNotFound), errors.Is(err, payment.ErrPaymentNotFound):
		return apperrors.NewAppError("NOT_FOUND", err.Error(), http.StatusNotFound, err)
	case errors.Is(err, ErrSessionClosed):
		return apperrors.Conflict(err.Error())
	default:
		return apperrors.Internal("internal server error", err)
	}
}
