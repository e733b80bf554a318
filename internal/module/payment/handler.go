package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/frozenfood/server/internal/module/order"
	apperrors "github.com/frozenfood/server/internal/shared/errors"
	"github.com/frozenfood/server/internal/telegram"
)

// Handler handles HTTP requests for payments.
type Handler struct {
	service *Service
}

// NewHandler creates a new payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers payment routes for Telegram users.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/payment/methods", h.ListMethods)
	r.POST("/orders/:id/pay", h.InitiatePayment)
	r.GET("/orders/:id/payment-status", h.PaymentStatus)
}

// RegisterAdminRoutes registers payment routes that require admin access.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.POST("/orders/:id/refund", h.Refund)
}

// ListMethods returns the payment method catalog.
func (h *Handler) ListMethods(c *gin.Context) {
	c.JSON(http.StatusOK, MethodsResponse{
		Methods:       h.service.Methods(),
		DefaultMethod: DefaultMethod,
	})
}

// InitiatePayment sends the Telegram invoice for one of the current
// user's pending orders.
func (h *Handler) InitiatePayment(c *gin.Context) {
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

	ctx := c.Request.Context()
	o, err := h.service.orders.GetOrder(ctx, orderID)
	if err != nil {
		handlePaymentError(c, err)
		return
	}
	if o.TelegramUserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": order.ErrOrderNotFound.Error()})
		return
	}

	if err := h.service.InitiateTelegramPayment(ctx, orderID); err != nil {
		handlePaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice_sent": true})
}

// PaymentStatus returns the payment status for an order.
func (h *Handler) PaymentStatus(c *gin.Context) {
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

	ctx := c.Request.Context()
	o, err := h.service.orders.GetOrder(ctx, orderID)
	if err != nil {
		handlePaymentError(c, err)
		return
	}
	if o.TelegramUserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": order.ErrOrderNotFound.Error()})
		return
	}

	status, err := h.service.CheckStatus(ctx, orderID)
	if err != nil {
		handlePaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Refund refunds a paid order (admin).
func (h *Handler) Refund(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	if err := h.service.MarkRefunded(c.Request.Context(), orderID); err != nil {
		handlePaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refunded": true})
}

func handlePaymentError(c *gin.Context, err error) {
	appErr := toAppError(err)
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}

func toAppError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, ErrPaymentNotFound), errors.Is(err, order.ErrOrderNotFound):
		return apperrors.NewAppError("NOT_FOUND", err.Error(), http.StatusNotFound, err)
	case errors.Is(err, ErrPaymentNotPending),
		errors.Is(err, ErrOrderNotPayable),
		errors.Is(err, ErrMethodNotSupported),
		errors.Is(err, ErrMethodDisabled),
		errors.Is(err, ErrNotRefundable),
		errors.Is(err, ErrAmountMismatch):
		return apperrors.BadRequest(err.Error())
	default:
		return apperrors.Internal("internal server error", err)
	}
}
