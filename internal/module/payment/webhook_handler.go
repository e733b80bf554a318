package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frozenfood/server/internal/module/order"
)

// PreCheckoutAnswerer answers Telegram pre-checkout queries. Implemented
// by the bot client.
type PreCheckoutAnswerer interface {
	AnswerPreCheckout(ctx context.Context, queryID string, ok bool, errorMessage string) error
}

// WebhookHandler processes Telegram bot webhook updates that concern
// payments. It is the webhook-mode counterpart of the long-polling loop.
type WebhookHandler struct {
	service  *Service
	answerer PreCheckoutAnswerer
	secret   string
	logger   *zap.Logger
}

// NewWebhookHandler creates a new webhook handler. The secret, when set,
// must match the X-Telegram-Bot-Api-Secret-Token header Telegram sends.
func NewWebhookHandler(service *Service, answerer PreCheckoutAnswerer, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service:  service,
		answerer: answerer,
		secret:   secret,
		logger:   logger,
	}
}

// RegisterRoutes registers the webhook routes.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/telegram", h.HandleTelegramWebhook)
	r.POST("/payment-status", h.HandlePaymentStatus)
}

// PaymentStatusUpdate is a payment status notification from the payment
// provider's side channel. Telegram itself only reports successes; failed
// and abandoned payments arrive here.
type PaymentStatusUpdate struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
	Status  string    `json:"status" binding:"required"`
	Error   string    `json:"error"`
}

// HandlePaymentStatus ingests a failed or cancelled payment notification
// and routes it to the matching payment transition.
func (h *WebhookHandler) HandlePaymentStatus(c *gin.Context) {
	if h.secret != "" && c.GetHeader("X-Webhook-Secret") != h.secret {
		h.logger.Warn("webhook secret mismatch")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret"})
		return
	}

	var update PaymentStatusUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ctx := c.Request.Context()

	var err error
	switch update.Status {
	case "failed":
		reason := update.Error
		if reason == "" {
			reason = "payment failed"
		}
		err = h.service.HandlePaymentFailed(ctx, update.OrderID, reason)
	case "cancelled":
		err = h.service.HandlePaymentCancelled(ctx, update.OrderID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}
	if err != nil {
		h.logger.Error("failed to process payment status update",
			zap.String("order_id", update.OrderID.String()),
			zap.String("status", update.Status),
			zap.Error(err),
		)
		if errors.Is(err, ErrPaymentNotFound) || errors.Is(err, order.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// HandleTelegramWebhook handles an incoming Telegram update.
func (h *WebhookHandler) HandleTelegramWebhook(c *gin.Context) {
	if h.secret != "" && c.GetHeader("X-Telegram-Bot-Api-Secret-Token") != h.secret {
		h.logger.Warn("webhook secret mismatch")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret"})
		return
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Error("failed to parse update", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update"})
		return
	}

	ctx := c.Request.Context()

	switch {
	case update.PreCheckoutQuery != nil:
		h.handlePreCheckout(ctx, update.PreCheckoutQuery)
	case update.Message != nil && update.Message.SuccessfulPayment != nil:
		h.handleSuccessfulPayment(ctx, update.Message.SuccessfulPayment)
	}

	// Telegram retries on non-2xx; per-update failures are handled and
	// logged above.
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *WebhookHandler) handlePreCheckout(ctx context.Context, query *tgbotapi.PreCheckoutQuery) {
	if h.answerer == nil {
		h.logger.Warn("pre-checkout query received without a bot client", zap.String("query_id", query.ID))
		return
	}

	err := h.service.HandlePreCheckout(ctx, query.InvoicePayload, int64(query.TotalAmount))
	if err != nil {
		h.logger.Warn("pre-checkout rejected",
			zap.String("query_id", query.ID),
			zap.Error(err),
		)
		if answerErr := h.answerer.AnswerPreCheckout(ctx, query.ID, false, "Заказ больше не доступен для оплаты"); answerErr != nil {
			h.logger.Error("failed to answer pre-checkout", zap.Error(answerErr))
		}
		return
	}

	if err := h.answerer.AnswerPreCheckout(ctx, query.ID, true, ""); err != nil {
		h.logger.Error("failed to answer pre-checkout", zap.Error(err))
	}
}

func (h *WebhookHandler) handleSuccessfulPayment(ctx context.Context, sp *tgbotapi.SuccessfulPayment) {
	err := h.service.HandleSuccessfulPayment(
		ctx,
		sp.InvoicePayload,
		int64(sp.TotalAmount),
		sp.TelegramPaymentChargeID,
		sp.ProviderPaymentChargeID,
	)
	if err != nil {
		h.logger.Error("failed to process successful payment",
			zap.String("charge_id", sp.TelegramPaymentChargeID),
			zap.Error(err),
		)
	}
}
