package order

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/frozenfood/server/internal/shared/errors"
	"github.com/frozenfood/server/internal/telegram"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	service *Service
}

// NewHandler creates a new order handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers order routes for Telegram users.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.GET("", h.ListMyOrders)
		orders.GET("/:id", h.GetOrder)
	}
}

// RegisterAdminRoutes registers order routes that require admin access.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrderAdmin)
		orders.GET("/:id/history", h.GetStatusHistory)
		orders.POST("/:id/status", h.TransitionStatus)
	}
}

// ListMyOrders returns the current user's recent orders.
func (h *Handler) ListMyOrders(c *gin.Context) {
	userID, ok := telegram.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	orders, err := h.service.ListUserOrders(c.Request.Context(), userID, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	out := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

// GetOrder returns one of the current user's orders.
func (h *Handler) GetOrder(c *gin.Context) {
	userID, ok := telegram.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		handleOrderError(c, err)
		return
	}
	if order.TelegramUserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrOrderNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToResponse()})
}

// ListOrders returns orders matching the filter (admin).
func (h *Handler) ListOrders(c *gin.Context) {
	var filter Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pagination := NewPagination()
	if err := c.ShouldBindQuery(pagination); err != nil {
		pagination = NewPagination()
	}

	orders, total, err := h.service.ListOrders(c.Request.Context(), &filter, pagination)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	out := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ToResponse())
	}

	totalPages := int((total + int64(pagination.PageSize) - 1) / int64(pagination.PageSize))
	c.JSON(http.StatusOK, OrderListResponse{
		Orders:     out,
		Total:      total,
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
		TotalPages: totalPages,
	})
}

// GetOrderAdmin returns any order by ID (admin).
func (h *Handler) GetOrderAdmin(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		handleOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":               order.ToResponse(),
		"allowed_transitions": h.service.AllowedTransitions(order.Status),
	})
}

// GetStatusHistory returns an order's transition history (admin).
func (h *Handler) GetStatusHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	entries, err := h.service.GetStatusHistory(c.Request.Context(), id)
	if err != nil {
		handleOrderError(c, err)
		return
	}

	out := make([]StatusHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, StatusHistoryResponse{
			From:      e.From,
			To:        e.To,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"history": out})
}

// TransitionStatus moves an order to a new status (admin).
func (h *Handler) TransitionStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.service.TransitionStatus(c.Request.Context(), id, req.Status, req.Reason)
	if err != nil {
		handleOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order.ToResponse()})
}

func handleOrderError(c *gin.Context, err error) {
	appErr := toAppError(err)
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}

func toAppError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return apperrors.NewAppError("NOT_FOUND", err.Error(), http.StatusNotFound, err)
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrOrderNotCancelable),
		errors.Is(err, ErrOrderNotRefundable),
		errors.Is(err, ErrEmptyOrder),
		errors.Is(err, ErrBelowMinimumAmount):
		return apperrors.BadRequest(err.Error())
	default:
		return apperrors.Internal("internal server error", err)
	}
}
