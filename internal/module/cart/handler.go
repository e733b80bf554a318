package cart

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/frozenfood/server/internal/module/catalog"
	apperrors "github.com/frozenfood/server/internal/shared/errors"
	"github.com/frozenfood/server/internal/telegram"
)

// Handler handles HTTP requests for the cart.
type Handler struct {
	service *Service
}

// NewHandler creates a new cart handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers cart routes. All routes require a validated
// Telegram user.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	cart := r.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddItem)
		cart.PUT("/items/:productID", h.SetQuantity)
		cart.DELETE("/items/:productID", h.RemoveItem)
		cart.DELETE("", h.Clear)
	}
}

// GetCart returns the resolved cart for the current user.
func (h *Handler) GetCart(c *gin.Context) {
	userID, ok := telegram.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	cart, err := h.service.GetCart(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// AddItem adds a product to the cart.
func (h *Handler) AddItem(c *gin.Context) {
	userID, ok := telegram.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity); err != nil {
		handleCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": true})
}

// SetQuantity sets a product's quantity in the cart.
func (h *Handler) SetQuantity(c *gin.Context) {
	userID, ok := telegram.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.SetQuantity(c.Request.Context(), userID, productID, req.Quantity); err != nil {
		handleCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// RemoveItem removes a product from the cart.
func (h *Handler) RemoveItem(c *gin.Context) {
	userID, ok := telegram.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.service.RemoveItem(c.Request.Context(), userID, productID); err != nil {
		handleCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// Clear empties the cart.
func (h *Handler) Clear(c *gin.Context) {
	userID, ok := telegram.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.Clear(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

func handleCartError(c *gin.Context, err error) {
	appErr := toAppError(err)
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}

func toAppError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, ErrItemNotFound), errors.Is(err, catalog.ErrProductNotFound):
		return apperrors.NewAppError("NOT_FOUND", err.Error(), http.StatusNotFound, err)
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrProductUnavailable):
		return apperrors.BadRequest(err.Error())
	default:
		return apperrors.Internal("internal server error", err)
	}
}
