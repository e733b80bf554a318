package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/frozenfood/server/internal/shared/errors"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers public catalog routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	categories := r.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id/products", h.ListProducts)
	}
	r.GET("/products/:id", h.GetProduct)
}

// RegisterAdminRoutes registers catalog routes that require admin access.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	categories := r.Group("/categories")
	{
		categories.GET("", h.ListAllCategories)
		categories.POST("", h.CreateCategory)
		categories.PATCH("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}
	products := r.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.PATCH("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

// ListCategories returns active categories for the storefront.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListActiveCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": CategoriesToResponse(categories)})
}

// ListAllCategories returns all categories, including inactive ones.
func (h *Handler) ListAllCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": CategoriesToResponse(categories)})
}

// ListProducts returns available products in a category.
func (h *Handler) ListProducts(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	products, err := h.service.ListProductsByCategory(c.Request.Context(), categoryID)
	if err != nil {
		handleCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": ProductsToResponse(products)})
}

// GetProduct returns a single product.
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": ProductToResponse(product)})
}

// CreateCategory creates a new category.
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := &Category{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    true,
		SortOrder:   req.SortOrder,
	}
	if err := h.service.CreateCategory(c.Request.Context(), category); err != nil {
		handleCatalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": CategoryToResponse(category)})
}

// UpdateCategory updates an existing category.
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		handleCatalogError(c, err)
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.ImageURL != nil {
		category.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}

	if err := h.service.UpdateCategory(c.Request.Context(), category); err != nil {
		handleCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": CategoryToResponse(category)})
}

// DeleteCategory removes a category.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		handleCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// CreateProduct creates a new product.
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := &Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Discount:    req.Discount,
		ImageURL:    req.ImageURL,
		Weight:      req.Weight,
		IsActive:    true,
		InStock:     true,
		SortOrder:   req.SortOrder,
	}
	if err := h.service.CreateProduct(c.Request.Context(), product); err != nil {
		handleCatalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": ProductToResponse(product)})
}

// UpdateProduct updates an existing product.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleCatalogError(c, err)
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Discount != nil {
		product.Discount = req.Discount
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.Weight != nil {
		product.Weight = *req.Weight
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.InStock != nil {
		product.InStock = *req.InStock
	}
	if req.SortOrder != nil {
		product.SortOrder = *req.SortOrder
	}

	if err := h.service.UpdateProduct(c.Request.Context(), product); err != nil {
		handleCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": ProductToResponse(product)})
}

// DeleteProduct removes a product.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		handleCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func handleCatalogError(c *gin.Context, err error) {
	appErr := toAppError(err)
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}

func toAppError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, ErrCategoryNotFound), errors.Is(err, ErrProductNotFound):
		return apperrors.NewAppError("NOT_FOUND", err.Error(), http.StatusNotFound, err)
	case errors.Is(err, ErrDuplicateName):
		return apperrors.Conflict(err.Error())
	default:
		return apperrors.Internal("internal server error", err)
	}
}
