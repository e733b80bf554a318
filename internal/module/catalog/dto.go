package catalog

import "github.com/google/uuid"

// CreateCategoryRequest is the request to create a category.
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	SortOrder   int    `json:"sort_order"`
}

// UpdateCategoryRequest is the request to update a category.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	IsActive    *bool   `json:"is_active"`
	SortOrder   *int    `json:"sort_order"`
}

// CreateProductRequest is the request to create a product.
type CreateProductRequest struct {
	CategoryID  uuid.UUID `json:"category_id" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	Price       int64     `json:"price" binding:"required,gt=0"`
	Discount    *int64    `json:"discount"`
	ImageURL    string    `json:"image_url"`
	Weight      string    `json:"weight"`
	SortOrder   int       `json:"sort_order"`
}

// UpdateProductRequest is the request to update a product.
type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Discount    *int64  `json:"discount"`
	ImageURL    *string `json:"image_url"`
	Weight      *string `json:"weight"`
	IsActive    *bool   `json:"is_active"`
	InStock     *bool   `json:"in_stock"`
	SortOrder   *int    `json:"sort_order"`
}

// CategoryResponse is the API representation of a category.
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
}

// ProductResponse is the API representation of a product.
type ProductResponse struct {
	ID          uuid.UUID `json:"id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Discount    *int64    `json:"discount,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Weight      string    `json:"weight,omitempty"`
	InStock     bool      `json:"in_stock"`
}

// CategoryToResponse converts a category to its API representation.
func CategoryToResponse(c *Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		IsActive:    c.IsActive,
		SortOrder:   c.SortOrder,
	}
}

// CategoriesToResponse converts a list of categories.
func CategoriesToResponse(categories []*Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryToResponse(c))
	}
	return out
}

// ProductToResponse converts a product to its API representation.
func ProductToResponse(p *Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Discount:    p.Discount,
		ImageURL:    p.ImageURL,
		Weight:      p.Weight,
		InStock:     p.InStock,
	}
}

// ProductsToResponse converts a list of products.
func ProductsToResponse(products []*Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ProductToResponse(p))
	}
	return out
}
