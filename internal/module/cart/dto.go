package cart

import "github.com/google/uuid"

// AddItemRequest is the request to add a product to the cart.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// SetQuantityRequest is the request to set a product's quantity.
type SetQuantityRequest struct {
	Quantity int `json:"quantity" binding:"gte=0"`
}
