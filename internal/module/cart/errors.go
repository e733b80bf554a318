package cart

import "errors"

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrItemNotFound       = errors.New("item not in cart")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrProductUnavailable = errors.New("product is not available")
)
