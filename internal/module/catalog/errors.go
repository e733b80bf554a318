package catalog

import "errors"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryInactive = errors.New("category is not active")
	ErrProductInactive  = errors.New("product is not available")
	ErrDuplicateName    = errors.New("name already exists")
)
