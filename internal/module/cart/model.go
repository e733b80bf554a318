package cart

import "github.com/google/uuid"

// Item is a single cart line.
type Item struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Line is a cart item resolved against the catalog.
type Line struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"unit_price"` // In rubles
	Quantity  int       `json:"quantity"`
	Amount    int64     `json:"amount"` // quantity * unit_price
}

// Cart is the resolved cart for a Telegram user.
type Cart struct {
	UserID int64  `json:"user_id"`
	Lines  []Line `json:"lines"`
	Total  int64  `json:"total"` // In rubles
}

// Empty returns true if the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}
