package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products in the storefront.
type Category struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"not null;uniqueIndex"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active" gorm:"default:true;index"`
	SortOrder   int       `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

// TableName returns the database table name.
func (Category) TableName() string {
	return "categories"
}

// Product is a single storefront item.
type Product struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CategoryID  uuid.UUID `json:"category_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Price       int64     `json:"price"` // In rubles
	Discount    *int64    `json:"discount,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Weight      string    `json:"weight,omitempty"` // e.g. "500 г"
	IsActive    bool      `json:"is_active" gorm:"default:true;index"`
	InStock     bool      `json:"in_stock" gorm:"default:true"`
	SortOrder   int       `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Product) TableName() string {
	return "products"
}

// EffectivePrice returns the discounted price if a discount is set.
func (p *Product) EffectivePrice() int64 {
	if p.Discount != nil && *p.Discount > 0 && *p.Discount < p.Price {
		return *p.Discount
	}
	return p.Price
}

// Available returns true if the product can be ordered.
func (p *Product) Available() bool {
	return p.IsActive && p.InStock
}
