// internal/domain/product/entity.go
package product

import (
	"time"
)

// Product represents the product entity. Prices are in cents.
type Product struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	VendorID     *uint     `gorm:"index" json:"vendor_id,omitempty"`
	CategoryID   uint      `gorm:"not null;index" json:"category_id"`
	Name         string    `gorm:"not null;size:200" json:"name"`
	Slug         string    `gorm:"uniqueIndex;not null;size:200" json:"slug"`
	Description  string    `gorm:"type:text" json:"description"`
	RegularPrice int64     `gorm:"not null" json:"regular_price"`
	Price        int64     `gorm:"not null" json:"price"`
	Stock        int       `gorm:"not null;default:0" json:"stock"`
	Available    bool      `gorm:"not null" json:"available"`
	Featured     bool      `gorm:"not null;default:false" json:"featured"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Category Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"category"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// InStock reports whether the product can be added to a cart
func (p *Product) InStock() bool {
	return p.Available && p.Stock > 0
}

// OnSale reports whether the selling price is below the regular price
func (p *Product) OnSale() bool {
	return p.Price < p.RegularPrice
}

// Category represents product categories
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null;size:100" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Category) TableName() string {
	return "categories"
}

// Review is a rating left by a user. A user has at most one review per product.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_review_product_user" json:"product_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_product_user;index" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Title     string    `gorm:"not null;size:100" json:"title"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"-"`
}

// TableName overrides the table name
func (Review) TableName() string {
	return "product_reviews"
}
