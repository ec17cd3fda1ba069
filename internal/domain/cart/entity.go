// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/hackerz/marketplace/internal/domain/product"
)

// Cart is keyed by the visitor's session token. A cart without lines is
// still a valid, persisted cart.
type Cart struct {
	ID        string     `gorm:"primaryKey;size:250" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE;" json:"items,omitempty"`
}

// TableName overrides the table name
func (Cart) TableName() string {
	return "carts"
}

// CartItem is one line of a cart. There is at most one line per
// (cart, product) pair.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    string    `gorm:"not null;size:250;uniqueIndex:idx_cart_item_product" json:"cart_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_item_product;index" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product product.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"product"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// SubTotal is the line amount at the current product price, in cents
func (i *CartItem) SubTotal() int64 {
	return i.Product.Price * int64(i.Quantity)
}

// Summary is the derived view of a cart
type Summary struct {
	CartID string     `json:"cart_id"`
	Items  []CartItem `json:"items"`
	Total  int64      `json:"total"` // cents
	Count  int        `json:"count"` // sum of quantities
}

func summarize(cartID string, items []CartItem) *Summary {
	summary := &Summary{CartID: cartID, Items: items}
	for i := range items {
		summary.Total += items[i].SubTotal()
		summary.Count += items[i].Quantity
	}
	return summary
}
