// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order represents the order entity. Amounts are in cents; Total is the
// discounted subtotal with tax, without the shipping fee.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      *uint       `gorm:"index" json:"user_id"`
	FirstName   string      `gorm:"not null;size:50" json:"first_name"`
	LastName    string      `gorm:"not null;size:50" json:"last_name"`
	Email       string      `gorm:"not null;size:254" json:"email"`
	Address     string      `gorm:"not null;size:250" json:"address"`
	PostalCode  string      `gorm:"not null;size:20" json:"postal_code"`
	City        string      `gorm:"not null;size:100" json:"city"`
	Paid        bool        `gorm:"not null" json:"paid"`
	Status      OrderStatus `gorm:"not null;size:20;index" json:"status"`
	Subtotal    int64       `gorm:"not null" json:"subtotal"`
	Discount    int64       `gorm:"not null;default:0" json:"discount"`
	Total       int64       `gorm:"not null" json:"total"`
	CouponCode  string      `gorm:"size:50" json:"coupon_code,omitempty"`
	InvoicePath string      `gorm:"size:255" json:"invoice_path,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;" json:"items,omitempty"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem captures the product price at the time of the order
type OrderItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderID     uint   `gorm:"not null;index" json:"order_id"`
	ProductID   uint   `gorm:"not null;index" json:"product_id"`
	ProductName string `gorm:"not null;size:200" json:"product_name"`
	Price       int64  `gorm:"not null" json:"price"`
	Quantity    int    `gorm:"not null" json:"quantity"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"not null;size:20" json:"status"`
	Comment   string      `gorm:"type:text" json:"comment"`
	CreatedBy *uint       `gorm:"index" json:"created_by"`
	CreatedAt time.Time   `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// Cost is the line amount at the captured price
func (i *OrderItem) Cost() int64 {
	return i.Price * int64(i.Quantity)
}

// ItemsTotal sums the captured line amounts
func (o *Order) ItemsTotal() int64 {
	var total int64
	for i := range o.Items {
		total += o.Items[i].Cost()
	}
	return total
}

// FullName returns the shipping name
func (o *Order) FullName() string {
	return fmt.Sprintf("%s %s", o.FirstName, o.LastName)
}

// InvoiceNumber formats the invoice reference of the order
func (o *Order) InvoiceNumber() string {
	return fmt.Sprintf("INV-%d-%s", o.ID, o.CreatedAt.Format("20060102"))
}

// InvoiceFilename is the download name of the invoice
func (o *Order) InvoiceFilename() string {
	return fmt.Sprintf("facture_%d.pdf", o.ID)
}

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}

// OwnedBy reports whether the order belongs to userID
func (o *Order) OwnedBy(userID uint) bool {
	return o.UserID != nil && *o.UserID == userID
}

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
