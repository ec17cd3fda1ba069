// internal/domain/inventory/entity.go
package inventory

import (
	"time"
)

// MovementType represents the direction of a stock movement
type MovementType string

const (
	MovementTypeInbound  MovementType = "inbound"
	MovementTypeOutbound MovementType = "outbound"
)

// MovementReason represents the reason for a stock movement
type MovementReason string

const (
	ReasonSale         MovementReason = "sale"
	ReasonCancellation MovementReason = "cancellation"
	ReasonAdjustment   MovementReason = "adjustment"
)

// Movement is one entry of the stock ledger of a product. Quantity is
// always positive; the type gives the direction.
type Movement struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ProductID     uint           `gorm:"not null;index" json:"product_id"`
	MovementType  MovementType   `gorm:"not null;size:20" json:"movement_type"`
	Reason        MovementReason `gorm:"not null;size:20" json:"reason"`
	Quantity      int            `gorm:"not null" json:"quantity"`
	NewQuantity   int            `gorm:"not null" json:"new_quantity"`
	ReferenceType string         `gorm:"size:50" json:"reference_type,omitempty"` // "order"
	ReferenceID   uint           `json:"reference_id,omitempty"`
	Notes         string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy     *uint          `gorm:"index" json:"created_by,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TableName overrides the table name
func (Movement) TableName() string {
	return "stock_movements"
}

// Reference ties a movement to the record that caused it
type Reference struct {
	Type      string
	ID        uint
	Notes     string
	CreatedBy *uint
}

// OrderReference builds the reference of an order line movement
func OrderReference(orderID uint, createdBy *uint) Reference {
	return Reference{Type: "order", ID: orderID, CreatedBy: createdBy}
}
