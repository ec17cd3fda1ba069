// internal/domain/coupon/entity.go
package coupon

import (
	"fmt"
	"time"

	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/hackerz/marketplace/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// DiscountType represents how a coupon value is applied
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is a promotional code. DiscountValue is a percentage or a
// currency amount depending on DiscountType; MinPurchase is in cents.
type Coupon struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Code          string          `gorm:"uniqueIndex;not null;size:50" json:"code"`
	DiscountType  DiscountType    `gorm:"not null;size:10" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"discount_value"`
	MinPurchase   int64           `gorm:"not null;default:0" json:"min_purchase"`
	MaxUses       int             `gorm:"not null;default:0" json:"max_uses"` // 0 = unlimited
	UsedCount     int             `gorm:"not null;default:0" json:"used_count"`
	ValidFrom     time.Time       `gorm:"not null" json:"valid_from"`
	ValidTo       time.Time       `gorm:"not null" json:"valid_to"`
	Active        bool            `gorm:"not null" json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName overrides the table name
func (Coupon) TableName() string {
	return "coupons"
}

// Validity messages, in the order they are checked
const (
	ReasonInactive    = "this coupon is not active"
	ReasonNotYetValid = "this coupon is not valid yet"
	ReasonExpired     = "this coupon has expired"
	ReasonExhausted   = "this coupon has reached its maximum number of uses"
	ReasonValid       = "valid coupon"
)

// IsValid reports whether the coupon can be used at now. Only the first
// failing check is reported.
func (c *Coupon) IsValid(now time.Time) (bool, string) {
	switch {
	case !c.Active:
		return false, ReasonInactive
	case now.Before(c.ValidFrom):
		return false, ReasonNotYetValid
	case now.After(c.ValidTo):
		return false, ReasonExpired
	case c.MaxUses > 0 && c.UsedCount >= c.MaxUses:
		return false, ReasonExhausted
	}
	return true, ReasonValid
}

// CalculateDiscount returns the discount on total, in cents. It never
// exceeds total.
func (c *Coupon) CalculateDiscount(total int64) int64 {
	if total <= 0 {
		return 0
	}

	var discount int64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = money.Percent(total, c.DiscountValue)
	case DiscountFixed:
		discount = money.FromDecimal(c.DiscountValue)
	}

	if discount < 0 {
		return 0
	}
	if discount > total {
		return total
	}
	return discount
}

// ApplyDiscount returns the discounted total and the discount
func (c *Coupon) ApplyDiscount(total int64) (int64, int64) {
	discount := c.CalculateDiscount(total)
	return total - discount, discount
}

// CheckMinPurchase rejects a cart total below the coupon threshold, even
// when the coupon itself is valid
func (c *Coupon) CheckMinPurchase(cartTotal int64) error {
	if cartTotal < c.MinPurchase {
		return apperror.Validation("coupon_code",
			fmt.Sprintf("a minimum purchase of %s EUR is required to use this coupon", money.Format(c.MinPurchase)))
	}
	return nil
}

// DiscountInfo is a short human readable description of the discount
func (c *Coupon) DiscountInfo() string {
	if c.DiscountType == DiscountPercentage {
		return fmt.Sprintf("%s%% off", c.DiscountValue.String())
	}
	return fmt.Sprintf("%s EUR off", c.DiscountValue.StringFixed(2))
}
