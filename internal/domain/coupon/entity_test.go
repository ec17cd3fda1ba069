package coupon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validCoupon() *Coupon {
	now := time.Now()
	return &Coupon{
		Code:          "SAVE10",
		DiscountType:  DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		ValidFrom:     now.Add(-time.Hour),
		ValidTo:       now.Add(time.Hour),
		Active:        true,
	}
}

func TestIsValidPriorityOrder(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		mutate func(*Coupon)
		reason string
	}{
		{"valid", func(c *Coupon) {}, ReasonValid},
		{"inactive wins over expiry", func(c *Coupon) {
			c.Active = false
			c.ValidTo = now.Add(-time.Minute)
		}, ReasonInactive},
		{"not yet valid", func(c *Coupon) { c.ValidFrom = now.Add(time.Minute) }, ReasonNotYetValid},
		{"expired wins over exhaustion", func(c *Coupon) {
			c.ValidTo = now.Add(-time.Minute)
			c.MaxUses, c.UsedCount = 1, 1
		}, ReasonExpired},
		{"exhausted", func(c *Coupon) { c.MaxUses, c.UsedCount = 3, 3 }, ReasonExhausted},
		{"unlimited uses", func(c *Coupon) { c.MaxUses, c.UsedCount = 0, 1000 }, ReasonValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCoupon()
			tt.mutate(c)
			ok, reason := c.IsValid(now)
			assert.Equal(t, tt.reason == ReasonValid, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestApplyDiscountScenarios(t *testing.T) {
	pct := validCoupon()
	newTotal, discount := pct.ApplyDiscount(20000)
	assert.Equal(t, int64(2000), discount)
	assert.Equal(t, int64(18000), newTotal)

	fixed := validCoupon()
	fixed.DiscountType = DiscountFixed
	fixed.DiscountValue = decimal.NewFromInt(50)
	newTotal, discount = fixed.ApplyDiscount(3000)
	assert.Equal(t, int64(3000), discount, "clamped to the total")
	assert.Zero(t, newTotal)
}

func TestDiscountNeverExceedsTotal(t *testing.T) {
	values := []string{"0.01", "5", "33.33", "99.99", "100", "1000"}
	totals := []int64{0, 1, 99, 1000, 123456}

	for _, kind := range []DiscountType{DiscountPercentage, DiscountFixed} {
		for _, v := range values {
			c := validCoupon()
			c.DiscountType = kind
			c.DiscountValue = decimal.RequireFromString(v)
			for _, total := range totals {
				d := c.CalculateDiscount(total)
				assert.LessOrEqual(t, d, total, "%s %s on %d", kind, v, total)
				assert.GreaterOrEqual(t, d, int64(0))
			}
		}
	}
}

func TestCheckMinPurchase(t *testing.T) {
	c := validCoupon()
	c.MinPurchase = 5000

	assert.Error(t, c.CheckMinPurchase(4999))
	assert.NoError(t, c.CheckMinPurchase(5000))
}
