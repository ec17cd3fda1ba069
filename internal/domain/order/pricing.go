package order

import (
	"github.com/hackerz/marketplace/internal/config"
	"github.com/hackerz/marketplace/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// Pricing holds the tax rate and the flat shipping fee
type Pricing struct {
	TaxRatePercent int64
	ShippingFee    int64
}

// NewPricing reads the checkout constants from config
func NewPricing(cfg config.CheckoutConfig) Pricing {
	return Pricing{TaxRatePercent: cfg.TaxRatePercent, ShippingFee: cfg.ShippingFee}
}

// Totals is the breakdown shown on confirmations and invoices, in cents
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Tax      int64 `json:"tax"`
	Shipping int64 `json:"shipping"`
	// Persisted is what the order records: discounted subtotal plus tax
	Persisted int64 `json:"persisted_total"`
	// Total adds the shipping fee on top of Persisted
	Total int64 `json:"total"`
}

// Compute applies the discount before tax, then tax, then shipping
func (p Pricing) Compute(subtotal, discount int64) Totals {
	if discount > subtotal {
		discount = subtotal
	}
	taxable := subtotal - discount
	tax := money.Percent(taxable, decimal.NewFromInt(p.TaxRatePercent))

	return Totals{
		Subtotal:  subtotal,
		Discount:  discount,
		Tax:       tax,
		Shipping:  p.ShippingFee,
		Persisted: taxable + tax,
		Total:     taxable + tax + p.ShippingFee,
	}
}

// TotalsOf recomputes the breakdown of a stored order
func (p Pricing) TotalsOf(o *Order) Totals {
	return p.Compute(o.Subtotal, o.Discount)
}
