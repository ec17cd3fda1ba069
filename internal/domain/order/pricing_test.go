package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeKeepsShippingOutOfPersistedTotal(t *testing.T) {
	p := Pricing{TaxRatePercent: 20, ShippingFee: 599}

	totals := p.Compute(20000, 2000)
	assert.Equal(t, int64(3600), totals.Tax)
	assert.Equal(t, int64(21600), totals.Persisted)
	assert.Equal(t, int64(22199), totals.Total)
}

func TestComputeClampsDiscount(t *testing.T) {
	p := Pricing{TaxRatePercent: 20, ShippingFee: 599}

	totals := p.Compute(3000, 5000)
	assert.Equal(t, int64(3000), totals.Discount)
	assert.Zero(t, totals.Persisted)
	assert.Equal(t, int64(599), totals.Total)
}

func TestInvoiceNaming(t *testing.T) {
	o := Order{ID: 42, CreatedAt: time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)}
	assert.Equal(t, "INV-42-20240309", o.InvoiceNumber())
	assert.Equal(t, "facture_42.pdf", o.InvoiceFilename())
}
