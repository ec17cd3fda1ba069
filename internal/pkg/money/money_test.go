package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPercentRoundsHalfUp(t *testing.T) {
	assert.Equal(t, int64(2000), Percent(20000, decimal.NewFromInt(10)))
	assert.Equal(t, int64(200), Percent(999, decimal.NewFromInt(20)), "199.8 rounds to 200")
	assert.Equal(t, int64(1), Percent(5, decimal.NewFromInt(10)), "0.5 rounds up")
}

func TestFormatAndConvert(t *testing.T) {
	assert.Equal(t, "19.99", Format(1999))
	assert.Equal(t, "0.05", Format(5))
	assert.Equal(t, int64(5000), FromDecimal(decimal.RequireFromString("50")))
	assert.Equal(t, int64(1235), FromDecimal(decimal.RequireFromString("12.345")))
}
