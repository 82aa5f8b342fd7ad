package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRound(t *testing.T) {
	assert.Equal(t, "33.33", Round(d("33.333")).String())
	assert.Equal(t, "33.34", Round(d("33.335")).String())
	assert.Equal(t, "-33.34", Round(d("-33.335")).String(), "rounds half away from zero")
	assert.Equal(t, "100", Round(d("100")).String())
}

func TestCentsRoundTrip(t *testing.T) {
	cases := map[string]int64{
		"0":      0,
		"0.01":   1,
		"33.33":  3333,
		"100":    10000,
		"-25.50": -2550,
	}
	for in, cents := range cases {
		assert.Equal(t, cents, Cents(d(in)))
		assert.True(t, FromCents(cents).Equal(d(in)))
	}
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, WithinTolerance(d("0")))
	assert.True(t, WithinTolerance(d("0.01")))
	assert.True(t, WithinTolerance(d("-0.01")))
	assert.False(t, WithinTolerance(d("0.02")))
	assert.False(t, WithinTolerance(d("-0.011")))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "90.00", Format(d("90")))
	assert.Equal(t, "33.34", Format(d("33.34")))
	assert.Equal(t, "0.00", Format(decimal.Zero))
}
