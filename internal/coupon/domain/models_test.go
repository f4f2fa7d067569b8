package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDiscount(t *testing.T) {
	d := decimal.RequireFromString

	tests := []struct {
		name   string
		kind   DiscountType
		value  string
		amount string
		want   string
	}{
		{name: "percentage", kind: DiscountPercentage, value: "10", amount: "1500", want: "150"},
		{name: "percentage rounds to cents", kind: DiscountPercentage, value: "12.5", amount: "0.99", want: "0.12"},
		{name: "fixed", kind: DiscountFixed, value: "100", amount: "250", want: "100"},
		{name: "fixed clamps to amount", kind: DiscountFixed, value: "100", amount: "50", want: "50"},
		{name: "full percentage", kind: DiscountPercentage, value: "100", amount: "80", want: "80"},
		{name: "zero amount", kind: DiscountFixed, value: "100", amount: "0", want: "0"},
		{name: "unknown type", kind: DiscountType("BOGUS"), value: "5", amount: "10", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Discount(tt.kind, d(tt.value), d(tt.amount))
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
			assert.True(t, got.LessThanOrEqual(d(tt.amount)) || d(tt.amount).IsZero())
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCode("  save10 "))
	assert.Equal(t, "", NormalizeCode("   "))
}
