package money

import "github.com/shopspring/decimal"

var two = decimal.NewFromInt(2)

// ItemTax is the per-line figure set shown next to a line item.
type ItemTax struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// CalculateItemTax rounds each figure of a single line. Display only; invoice
// totals come from Calculate.
func CalculateItemTax(rate, quantity, taxRate decimal.Decimal) ItemTax {
	subtotal := rate.Mul(quantity)
	tax := subtotal.Mul(taxRate).Div(hundred)
	return ItemTax{
		Subtotal:  Round(subtotal),
		TaxAmount: Round(tax),
		Total:     Round(subtotal.Add(tax)),
	}
}

// GSTSplit is a tax breakup entry split into central and state halves.
type GSTSplit struct {
	CGSTRate   decimal.Decimal
	CGSTAmount decimal.Decimal
	SGSTRate   decimal.Decimal
	SGSTAmount decimal.Decimal
}

func SplitGST(taxRate, taxAmount decimal.Decimal) GSTSplit {
	halfRate := Round(taxRate.Div(two))
	halfAmount := Round(taxAmount.Div(two))
	return GSTSplit{
		CGSTRate:   halfRate,
		CGSTAmount: halfAmount,
		SGSTRate:   halfRate,
		SGSTAmount: halfAmount,
	}
}
