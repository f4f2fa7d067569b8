// Package money computes invoice subtotals, tax breakups and totals.
package money

import (
	"sort"

	"github.com/shopspring/decimal"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
)

// Places is the number of decimal places monetary outputs are rounded to.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Line is the calculator's view of an invoice line.
type Line struct {
	Rate     decimal.Decimal
	Quantity decimal.Decimal
	TaxRate  decimal.Decimal
}

// TaxBreakup maps a tax rate (as its canonical decimal string, e.g. "18" or "12.5")
// to the tax charged at that rate.
type TaxBreakup map[string]decimal.Decimal

// Rates returns the breakup keys in ascending numeric order.
func (b TaxBreakup) Rates() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return decimal.RequireFromString(keys[i]).LessThan(decimal.RequireFromString(keys[j]))
	})
	return keys
}

// Sum returns the sum of all breakup entries.
func (b TaxBreakup) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range b {
		total = total.Add(v)
	}
	return total
}

type Totals struct {
	Subtotal   decimal.Decimal
	TaxBreakup TaxBreakup
	TotalTax   decimal.Decimal
	Total      decimal.Decimal
}

// RateKey returns the breakup key for a tax rate.
func RateKey(rate decimal.Decimal) string {
	return rate.String()
}

// Round applies the monetary rounding rule (half to even, two places).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Places)
}

// Calculate sums lines into a subtotal, a tax breakup keyed by distinct positive
// tax rate, and a total. Each rate's tax is rounded once, after summation, and the
// total is built from the rounded parts so subtotal plus breakup equals total.
func Calculate(lines []Line) (Totals, error) {
	subtotal := decimal.Zero
	taxes := map[string]decimal.Decimal{}

	for i, line := range lines {
		if err := validateLine(i, line); err != nil {
			return Totals{}, err
		}

		amount := line.Rate.Mul(line.Quantity)
		subtotal = subtotal.Add(amount)

		if !line.TaxRate.IsPositive() {
			continue
		}
		key := RateKey(line.TaxRate)
		taxes[key] = taxes[key].Add(amount.Mul(line.TaxRate).Div(hundred))
	}

	breakup := make(TaxBreakup, len(taxes))
	for key, amount := range taxes {
		breakup[key] = Round(amount)
	}
	totalTax := breakup.Sum()
	subtotal = Round(subtotal)

	return Totals{
		Subtotal:   subtotal,
		TaxBreakup: breakup,
		TotalTax:   totalTax,
		Total:      subtotal.Add(totalTax),
	}, nil
}

func validateLine(index int, line Line) error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"rate", line.Rate},
		{"quantity", line.Quantity},
		{"tax_rate", line.TaxRate},
	}
	for _, f := range fields {
		name, value := f.name, f.value
		if value.IsNegative() {
			return ierr.NewErrorf("line %d: negative %s", index, name).
				WithHintf("Line %d has a negative %s.", index+1, name).
				WithReportableDetails(map[string]any{
					"line":  index,
					"field": name,
					"value": value.String(),
				}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}
