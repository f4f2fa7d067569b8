package render

import (
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicecore/internal/money"
)

const dateLayout = "02 Jan 2006"

var (
	small = props.Text{Size: 9}
	right = props.Text{Size: 9, Align: align.Right}
	bold  = props.Text{Size: 9, Style: fontstyle.Bold}
)

// PDF renders doc as an A4 invoice.
func PDF(doc *Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, doc.Company.Name, props.Text{Size: 18, Style: fontstyle.Bold}),
		text.NewCol(4, "TAX INVOICE", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}),
	)

	m.AddRow(24,
		col.New(6).Add(
			text.New(doc.Company.Address, props.Text{Size: 9}),
			text.New(doc.Company.Email, props.Text{Size: 9, Top: 5}),
			text.New(doc.Company.Phone, props.Text{Size: 9, Top: 10}),
			text.New(labelled("GSTIN", doc.Company.TaxID), props.Text{Size: 9, Top: 15}),
		),
		col.New(6).Add(
			text.New("Invoice number: "+doc.InvoiceNumber, props.Text{Size: 9, Align: align.Right}),
			text.New("Date of issue: "+formatDate(doc.IssueDate), props.Text{Size: 9, Top: 5, Align: align.Right}),
			text.New("Date due: "+formatDate(doc.DueDate), props.Text{Size: 9, Top: 10, Align: align.Right}),
			text.New("Status: "+string(doc.Status), props.Text{Size: 9, Top: 15, Align: align.Right}),
		),
	)

	m.AddRow(28,
		col.New(12).Add(
			text.New("Bill to", bold),
			text.New(doc.Client.Name, props.Text{Size: 9, Top: 5}),
			text.New(doc.Client.Address, props.Text{Size: 9, Top: 10}),
			text.New(labelled("GSTIN", doc.Client.TaxID), props.Text{Size: 9, Top: 15}),
			text.New(doc.Client.Email, props.Text{Size: 9, Top: 20}),
		),
	)

	m.AddRow(10,
		text.NewCol(4, "Item", bold),
		text.NewCol(1, "HSN", bold),
		text.NewCol(1, "Qty", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Rate", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Tax", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)

	for _, line := range doc.Lines {
		m.AddRow(8,
			text.NewCol(4, line.Name, small),
			text.NewCol(1, line.HSN, small),
			text.NewCol(1, line.Quantity.String(), right),
			text.NewCol(2, amount(line.Rate), right),
			text.NewCol(2, line.TaxRate.String()+"%", right),
			text.NewCol(2, amount(line.Tax.Total), right),
		)
	}

	totalsRow(m, "Subtotal", doc.Subtotal, small)
	for _, tax := range doc.Taxes {
		totalsRow(m, "CGST @ "+tax.Split.CGSTRate.String()+"%", tax.Split.CGSTAmount, small)
		totalsRow(m, "SGST @ "+tax.Split.SGSTRate.String()+"%", tax.Split.SGSTAmount, small)
	}
	totalsRow(m, "Total", doc.Total, bold)
	if d := doc.Discount; d != nil {
		totalsRow(m, "Coupon "+d.Code, d.Amount.Neg(), small)
		totalsRow(m, "Amount paid", d.Final, bold)
	}

	generated, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return generated.GetBytes(), nil
}

func totalsRow(m core.Maroto, label string, value decimal.Decimal, style props.Text) {
	valueStyle := style
	valueStyle.Align = align.Right
	m.AddRow(7,
		col.New(8),
		text.NewCol(2, label, style),
		text.NewCol(2, amount(value), valueStyle),
	)
}

func amount(d decimal.Decimal) string {
	return money.Round(d).StringFixed(money.Places)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(dateLayout)
}

func labelled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}
