// Package render turns an invoice into a printable document.
package render

import (
	"time"

	"github.com/shopspring/decimal"
	clientdomain "github.com/smallbiznis/invoicecore/internal/client/domain"
	"github.com/smallbiznis/invoicecore/internal/company"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	"github.com/smallbiznis/invoicecore/internal/invoice/domain"
	"github.com/smallbiznis/invoicecore/internal/money"
)

var (
	ErrMissingSnapshot = ierr.NewError("invoice_snapshot_missing").WithHint("Issued invoices must carry a snapshot.").Mark(ierr.ErrValidation)
	ErrMissingClient   = ierr.NewError("invoice_client_missing").WithHint("Draft invoices need the live client record to print.").Mark(ierr.ErrValidation)
)

// Party is one side of the invoice header.
type Party struct {
	Name    string
	TaxID   string
	Address string
	Email   string
	Phone   string
	Contact string
}

type Line struct {
	Name        string
	Description string
	HSN         string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	TaxRate     decimal.Decimal
	Tax         money.ItemTax
}

// TaxLine is one tax breakup entry with its CGST/SGST halves.
type TaxLine struct {
	Rate   string
	Amount decimal.Decimal
	Split  money.GSTSplit
}

type Discount struct {
	Code   string
	Amount decimal.Decimal
	Final  decimal.Decimal
}

type Document struct {
	InvoiceNumber   string
	Status          domain.Status
	TemplateVersion string
	FromSnapshot    bool
	IssueDate       *time.Time
	DueDate         *time.Time
	PaidOn          *time.Time

	Company Party
	Client  Party

	Lines      []Line
	Subtotal   decimal.Decimal
	Taxes      []TaxLine
	TotalTax   decimal.Decimal
	Total      decimal.Decimal
	Discount   *Discount
	AmountDue  decimal.Decimal
	MergedFrom int
}

// BuildDocument prepares inv for printing. ISSUED and PAID invoices take
// both parties from their snapshot only; drafts use liveClient and
// liveCompany.
func BuildDocument(inv *domain.Invoice, liveClient *clientdomain.Client, liveCompany company.Profile) (*Document, error) {
	doc := &Document{
		InvoiceNumber: inv.InvoiceNumber,
		Status:        inv.Status,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		PaidOn:        inv.PaidOn,
		Subtotal:      inv.Subtotal,
		Total:         inv.Total,
		AmountDue:     inv.Total,
		MergedFrom:    len(inv.MergedFrom),
	}

	if inv.Status == domain.StatusDraft {
		if liveClient == nil {
			return nil, ErrMissingClient
		}
		doc.TemplateVersion = liveCompany.TemplateVersion
		doc.Company = Party{
			Name:    liveCompany.Name,
			TaxID:   liveCompany.TaxID,
			Address: liveCompany.Address,
			Email:   liveCompany.Email,
			Phone:   liveCompany.Phone,
		}
		doc.Client = Party{
			Name:    liveClient.CompanyName,
			TaxID:   liveClient.TaxID,
			Address: liveClient.BillingAddress,
			Email:   liveClient.ContactEmail,
			Phone:   liveClient.ContactPhone,
			Contact: liveClient.ContactPerson,
		}
	} else {
		snap := inv.Snapshot
		if snap == nil {
			return nil, ErrMissingSnapshot
		}
		doc.FromSnapshot = true
		doc.TemplateVersion = snap.TemplateVersion()
		doc.Company = Party{
			Name:    snap.Company.Name,
			TaxID:   snap.Company.TaxID,
			Address: snap.Company.Address,
			Email:   snap.Company.Email,
			Phone:   snap.Company.Phone,
		}
		doc.Client = Party{
			Name:    snap.Client.CompanyName,
			TaxID:   snap.Client.TaxID,
			Address: snap.Client.BillingAddress,
			Email:   snap.Client.ContactEmail,
			Phone:   snap.Client.ContactPhone,
			Contact: snap.Client.ContactPerson,
		}
	}

	for _, item := range inv.Items {
		doc.Lines = append(doc.Lines, Line{
			Name:        item.Name,
			Description: item.Description,
			HSN:         item.HSN,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			TaxRate:     item.TaxRate,
			Tax:         money.CalculateItemTax(item.Rate, item.Quantity, item.TaxRate),
		})
	}

	breakup := inv.Breakup()
	for _, rate := range breakup.Rates() {
		amount := breakup[rate]
		doc.Taxes = append(doc.Taxes, TaxLine{
			Rate:   rate,
			Amount: amount,
			Split:  money.SplitGST(decimal.RequireFromString(rate), amount),
		})
	}
	doc.TotalTax = breakup.Sum()

	if c := inv.Coupon; c != nil {
		doc.Discount = &Discount{Code: c.Code, Amount: c.Discount, Final: c.FinalAmount}
		doc.AmountDue = c.FinalAmount
	}
	return doc, nil
}
