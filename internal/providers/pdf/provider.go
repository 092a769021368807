// Package pdf renders invoice documents.
package pdf

import (
	"context"
	"io"
)

// InvoiceLine is one pre-formatted table row.
type InvoiceLine struct {
	Description string
	Quantity    string
	Rate        string
	Amount      string
}

// InvoiceData is everything the document needs, already formatted.
// Addresses arrive as segments so the renderer never re-parses text.
type InvoiceData struct {
	InvoiceNumber string
	InvoiceName   string
	IssueDate     string
	DueDate       string

	FromName    string
	FromEmail   string
	FromAddress []string

	ClientName    string
	ClientEmail   string
	ClientAddress []string

	Items []InvoiceLine
	Total string

	BankName        string
	BankAccountName string
	AccountNumber   string
	BranchCode      string

	Note string
}

// Provider turns invoice data into a finished PDF.
type Provider interface {
	GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error)
}
