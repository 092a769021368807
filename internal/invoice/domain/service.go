package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/faktur/pkg/db/pagination"
)

var (
	ErrInvoiceNotFound     = errors.New("invoice_not_found")
	ErrInvalidInvoiceID    = errors.New("invalid_invoice_id")
	ErrInvoiceClosed       = errors.New("invoice_closed")
	ErrNoAuthenticatedUser = errors.New("no_authenticated_user")
)

// SupportedCurrencies lists the currencies invoices can be issued in.
var SupportedCurrencies = map[string]bool{
	"ZAR": true,
	"USD": true,
	"EUR": true,
}

// FieldError reports a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError accumulates every invalid field so callers can surface
// them all at once instead of one per round trip.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns nil when no fields were flagged.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// InvoiceItemInput is one requested line item. Quantity and Rate are in
// whole units and minor currency units respectively.
type InvoiceItemInput struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	Rate        int64  `json:"rate"`
}

// InvoiceInput carries the editable fields shared by create and update.
type InvoiceInput struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`

	FromName    string `json:"from_name"`
	FromEmail   string `json:"from_email"`
	FromAddress string `json:"from_address"`

	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email"`
	ClientAddress string `json:"client_address"`

	IssueDate time.Time `json:"issue_date"`
	DueInDays int       `json:"due_in_days"`
	Note      string    `json:"note"`

	Items []InvoiceItemInput `json:"items"`
}

// Validate checks every field and returns a ValidationError listing all
// problems, or nil.
func (in *InvoiceInput) Validate() error {
	verr := &ValidationError{}
	if strings.TrimSpace(in.Currency) == "" {
		verr.Add("currency", "currency is required")
	} else if !SupportedCurrencies[strings.ToUpper(strings.TrimSpace(in.Currency))] {
		verr.Add("currency", "unsupported currency")
	}
	requireField(verr, "from_name", in.FromName)
	requireEmail(verr, "from_email", in.FromEmail)
	requireField(verr, "from_address", in.FromAddress)
	requireField(verr, "client_name", in.ClientName)
	requireEmail(verr, "client_email", in.ClientEmail)
	requireField(verr, "client_address", in.ClientAddress)
	if in.DueInDays < 0 {
		verr.Add("due_in_days", "must not be negative")
	}
	if len(in.Items) == 0 {
		verr.Add("items", "at least one item is required")
	}
	for i, item := range in.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		if strings.TrimSpace(item.Description) == "" {
			verr.Add(prefix+"description", "description is required")
		}
		if item.Quantity <= 0 {
			verr.Add(prefix+"quantity", "must be greater than zero")
		}
		if item.Rate < 0 {
			verr.Add(prefix+"rate", "must not be negative")
		}
	}
	return verr.Err()
}

func requireField(verr *ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		verr.Add(field, field+" is required")
	}
}

func requireEmail(verr *ValidationError, field, value string) {
	v := strings.TrimSpace(value)
	if v == "" {
		verr.Add(field, field+" is required")
		return
	}
	at := strings.Index(v, "@")
	if at <= 0 || at == len(v)-1 || !strings.Contains(v[at:], ".") {
		verr.Add(field, "must be a valid email address")
	}
}

// CreateInvoiceRequest creates a new invoice in CREATED state.
type CreateInvoiceRequest struct {
	InvoiceInput
}

// UpdateInvoiceRequest replaces every editable field, items included.
type UpdateInvoiceRequest struct {
	InvoiceInput
}

// ListInvoiceRequest filters the owner's invoices.
type ListInvoiceRequest struct {
	pagination.Pagination
	Status InvoiceStatus `form:"status"`
}

// ListInvoiceResponse is one page of invoices plus a continuation token.
type ListInvoiceResponse struct {
	Invoices      []*Invoice `json:"invoices"`
	NextPageToken string     `json:"next_page_token,omitempty"`
	HasMore       bool       `json:"has_more"`
}

// Summary aggregates the owner's dashboard figures. Revenue counts only
// PAID invoices and is in minor units per currency.
type Summary struct {
	TotalInvoices int64            `json:"total_invoices"`
	PaidInvoices  int64            `json:"paid_invoices"`
	OpenInvoices  int64            `json:"open_invoices"`
	Revenue       map[string]int64 `json:"revenue"`
	Recent        []*Invoice       `json:"recent"`
}

// Service is the invoice lifecycle API. Every operation except
// GetForRender is scoped to the authenticated user on ctx.
type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	Update(ctx context.Context, invoiceID string, req UpdateInvoiceRequest) (*Invoice, error)
	Delete(ctx context.Context, invoiceID string) error
	MarkPaid(ctx context.Context, invoiceID string) (*Invoice, error)
	Send(ctx context.Context, invoiceID string) (*Invoice, error)
	SendReminder(ctx context.Context, invoiceID string) error
	List(ctx context.Context, req ListInvoiceRequest) (*ListInvoiceResponse, error)
	GetByID(ctx context.Context, invoiceID string) (*Invoice, error)
	Summarize(ctx context.Context) (*Summary, error)

	// GetForRender looks an invoice up by id alone. The PDF endpoint is
	// shareable with clients, so it carries no owner scope.
	GetForRender(ctx context.Context, invoiceID string) (*Invoice, error)
}
