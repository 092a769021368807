package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/faktur/pkg/db/pagination"
)

// InvoiceFilter narrows List queries.
type InvoiceFilter struct {
	Status InvoiceStatus
}

// SummaryRow is one per-currency revenue aggregate.
type SummaryRow struct {
	Currency string
	Total    int64
}

// Repository persists invoices and their items. Implementations take the
// gorm handle per call so services can pass either the pooled connection
// or an open transaction.
type Repository interface {
	InsertInvoice(ctx context.Context, db *gorm.DB, inv *Invoice) error
	UpdateInvoice(ctx context.Context, db *gorm.DB, inv *Invoice) error
	DeleteInvoice(ctx context.Context, db *gorm.DB, userID, invoiceID snowflake.ID) (int64, error)

	FindByID(ctx context.Context, db *gorm.DB, userID, invoiceID snowflake.ID) (*Invoice, error)
	FindByIDUnscoped(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter InvoiceFilter, page pagination.Pagination) ([]*Invoice, error)

	InsertItems(ctx context.Context, db *gorm.DB, items []InvoiceItem) error
	ListItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoiceItem, error)
	DeleteItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error

	UpdateStatus(ctx context.Context, db *gorm.DB, userID, invoiceID snowflake.ID, status InvoiceStatus) error
	MarkReminderSent(ctx context.Context, db *gorm.DB, userID, invoiceID snowflake.ID, at time.Time) error

	CountByStatus(ctx context.Context, db *gorm.DB, userID snowflake.ID) (map[InvoiceStatus]int64, error)
	RevenueByCurrency(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]SummaryRow, error)
}
