// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusCreated InvoiceStatus = "CREATED"
	InvoiceStatusSent    InvoiceStatus = "SENT"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
)

// Invoice represents one billable document. Total is derived from the
// item set on every save and is never edited independently.
type Invoice struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID        snowflake.ID `gorm:"not null;index" json:"user_id"`
	InvoiceNumber string       `gorm:"type:text;not null;uniqueIndex" json:"invoice_number"`
	Name          string       `gorm:"type:text" json:"name"`
	Currency      string       `gorm:"type:text;not null" json:"currency"`

	FromName    string `gorm:"type:text;not null" json:"from_name"`
	FromEmail   string `gorm:"type:text;not null" json:"from_email"`
	FromAddress string `gorm:"type:text" json:"from_address"`

	ClientName    string `gorm:"type:text;not null" json:"client_name"`
	ClientEmail   string `gorm:"type:text;not null" json:"client_email"`
	ClientAddress string `gorm:"type:text" json:"client_address"`

	IssueDate time.Time `gorm:"not null" json:"issue_date"`
	// DueInDays is what the user picked; DueDate is derived from
	// IssueDate at save time so queries never recompute it.
	DueInDays int       `gorm:"not null;default:0" json:"due_in_days"`
	DueDate   time.Time `gorm:"not null" json:"due_date"`

	Note   string        `gorm:"type:text" json:"note"`
	Status InvoiceStatus `gorm:"type:text;not null;default:'CREATED'" json:"status"`

	// Total is in minor units of Currency.
	Total int64 `gorm:"not null;default:0" json:"total"`

	ReminderSentAt *time.Time        `json:"reminder_sent_at,omitempty"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []InvoiceItem `gorm:"-" json:"items,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem represents a line on an invoice. The item set is replaced
// wholesale whenever the invoice is edited.
type InvoiceItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	UserID      snowflake.ID `gorm:"not null;index" json:"user_id"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Quantity    int64        `gorm:"not null" json:"quantity"`
	Rate        int64        `gorm:"not null" json:"rate"`
	Amount      int64        `gorm:"not null" json:"amount"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// CounterInvoice names the invoice numbering sequence.
const CounterInvoice = "invoice"

// Counter is a named monotonic sequence. Value only ever moves through
// an atomic upsert-increment, never a read-modify-write.
type Counter struct {
	Name  string `gorm:"primaryKey"`
	Value int64  `gorm:"not null"`
}

// TableName sets the database table name.
func (Counter) TableName() string { return "counters" }
