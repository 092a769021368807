// Package number allocates sequential invoice numbers.
package number

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/smallbiznis/faktur/internal/config"
	"github.com/smallbiznis/faktur/internal/invoice/domain"
	"github.com/smallbiznis/faktur/internal/invoice/format"
)

// Allocator hands out invoice numbers from a named database counter.
// The increment is a single upsert so concurrent allocations can never
// observe the same value; callers pass their open transaction so an
// aborted invoice insert rolls the sequence back with it.
type Allocator struct {
	template string
}

func NewAllocator(cfg config.Config) *Allocator {
	template := cfg.InvoiceNumberTemplate
	if template == "" {
		template = format.DefaultInvoiceNumberTemplate
	}
	return &Allocator{template: template}
}

// postgres and sqlite return the incremented value from the upsert
const allocateReturningStmt = `
INSERT INTO counters (name, value) VALUES (?, 1)
ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
RETURNING value`

// mysql has no ON CONFLICT .. RETURNING; the session LAST_INSERT_ID
// carries the incremented value to a follow-up read on the same
// transaction connection
const allocateMySQLStmt = `
INSERT INTO counters (name, value) VALUES (?, LAST_INSERT_ID(1))
ON DUPLICATE KEY UPDATE value = LAST_INSERT_ID(value + 1)`

const readMySQLSeqStmt = `SELECT LAST_INSERT_ID()`

type allocStmts struct {
	upsert string
	// read fetches the value when the upsert cannot return it; empty
	// when the upsert row carries the value
	read string
}

func statementsFor(dialect string) allocStmts {
	if dialect == "mysql" {
		return allocStmts{upsert: allocateMySQLStmt, read: readMySQLSeqStmt}
	}
	return allocStmts{upsert: allocateReturningStmt}
}

// Next reserves the next sequence value and formats it. Must be called
// inside the transaction that inserts the invoice.
func (a *Allocator) Next(ctx context.Context, tx *gorm.DB, issuedAt time.Time) (string, error) {
	stmts := statementsFor(tx.Dialector.Name())

	var value int64
	if stmts.read == "" {
		if err := tx.WithContext(ctx).Raw(stmts.upsert, domain.CounterInvoice).Scan(&value).Error; err != nil {
			return "", fmt.Errorf("allocate invoice number: %w", err)
		}
	} else {
		if err := tx.WithContext(ctx).Exec(stmts.upsert, domain.CounterInvoice).Error; err != nil {
			return "", fmt.Errorf("allocate invoice number: %w", err)
		}
		if err := tx.WithContext(ctx).Raw(stmts.read).Scan(&value).Error; err != nil {
			return "", fmt.Errorf("read invoice sequence: %w", err)
		}
	}
	return format.FormatInvoiceNumber(a.template, issuedAt, value)
}
