// Package repository is the gorm-backed invoice store.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/faktur/internal/invoice/domain"
	"github.com/smallbiznis/faktur/pkg/db/pagination"
)

type repo struct{}

// Provide returns the invoice repository.
func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertInvoice(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Create(inv).Error
}

func (r *repo) UpdateInvoice(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Save(inv).Error
}

func (r *repo) DeleteInvoice(ctx context.Context, db *gorm.DB, userID, invoiceID snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", invoiceID, userID).
		Delete(&domain.Invoice{})
	return res.RowsAffected, res.Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, invoiceID snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).
		First(&inv, "id = ? AND user_id = ?", invoiceID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *repo) FindByIDUnscoped(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).First(&inv, "id = ?", invoiceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter domain.InvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	q := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("user_id = ?", userID)

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		q = q.Where("id < ?", cursor.ID)
	}

	var invoices []*domain.Invoice
	// one extra row to know whether another page exists
	if err := q.Order("id DESC").Limit(page.Limit() + 1).Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []domain.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *repo) DeleteItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&domain.InvoiceItem{}).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, userID, invoiceID snowflake.ID, status domain.InvoiceStatus) error {
	return db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ? AND user_id = ?", invoiceID, userID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *repo) MarkReminderSent(ctx context.Context, db *gorm.DB, userID, invoiceID snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ? AND user_id = ?", invoiceID, userID).
		Updates(map[string]interface{}{
			"reminder_sent_at": at,
			"updated_at":       at,
		}).Error
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB, userID snowflake.ID) (map[domain.InvoiceStatus]int64, error) {
	type row struct {
		Status domain.InvoiceStatus
		Count  int64
	}
	var rows []row
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.InvoiceStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (r *repo) RevenueByCurrency(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.SummaryRow, error) {
	var rows []domain.SummaryRow
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Select("currency, SUM(total) AS total").
		Where("user_id = ? AND status = ?", userID, domain.InvoiceStatusPaid).
		Group("currency").
		Scan(&rows).Error
	return rows, err
}
