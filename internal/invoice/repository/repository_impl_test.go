package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smallbiznis/faktur/internal/invoice/domain"
)

func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := "file:" + name + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Invoice{}, &domain.InvoiceItem{}))
	return conn
}

func seedInvoice(t *testing.T, conn *gorm.DB, userID, invoiceID snowflake.ID) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, conn.Create(&domain.Invoice{
		ID:            invoiceID,
		UserID:        userID,
		InvoiceNumber: "INV-" + invoiceID.String(),
		Currency:      "ZAR",
		FromName:      "Acme Studio",
		FromEmail:     "billing@acme.test",
		ClientName:    "Client",
		ClientEmail:   "client@example.test",
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, 14),
		Status:        domain.InvoiceStatusCreated,
		Metadata:      map[string]interface{}{},
	}).Error)
}

func TestUpdateStatusScopedToOwner(t *testing.T) {
	conn := newTestDB(t, "repo_update_status")
	r := Provide()
	ctx := context.Background()

	owner := snowflake.ID(101)
	stranger := snowflake.ID(202)
	invoiceID := snowflake.ID(1001)
	seedInvoice(t, conn, owner, invoiceID)

	require.NoError(t, r.UpdateStatus(ctx, conn, stranger, invoiceID, domain.InvoiceStatusPaid))
	var inv domain.Invoice
	require.NoError(t, conn.First(&inv, "id = ?", invoiceID).Error)
	assert.Equal(t, domain.InvoiceStatusCreated, inv.Status)

	require.NoError(t, r.UpdateStatus(ctx, conn, owner, invoiceID, domain.InvoiceStatusPaid))
	require.NoError(t, conn.First(&inv, "id = ?", invoiceID).Error)
	assert.Equal(t, domain.InvoiceStatusPaid, inv.Status)
}

func TestMarkReminderSentScopedToOwner(t *testing.T) {
	conn := newTestDB(t, "repo_mark_reminder")
	r := Provide()
	ctx := context.Background()

	owner := snowflake.ID(101)
	stranger := snowflake.ID(202)
	invoiceID := snowflake.ID(1002)
	seedInvoice(t, conn, owner, invoiceID)

	stamp := time.Now().UTC()
	require.NoError(t, r.MarkReminderSent(ctx, conn, stranger, invoiceID, stamp))
	var inv domain.Invoice
	require.NoError(t, conn.First(&inv, "id = ?", invoiceID).Error)
	assert.Nil(t, inv.ReminderSentAt)

	require.NoError(t, r.MarkReminderSent(ctx, conn, owner, invoiceID, stamp))
	require.NoError(t, conn.First(&inv, "id = ?", invoiceID).Error)
	require.NotNil(t, inv.ReminderSentAt)
	assert.WithinDuration(t, stamp, *inv.ReminderSentAt, time.Second)
}
