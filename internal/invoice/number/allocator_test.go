package number

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smallbiznis/faktur/internal/config"
	"github.com/smallbiznis/faktur/internal/invoice/domain"
)

func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := "file:" + name + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Counter{}))
	return conn
}

func TestAllocatorSequence(t *testing.T) {
	conn := newTestDB(t, "alloc_sequence")
	alloc := NewAllocator(config.Config{})
	issued := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	seen := make(map[string]bool)
	for i := 1; i <= 50; i++ {
		num, err := alloc.Next(context.Background(), conn, issued)
		require.NoError(t, err)
		assert.False(t, seen[num], "number %s allocated twice", num)
		seen[num] = true
	}
	assert.True(t, seen["INV-000001"])
	assert.True(t, seen["INV-000050"])

	var counter domain.Counter
	require.NoError(t, conn.First(&counter, "name = ?", domain.CounterInvoice).Error)
	assert.EqualValues(t, 50, counter.Value)
}

func TestAllocatorRollsBackWithTransaction(t *testing.T) {
	conn := newTestDB(t, "alloc_rollback")
	alloc := NewAllocator(config.Config{InvoiceNumberTemplate: "INV-{SEQ4}"})
	issued := time.Now()

	tx := conn.Begin()
	num, err := alloc.Next(context.Background(), tx, issued)
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", num)
	require.NoError(t, tx.Rollback().Error)

	num, err = alloc.Next(context.Background(), conn, issued)
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", num)
}

func TestAllocatorConcurrentAllocationsDistinct(t *testing.T) {
	conn := newTestDB(t, "alloc_concurrent")
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// one connection so sqlite transactions serialize instead of
	// returning busy errors
	sqlDB.SetMaxOpenConns(1)

	alloc := NewAllocator(config.Config{})
	issued := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)

	const workers = 32
	numbers := make(chan string, workers)
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := conn.Transaction(func(tx *gorm.DB) error {
				num, err := alloc.Next(context.Background(), tx, issued)
				if err != nil {
					return err
				}
				numbers <- num
				return nil
			})
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := make(map[string]bool)
	for num := range numbers {
		assert.False(t, seen[num], "number %s allocated twice", num)
		seen[num] = true
	}
	require.Len(t, seen, workers)
	assert.True(t, seen["INV-000001"])
	assert.True(t, seen["INV-000032"])
}

func TestAllocatorStatementsPerDialect(t *testing.T) {
	mysql := statementsFor("mysql")
	assert.Contains(t, mysql.upsert, "ON DUPLICATE KEY UPDATE")
	assert.NotContains(t, mysql.upsert, "ON CONFLICT")
	assert.NotContains(t, mysql.upsert, "RETURNING")
	assert.Equal(t, "SELECT LAST_INSERT_ID()", mysql.read)

	for _, dialect := range []string{"postgres", "sqlite"} {
		stmts := statementsFor(dialect)
		assert.Contains(t, stmts.upsert, "ON CONFLICT (name) DO UPDATE")
		assert.Contains(t, stmts.upsert, "RETURNING value")
		assert.Empty(t, stmts.read)
	}
}

func TestAllocatorUsesReturningPathOnSqlite(t *testing.T) {
	conn := newTestDB(t, "alloc_dialect_path")
	require.True(t, strings.EqualFold(conn.Dialector.Name(), "sqlite"))

	alloc := NewAllocator(config.Config{})
	num, err := alloc.Next(context.Background(), conn, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "INV-000001", num)
}

func TestAllocatorCustomTemplate(t *testing.T) {
	conn := newTestDB(t, "alloc_template")
	alloc := NewAllocator(config.Config{InvoiceNumberTemplate: "FKT/{YYYY}/{SEQ}"})

	num, err := alloc.Next(context.Background(), conn, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "FKT/2026/1", num)
}
