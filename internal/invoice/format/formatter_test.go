package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	issued := time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)

	t.Run("default template pads to six digits", func(t *testing.T) {
		out, err := FormatInvoiceNumber(DefaultInvoiceNumberTemplate, issued, 42)
		require.NoError(t, err)
		assert.Equal(t, "INV-000042", out)
	})

	t.Run("date tokens expand from issue time", func(t *testing.T) {
		out, err := FormatInvoiceNumber("INV-{YYYY}{MM}{DD}-{SEQ}", issued, 9)
		require.NoError(t, err)
		assert.Equal(t, "INV-20260307-9", out)
	})

	t.Run("sequence wider than pad keeps all digits", func(t *testing.T) {
		out, err := FormatInvoiceNumber("{SEQ3}", issued, 12345)
		require.NoError(t, err)
		assert.Equal(t, "12345", out)
	})

	t.Run("empty template rejected", func(t *testing.T) {
		_, err := FormatInvoiceNumber("", issued, 1)
		assert.Error(t, err)
	})

	t.Run("non-positive sequence rejected", func(t *testing.T) {
		_, err := FormatInvoiceNumber(DefaultInvoiceNumberTemplate, issued, 0)
		assert.Error(t, err)
	})

	t.Run("unresolved token rejected", func(t *testing.T) {
		_, err := FormatInvoiceNumber("INV-{NOPE}-{SEQ}", issued, 1)
		assert.Error(t, err)
	})
}

func TestAmount(t *testing.T) {
	assert.Equal(t, "R 1,234.56", Amount(123456, "ZAR"))
	assert.Equal(t, "$ 0.05", Amount(5, "USD"))
	assert.Equal(t, "€ 1,000,000.00", Amount(100000000, "EUR"))
	assert.Equal(t, "-R 12.00", Amount(-1200, "ZAR"))
	assert.Equal(t, "GBP 3.50", Amount(350, "gbp"))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "Mar 7, 2026", Date(time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)))
}
