package pdf

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData(items int) InvoiceData {
	data := InvoiceData{
		InvoiceNumber: "INV-000001",
		InvoiceName:   "Website redesign",
		IssueDate:     "Feb 1, 2026",
		DueDate:       "Feb 16, 2026",
		FromName:      "Acme Studio",
		FromEmail:     "billing@acme.test",
		FromAddress:   []string{"12 Long Street", "Cape Town", "8001"},
		ClientName:    "Jan Smit",
		ClientEmail:   "jan@client.test",
		ClientAddress: []string{"4 Main Road", "Durban"},
		Total:         "R 20,000.00",
		BankName:      "First National",
		Note:          "Payable within 15 days.",
	}
	for i := 0; i < items; i++ {
		data.Items = append(data.Items, InvoiceLine{
			Description: fmt.Sprintf("Line %d", i+1),
			Quantity:    "1",
			Rate:        "R 100.00",
			Amount:      "R 100.00",
		})
	}
	return data
}

func TestLayoutOffsetsMonotonic(t *testing.T) {
	for _, items := range []int{1, 3, 12, 40} {
		sections := BuildLayout(sampleData(items))
		offsets := CumulativeOffsets(sections)
		require.Len(t, offsets, len(sections))
		for i := 1; i < len(offsets); i++ {
			assert.Greater(t, offsets[i], offsets[i-1],
				"section %q must start below %q", sections[i].Name, sections[i-1].Name)
		}
	}
}

func TestLayoutGrowsWithItems(t *testing.T) {
	small := CumulativeOffsets(BuildLayout(sampleData(1)))
	large := CumulativeOffsets(BuildLayout(sampleData(10)))
	assert.Greater(t, large[len(large)-1], small[len(small)-1])
}

func TestLayoutItemSectionPerLine(t *testing.T) {
	sections := BuildLayout(sampleData(5))
	var items int
	for _, s := range sections {
		if s.Name == "item" {
			items++
		}
	}
	assert.Equal(t, 5, items)
}

func TestLayoutSkipsEmptyNote(t *testing.T) {
	data := sampleData(1)
	data.Note = ""
	for _, s := range BuildLayout(data) {
		assert.NotEqual(t, "note", s.Name)
	}
}

func TestSplitAddress(t *testing.T) {
	assert.Equal(t,
		[]string{"12 Long Street", "Cape Town", "8001"},
		SplitAddress("12 Long Street, Cape Town, 8001"))
	assert.Equal(t, []string{"One line"}, SplitAddress("One line"))
	assert.Empty(t, SplitAddress(" , , "))
}

func TestGenerateInvoiceProducesPDF(t *testing.T) {
	provider := New()
	reader, err := provider.GenerateInvoice(t.Context(), sampleData(3))
	require.NoError(t, err)

	buf := make([]byte, 5)
	n, err := reader.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(buf[:n]))
}
