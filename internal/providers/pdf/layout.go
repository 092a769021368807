package pdf

import "strings"

// Row heights in maroto page units. Every section is laid out top to
// bottom from these, so cursor positions are monotonic by construction.
const (
	headerHeight     = 14
	metaLineHeight   = 5
	partyLineHeight  = 5
	partyMinLines    = 3
	tableHeadHeight  = 8
	itemRowHeight    = 7
	totalRowHeight   = 9
	bankingHeight    = 26
	noteLineHeight   = 5
	footerHeight     = 10
	sectionGapHeight = 4
)

// Section is one vertical slice of the document.
type Section struct {
	Name   string
	Height float64
}

// BuildLayout computes the section stack for an invoice. Heights grow
// with content (items, address lines, note) and never shrink below the
// fixed minimums.
func BuildLayout(data InvoiceData) []Section {
	fromLines := 2 + len(data.FromAddress)
	clientLines := 2 + len(data.ClientAddress)
	partyLines := maxInt(maxInt(fromLines, clientLines), partyMinLines)

	sections := []Section{
		{Name: "header", Height: headerHeight},
		{Name: "meta", Height: 2 * metaLineHeight},
		{Name: "gap", Height: sectionGapHeight},
		{Name: "parties", Height: float64(partyLines) * partyLineHeight},
		{Name: "gap", Height: sectionGapHeight},
		{Name: "table_head", Height: tableHeadHeight},
	}
	for range data.Items {
		sections = append(sections, Section{Name: "item", Height: itemRowHeight})
	}
	sections = append(sections,
		Section{Name: "total", Height: totalRowHeight},
		Section{Name: "gap", Height: sectionGapHeight},
		Section{Name: "banking", Height: bankingHeight},
	)
	if data.Note != "" {
		noteLines := 1 + strings.Count(data.Note, "\n")
		sections = append(sections, Section{Name: "note", Height: float64(1+noteLines) * noteLineHeight})
	}
	sections = append(sections, Section{Name: "footer", Height: footerHeight})
	return sections
}

// CumulativeOffsets returns the top edge of each section.
func CumulativeOffsets(sections []Section) []float64 {
	offsets := make([]float64, len(sections))
	var y float64
	for i, s := range sections {
		offsets[i] = y
		y += s.Height
	}
	return offsets
}

// SplitAddress breaks a free-text address into display segments on
// commas, dropping empty pieces.
func SplitAddress(addr string) []string {
	parts := strings.Split(addr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
