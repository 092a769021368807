package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(headerHeight,
		text.NewCol(8, "INVOICE", props.Text{
			Size:  22,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, data.InvoiceNumber, props.Text{
			Size:  12,
			Align: align.Right,
			Top:   3,
		}),
	)

	m.AddRow(2*metaLineHeight,
		col.New(8).Add(
			text.New(data.InvoiceName, props.Text{Size: 10}),
		),
		col.New(4).Add(
			text.New("Issued: "+data.IssueDate, props.Text{Size: 9, Align: align.Right}),
			text.New("Due: "+data.DueDate, props.Text{Size: 9, Align: align.Right, Top: metaLineHeight}),
		),
	)
	m.AddRow(sectionGapHeight, col.New(12))

	m.AddRow(p.partiesHeight(data),
		p.partyCol("From", data.FromName, data.FromEmail, data.FromAddress),
		p.partyCol("Bill to", data.ClientName, data.ClientEmail, data.ClientAddress),
	)
	m.AddRow(sectionGapHeight, col.New(12))

	m.AddRow(tableHeadHeight,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Rate", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(1, line.NewCol(12))

	for _, item := range data.Items {
		m.AddRow(itemRowHeight,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, item.Quantity, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Rate, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(1, line.NewCol(12))
	m.AddRow(totalRowHeight,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, data.Total, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)
	m.AddRow(sectionGapHeight, col.New(12))

	m.AddRow(bankingHeight,
		col.New(12).Add(
			text.New("Payment details", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.New("Bank: "+data.BankName, props.Text{Size: 9, Top: 5}),
			text.New("Account name: "+data.BankAccountName, props.Text{Size: 9, Top: 10}),
			text.New("Account number: "+data.AccountNumber, props.Text{Size: 9, Top: 15}),
			text.New("Branch code: "+data.BranchCode, props.Text{Size: 9, Top: 20}),
		),
	)

	if data.Note != "" {
		m.AddRow(2*noteLineHeight,
			col.New(12).Add(
				text.New("Note", props.Text{Style: fontstyle.Bold, Size: 9}),
				text.New(data.Note, props.Text{Size: 9, Top: noteLineHeight}),
			),
		)
	}

	m.AddRow(footerHeight,
		text.NewCol(12, "Thank you for your business.", props.Text{
			Size:  9,
			Align: align.Center,
			Top:   3,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

func (p *PDFProvider) partiesHeight(data InvoiceData) float64 {
	lines := maxInt(2+len(data.FromAddress), 2+len(data.ClientAddress))
	return float64(maxInt(lines, partyMinLines)) * partyLineHeight
}

func (p *PDFProvider) partyCol(label, name, email string, address []string) core.Col {
	c := col.New(6).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 9}),
		text.New(name, props.Text{Size: 9, Top: partyLineHeight}),
		text.New(email, props.Text{Size: 9, Top: 2 * partyLineHeight}),
	)
	for i, segment := range address {
		c.Add(text.New(segment, props.Text{Size: 9, Top: float64(3+i) * partyLineHeight}))
	}
	return c
}
