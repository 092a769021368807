package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	accountdomain "github.com/smallbiznis/faktur/internal/account/domain"
	invoicedomain "github.com/smallbiznis/faktur/internal/invoice/domain"
	"github.com/smallbiznis/faktur/internal/invoice/format"
	"github.com/smallbiznis/faktur/internal/providers/pdf"
)

// DownloadInvoicePDF renders an invoice document. The route is public
// so a malformed or unknown id both read as 404.
func (s *Server) DownloadInvoicePDF(c *gin.Context) {
	inv, err := s.invoiceSvc.GetForRender(c.Request.Context(), c.Param("invoiceId"))
	if err != nil {
		if errors.Is(err, invoicedomain.ErrInvalidInvoiceID) {
			err = ErrNotFound
		}
		AbortWithError(c, err)
		return
	}

	owner, err := s.accountSvc.GetByID(c.Request.Context(), inv.UserID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.pdfSvc.GenerateInvoice(c.Request.Context(), buildInvoiceData(inv, owner))
	if err != nil {
		s.obsMetrics.RecordPDFRender(c.Request.Context(), "error")
		AbortWithError(c, ErrInternal)
		return
	}

	doc, err := io.ReadAll(reader)
	if err != nil {
		s.obsMetrics.RecordPDFRender(c.Request.Context(), "error")
		AbortWithError(c, ErrInternal)
		return
	}

	s.obsMetrics.RecordPDFRender(c.Request.Context(), "success")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", inv.InvoiceNumber+".pdf"))
	c.Data(http.StatusOK, "application/pdf", doc)
}

func buildInvoiceData(inv *invoicedomain.Invoice, owner accountdomain.User) pdf.InvoiceData {
	data := pdf.InvoiceData{
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceName:   inv.Name,
		IssueDate:     format.Date(inv.IssueDate),
		DueDate:       format.Date(inv.DueDate),

		FromName:    inv.FromName,
		FromEmail:   inv.FromEmail,
		FromAddress: pdf.SplitAddress(inv.FromAddress),

		ClientName:    inv.ClientName,
		ClientEmail:   inv.ClientEmail,
		ClientAddress: pdf.SplitAddress(inv.ClientAddress),

		Total: format.Amount(inv.Total, inv.Currency),

		BankName:        owner.BankName,
		BankAccountName: owner.BankAccountName,
		AccountNumber:   owner.AccountNumber,
		BranchCode:      owner.BranchCode,

		Note: inv.Note,
	}
	for _, item := range inv.Items {
		data.Items = append(data.Items, pdf.InvoiceLine{
			Description: item.Description,
			Quantity:    strconv.FormatInt(item.Quantity, 10),
			Rate:        format.Amount(item.Rate, inv.Currency),
			Amount:      format.Amount(item.Amount, inv.Currency),
		})
	}
	return data
}
