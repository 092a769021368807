package service

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/smallbiznis/faktur/internal/notification/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// render produces the subject line and HTML body for a message.
func render(msg domain.Message) (string, string, error) {
	name := string(msg.Template) + ".html"
	if templates.Lookup(name) == nil {
		return "", "", domain.ErrUnknownTemplate
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, msg.Variables); err != nil {
		return "", "", fmt.Errorf("render %s: %w", name, err)
	}

	return subjectFor(msg), body.String(), nil
}

func subjectFor(msg domain.Message) string {
	number := msg.Variables["invoice_number"]
	from := msg.Variables["from_name"]
	switch msg.Template {
	case domain.TemplateInvoiceReminder:
		return fmt.Sprintf("Payment reminder: invoice %s from %s", number, from)
	default:
		return fmt.Sprintf("Invoice %s from %s", number, from)
	}
}
