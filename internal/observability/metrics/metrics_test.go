package metrics

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("currency", "ZAR"),
		attribute.String("client_email", "jan@example.com"),
		attribute.String("template", "invoice_new"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if attr.Key == "client_email" {
			t.Fatalf("expected client_email to be dropped")
		}
	}
}

func TestFilterAttributesEmpty(t *testing.T) {
	if attrs := FilterAttributes(); len(attrs) != 0 {
		t.Fatalf("expected no attributes, got %d", len(attrs))
	}
}
