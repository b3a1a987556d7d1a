package invoice

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ntroshin/orderflow/internal/domain/model"
)

func sampleOrder() *model.Order {
	order := &model.Order{
		ID:            9,
		Status:        model.OrderStatusApproved,
		CustomerType:  model.CustomerTypeCompany,
		PaymentMethod: model.PaymentMethodInvoice,
		Items: []model.OrderItem{
			{ProductID: 1, Name: "Widget", Price: decimal.RequireFromString("19.99"), Qty: 3},
			{ProductID: 2, Name: "Gadget <XL>", Price: decimal.RequireFromString("0.10"), Qty: 1},
		},
	}
	order.RecalcTotals()
	return order
}

func TestRenderWritesInvoiceFile(t *testing.T) {
	dir := t.TempDir()
	renderer, err := NewHTMLRenderer(dir)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	path, err := renderer.Render(context.Background(), sampleOrder(), "Acme LLC")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if path != filepath.Join(dir, "invoice_order_9.html") {
		t.Fatalf("unexpected path %q", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read invoice: %v", err)
	}
	html := string(content)
	if !strings.Contains(html, "Acme LLC") {
		t.Fatal("expected entity name in invoice")
	}
	if !strings.Contains(html, "60.07") {
		t.Fatal("expected total in invoice")
	}
	if !strings.Contains(html, "Gadget &lt;XL&gt;") {
		t.Fatal("expected product name to be escaped")
	}
}

func TestRenderOverwritesOnRetry(t *testing.T) {
	dir := t.TempDir()
	renderer, err := NewHTMLRenderer(dir)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	order := sampleOrder()
	first, err := renderer.Render(context.Background(), order, "Acme LLC")
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := renderer.Render(context.Background(), order, "Acme LLC")
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if first != second {
		t.Fatalf("retry must reuse the same path: %q vs %q", first, second)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single invoice file, got %d", len(entries))
	}
}

func TestRenderIndividualOrderOmitsEntity(t *testing.T) {
	dir := t.TempDir()
	renderer, err := NewHTMLRenderer(dir)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	order := sampleOrder()
	order.CustomerType = model.CustomerTypeIndividual
	path, err := renderer.Render(context.Background(), order, "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read invoice: %v", err)
	}
	if strings.Contains(string(content), "Billed to:") {
		t.Fatal("entity block must be omitted without an entity name")
	}
}
