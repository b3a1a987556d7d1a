// Package invoice renders order invoices into self-contained HTML files.
package invoice

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/ntroshin/orderflow/internal/domain/model"
)

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Invoice #{{.Order.ID}}</title></head>
<body>
<h1>Invoice for order #{{.Order.ID}}</h1>
{{if .EntityName}}<p>Billed to: {{.EntityName}}</p>{{end}}
<table border="1" cellspacing="0" cellpadding="4">
<tr><th>Product</th><th>Price</th><th>Qty</th><th>Amount</th></tr>
{{range .Order.Items}}
<tr><td>{{.Name}}</td><td>{{.Price.StringFixed 2}}</td><td>{{.Qty}}</td><td>{{.LineValue.StringFixed 2}}</td></tr>
{{end}}
</table>
<p>Subtotal: {{.Order.Subtotal.StringFixed 2}}</p>
<p>Discount: {{.Order.DiscountAmount.StringFixed 2}}</p>
<p><strong>Total: {{.Order.Total.StringFixed 2}}</strong></p>
</body>
</html>
`

var tpl = template.Must(template.New("invoice").Parse(invoiceTemplate))

// HTMLRenderer writes invoice documents into a configured directory.
// Rendering the same order twice overwrites the previous artifact, so a
// retried invoice task never duplicates files.
type HTMLRenderer struct {
	dir string
}

// NewHTMLRenderer constructs a renderer rooted at dir.
func NewHTMLRenderer(dir string) (*HTMLRenderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create invoice dir: %w", err)
	}
	return &HTMLRenderer{dir: dir}, nil
}

type templateData struct {
	Order      *model.Order
	EntityName string
}

// Render writes the invoice for the order and returns the file path.
func (r *HTMLRenderer) Render(_ context.Context, order *model.Order, entityName string) (string, error) {
	path := filepath.Join(r.dir, fmt.Sprintf("invoice_order_%d.html", order.ID))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create invoice file: %w", err)
	}
	defer file.Close()

	if err := tpl.Execute(file, templateData{Order: order, EntityName: entityName}); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	return path, nil
}
