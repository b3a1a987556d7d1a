package invoice

import (
	"go.uber.org/fx"

	"github.com/ntroshin/orderflow/internal/config"
	"github.com/ntroshin/orderflow/internal/domain/gateway"
)

// Module exposes the invoice renderer to the fx graph.
var Module = fx.Provide(newRenderer)

func newRenderer(cfg *config.Config) (gateway.InvoiceRenderer, error) {
	return NewHTMLRenderer(cfg.InvoiceDir)
}
