package botgw

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/ntroshin/orderflow/internal/config"
	"github.com/ntroshin/orderflow/internal/domain/gateway"
)

// Module exposes the messaging gateway client to the fx graph.
var Module = fx.Provide(newMessenger)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newMessenger(p clientParams) (gateway.Messenger, error) {
	return NewHTTPClient(p.Config.BotGatewayAddress, p.Logger)
}
