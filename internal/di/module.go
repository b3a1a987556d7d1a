package di

import (
	"go.uber.org/fx"

	"github.com/ntroshin/orderflow/internal/adapter/botgw"
	"github.com/ntroshin/orderflow/internal/app"
	"github.com/ntroshin/orderflow/internal/config"
	"github.com/ntroshin/orderflow/internal/invoice"
	"github.com/ntroshin/orderflow/internal/logger"
	"github.com/ntroshin/orderflow/internal/pkg/auth"
	"github.com/ntroshin/orderflow/internal/server/http/router"
	"github.com/ntroshin/orderflow/internal/storage/postgres"
	"github.com/ntroshin/orderflow/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		botgw.Module,
		invoice.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
