package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/ntroshin/orderflow/internal/app"
	"github.com/ntroshin/orderflow/internal/config"
	"github.com/ntroshin/orderflow/internal/domain/repository"
	pkgAuth "github.com/ntroshin/orderflow/internal/pkg/auth"
)

// Module registers HTTP router construction for the fx runtime.
var Module = fx.Provide(newRouter)

type params struct {
	fx.In

	Facade     *app.OrderFacade
	Strategy   pkgAuth.Strategy
	Credential pkgAuth.CredentialVerifier
	IdemStore  repository.IdempotencyStore
	Config     *config.Config
	Logger     *slog.Logger
}

func newRouter(p params) *gin.Engine {
	return Setup(p.Facade, p.Strategy, p.Credential, p.IdemStore, p.Config.IdempotencyTTL, p.Logger)
}
