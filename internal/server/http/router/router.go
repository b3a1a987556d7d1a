package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/ntroshin/orderflow/internal/domain/repository"
	pkgAuth "github.com/ntroshin/orderflow/internal/pkg/auth"
	"github.com/ntroshin/orderflow/internal/server/http/handlers"
	"github.com/ntroshin/orderflow/internal/server/http/middleware"
)

// Setup configures the gin router with handlers and middleware. User
// endpoints require a bearer token; the internal group is reserved for the
// messaging gateway and back-office tooling and is idempotency-guarded.
func Setup(
	facade handlers.EngineFacade,
	parser middleware.TokenParser,
	credential pkgAuth.CredentialVerifier,
	idemStore repository.IdempotencyStore,
	idemTTL time.Duration,
	logger *slog.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(facade)
	approvalHandler := handlers.NewApprovalHandler(facade)
	adminHandler := handlers.NewAdminHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	api := engine.Group("/api")
	api.GET("/health", healthHandler.Check)

	orders := api.Group("/orders")
	orders.Use(middleware.AuthRequired(parser))
	orders.POST("", middleware.Idempotent(idemStore, idemTTL, logger), orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)

	// Decision callbacks from the messaging gateway.
	decisions := engine.Group("/orders")
	decisions.Use(middleware.InternalOnly(credential))
	decisions.Use(middleware.Idempotent(idemStore, idemTTL, logger))
	decisions.POST("/:id/approve", approvalHandler.Approve)
	decisions.POST("/:id/reject", approvalHandler.Reject)

	internal := engine.Group("/internal")
	internal.Use(middleware.InternalOnly(credential))
	internal.Use(middleware.Idempotent(idemStore, idemTTL, logger))
	internal.POST("/orders/:id/pay", adminHandler.Pay)
	internal.POST("/orders/:id/ship", adminHandler.Ship)
	internal.POST("/orders/:id/complete", adminHandler.Complete)
	internal.POST("/orders/:id/cancel", adminHandler.Cancel)

	return engine
}
