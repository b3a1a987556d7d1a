package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/ntroshin/orderflow/internal/config"
	"github.com/ntroshin/orderflow/internal/domain/repository"
	"github.com/ntroshin/orderflow/internal/storage/postgres"
	"github.com/ntroshin/orderflow/internal/usecase"
	"github.com/ntroshin/orderflow/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newOrderFacade,
		newHTTPServer,
		newTaskProcessor,
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Orders    *usecase.OrderUseCase
	Approvals *usecase.ApprovalUseCase
	Workflow  *usecase.WorkflowUseCase
	Tasks     repository.TaskRepository
	Storage   *postgres.Storage
	Config    *config.Config
}

func newOrderFacade(p facadeParams) *OrderFacade {
	return NewOrderFacade(p.Orders, p.Approvals, p.Workflow, p.Tasks, p.Storage, p.Config.TaskRetryBase)
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *OrderFacade
	Config *config.Config
	Logger *slog.Logger
}

func newTaskProcessor(p workerParams) *worker.TaskProcessor {
	return worker.NewTaskProcessor(
		p.Facade,
		p.Config.TaskPollInterval,
		p.Config.MaxTasksBatch,
		p.Config.WorkerPoolSize,
		p.Config.TaskMaxAttempts,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.TaskProcessor
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting orderflow", slog.String("addr", p.Server.Addr))
			p.Worker.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Worker.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("orderflow stopped")
			return nil
		},
	})
}
