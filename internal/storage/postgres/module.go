package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/ntroshin/orderflow/internal/config"
	"github.com/ntroshin/orderflow/internal/domain/gateway"
	"github.com/ntroshin/orderflow/internal/domain/repository"
)

// Module wires PostgreSQL storage, repositories and read gateways.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(
		func(s *Storage) repository.OrderRepository { return s.Orders() },
		func(s *Storage) repository.TaskRepository { return s.Tasks() },
		func(s *Storage) repository.IdempotencyStore { return s.IdempotencyKeys() },
		func(s *Storage) gateway.MembershipDirectory { return s.Memberships() },
		func(s *Storage) gateway.EntityDirectory { return s.Entities() },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}
