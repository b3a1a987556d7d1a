package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ntroshin/orderflow/internal/domain/gateway"
	"github.com/ntroshin/orderflow/internal/domain/repository"
)

// pool is the subset of pgxpool.Pool the storage relies on; pgxmock
// implements it for tests.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// querier is the read surface shared by the pool and pgx.Tx. Reference
// gateways are built over it, so the same implementations serve both
// standalone lookups and checks inside an order-creating transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Storage acts as repository facade backed by PostgreSQL. Besides the
// order/task/idempotency tables it owns read-only projections of catalog
// and commerce reference data, so reference checks can run inside the same
// transaction that creates an order.
type Storage struct {
	pool   pool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type taskRepository struct {
	storage *Storage
}

type idempotencyStore struct {
	storage *Storage
}

type catalogRepository struct {
	q querier
}

type membershipRepository struct {
	q querier
}

type entityRepository struct {
	q querier
}

type addressRepository struct {
	q querier
}

// newPgxPool is swapped in tests to back the storage with a mock pool.
var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	dbPool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: dbPool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		dbPool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories and gateways.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Tasks() repository.TaskRepository {
	return &taskRepository{storage: s}
}

func (s *Storage) IdempotencyKeys() repository.IdempotencyStore {
	return &idempotencyStore{storage: s}
}

func (s *Storage) Memberships() gateway.MembershipDirectory {
	return &membershipRepository{q: s.pool}
}

func (s *Storage) Entities() gateway.EntityDirectory {
	return &entityRepository{q: s.pool}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            status TEXT NOT NULL DEFAULT 'new',
            customer_type TEXT NOT NULL DEFAULT 'company',
            payment_method TEXT NOT NULL DEFAULT 'cash',
            legal_entity_id BIGINT,
            delivery_address_id BIGINT,
            placed_by BIGINT NOT NULL,
            customer_name TEXT,
            customer_phone TEXT,
            address_text TEXT,
            subtotal NUMERIC(12,2) NOT NULL DEFAULT 0,
            discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
            total NUMERIC(12,2) NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            product_id BIGINT NOT NULL,
            name TEXT NOT NULL,
            price NUMERIC(12,2) NOT NULL,
            qty INT NOT NULL CHECK (qty >= 1)
        )`,
		`CREATE TABLE IF NOT EXISTS tasks (
            id BIGSERIAL PRIMARY KEY,
            event_id TEXT UNIQUE NOT NULL,
            kind TEXT NOT NULL,
            order_id BIGINT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            attempts INT NOT NULL DEFAULT 0,
            next_attempt_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            last_error TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            done_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS idempotency_keys (
            caller TEXT NOT NULL,
            route TEXT NOT NULL,
            key TEXT NOT NULL,
            response_status INT,
            response_body BYTEA,
            expires_at TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (caller, route, key)
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id BIGINT PRIMARY KEY,
            name TEXT NOT NULL,
            price NUMERIC(12,2) NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS legal_entities (
            id BIGINT PRIMARY KEY,
            name TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS legal_entity_memberships (
            user_id BIGINT NOT NULL,
            legal_entity_id BIGINT NOT NULL REFERENCES legal_entities(id),
            role TEXT NOT NULL DEFAULT 'manager',
            PRIMARY KEY (user_id, legal_entity_id)
        )`,
		`CREATE TABLE IF NOT EXISTS delivery_addresses (
            id BIGINT PRIMARY KEY,
            legal_entity_id BIGINT NOT NULL REFERENCES legal_entities(id),
            label TEXT NOT NULL,
            city TEXT NOT NULL DEFAULT '',
            street TEXT NOT NULL DEFAULT '',
            postcode TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS user_profiles (
            user_id BIGINT PRIMARY KEY,
            messaging_id BIGINT
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_placed_by ON orders(placed_by, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_entity ON orders(legal_entity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(status, next_attempt_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
