package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress        string
	DatabaseURI       string
	BotGatewayAddress string
	AuthTokenSecret   string
	ApprovalSecret    string
	InternalTokenHash string
	InvoiceDir        string
	TaskPollInterval  time.Duration
	TaskRetryBase     time.Duration
	TaskMaxAttempts   int
	WorkerPoolSize    int
	MaxTasksBatch     int
	IdempotencyTTL    time.Duration
	ShutdownTimeout   time.Duration
}

const (
	defaultRunAddress       = ":8080"
	defaultAuthTokenSecret  = "change-me-in-production"
	defaultApprovalSecret   = "dev"
	defaultInvoiceDir       = "./invoices"
	defaultTaskPollInterval = 3 * time.Second
	defaultTaskRetryBase    = 30 * time.Second
	defaultTaskMaxAttempts  = 5
	defaultWorkerPoolSize   = 4
	defaultMaxTasksBatch    = 32
	defaultIdempotencyTTL   = 24 * time.Hour
	defaultShutdownTimeout  = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		BotGatewayAddress: getString(lookup, "BOT_GATEWAY_ADDRESS", ""),
		AuthTokenSecret:   getString(lookup, "AUTH_TOKEN_SECRET", defaultAuthTokenSecret),
		ApprovalSecret:    getString(lookup, "ORDER_APPROVE_SECRET", defaultApprovalSecret),
		InternalTokenHash: getString(lookup, "INTERNAL_TOKEN_HASH", ""),
		InvoiceDir:        getString(lookup, "INVOICE_DIR", defaultInvoiceDir),
		TaskPollInterval:  getDuration(lookup, "TASK_POLL_INTERVAL", defaultTaskPollInterval),
		TaskRetryBase:     getDuration(lookup, "TASK_RETRY_BASE", defaultTaskRetryBase),
		TaskMaxAttempts:   getInt(lookup, "TASK_MAX_ATTEMPTS", defaultTaskMaxAttempts),
		WorkerPoolSize:    getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		MaxTasksBatch:     getInt(lookup, "TASK_BATCH_SIZE", defaultMaxTasksBatch),
		IdempotencyTTL:    getDuration(lookup, "IDEMPOTENCY_TTL", defaultIdempotencyTTL),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("orderflow", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.TaskPollInterval.String()
		retryBaseStr       = cfg.TaskRetryBase.String()
		idempotencyTTLStr  = cfg.IdempotencyTTL.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.BotGatewayAddress, "b", cfg.BotGatewayAddress, "Bot gateway base URL")
	fs.StringVar(&cfg.AuthTokenSecret, "auth-secret", cfg.AuthTokenSecret, "Secret for verifying bearer tokens")
	fs.StringVar(&cfg.ApprovalSecret, "approve-secret", cfg.ApprovalSecret, "Secret for signing approval action tokens")
	fs.StringVar(&cfg.InternalTokenHash, "internal-token-hash", cfg.InternalTokenHash, "Bcrypt hash of the internal service token")
	fs.StringVar(&cfg.InvoiceDir, "invoice-dir", cfg.InvoiceDir, "Directory for rendered invoice files")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent task workers")
	fs.IntVar(&cfg.MaxTasksBatch, "task-batch", cfg.MaxTasksBatch, "Maximum tasks per polling batch")
	fs.IntVar(&cfg.TaskMaxAttempts, "task-attempts", cfg.TaskMaxAttempts, "Attempt bound before a task fails terminally")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between task polls")
	fs.StringVar(&retryBaseStr, "retry-base", retryBaseStr, "Base delay between task retries")
	fs.StringVar(&idempotencyTTLStr, "idempotency-ttl", idempotencyTTLStr, "Idempotency key time-to-live")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TaskPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.TaskRetryBase, err = time.ParseDuration(retryBaseStr); err != nil {
		return nil, fmt.Errorf("invalid retry base: %w", err)
	}

	if cfg.IdempotencyTTL, err = time.ParseDuration(idempotencyTTLStr); err != nil {
		return nil, fmt.Errorf("invalid idempotency ttl: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("AUTH_TOKEN_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read auth token secret file: %w", err)
		}
		cfg.AuthTokenSecret = string(content)
	}

	if secretFile, ok := lookup("ORDER_APPROVE_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read approval secret file: %w", err)
		}
		cfg.ApprovalSecret = string(content)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.MaxTasksBatch <= 0 {
		cfg.MaxTasksBatch = defaultMaxTasksBatch
	}

	if cfg.TaskMaxAttempts <= 0 {
		cfg.TaskMaxAttempts = defaultTaskMaxAttempts
	}

	if cfg.TaskPollInterval <= 0 {
		cfg.TaskPollInterval = defaultTaskPollInterval
	}

	if cfg.TaskRetryBase <= 0 {
		cfg.TaskRetryBase = defaultTaskRetryBase
	}

	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = defaultIdempotencyTTL
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.BotGatewayAddress == "" {
		return nil, fmt.Errorf("bot gateway address must be provided")
	}

	if cfg.InternalTokenHash == "" {
		return nil, fmt.Errorf("internal token hash must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
