// Package repository holds the PostgreSQL-backed persistence layer for
// verification records, system logs, and runtime settings.
package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// Open creates the pgx pool used by every repository.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "idverify"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return pool, nil
}

// Close closes the pool gracefully.
func Close(pool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("closing database connections")
	if pool != nil {
		pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the database, used at startup and by the health endpoint.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

// EnsureSchema creates the tables if they do not exist yet. Deployments with
// managed migrations can skip this.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS verifications (
	id                   UUID PRIMARY KEY,
	file_path            TEXT NOT NULL,
	file_type            TEXT NOT NULL,
	file_size            BIGINT NOT NULL,
	status               TEXT NOT NULL,
	confidence_score     INTEGER,
	detected_id_type     TEXT,
	detected_id_number   TEXT,
	detected_holder_name TEXT,
	security_features    TEXT[],
	ocr_status           TEXT NOT NULL,
	ocr_text             TEXT,
	processing_time_ms   INTEGER,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS verifications_created_at_idx ON verifications (created_at DESC);
CREATE INDEX IF NOT EXISTS verifications_ocr_pending_idx ON verifications (created_at) WHERE ocr_status = 'pending';

CREATE TABLE IF NOT EXISTS system_logs (
	id         UUID PRIMARY KEY,
	level      TEXT NOT NULL,
	message    TEXT NOT NULL,
	context    JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS system_logs_created_at_idx ON system_logs (created_at DESC);

CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		return err
	}
	logger.Info("database schema ensured")
	return nil
}
