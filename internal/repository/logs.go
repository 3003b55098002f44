package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pasecure/idverify/internal/record"
)

type LogRepository interface {
	Append(ctx context.Context, entry *record.SystemLogEntry) error
	// Recent returns the newest entries first, capped at limit.
	Recent(ctx context.Context, limit int) ([]*record.SystemLogEntry, error)
}

type logRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewLogRepository(pool *pgxpool.Pool, logger *slog.Logger) LogRepository {
	return &logRepository{pool: pool, logger: logger}
}

func (r *logRepository) Append(ctx context.Context, entry *record.SystemLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var contextJSON []byte
	if entry.Context != nil {
		b, err := json.Marshal(entry.Context)
		if err != nil {
			r.logger.Error("repository.logs.marshal_failed", "error", err)
			return err
		}
		contextJSON = b
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO system_logs (id, level, message, context, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.Level, entry.Message, contextJSON, entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("repository.logs.append_failed", "error", err)
		return err
	}
	return nil
}

func (r *logRepository) Recent(ctx context.Context, limit int) ([]*record.SystemLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, level, message, context, created_at
		FROM system_logs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		r.logger.Error("repository.logs.list_failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*record.SystemLogEntry
	for rows.Next() {
		var (
			entry record.SystemLogEntry
			raw   []byte
		)
		if err := rows.Scan(&entry.ID, &entry.Level, &entry.Message, &raw, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &entry.Context); err != nil {
				return nil, err
			}
		}
		out = append(out, &entry)
	}
	return out, rows.Err()
}
