package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Setting is one runtime-tunable key/value pair, such as the upload size cap.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SettingsRepository interface {
	All(ctx context.Context) ([]*Setting, error)
	Set(ctx context.Context, key, value string) error
}

type settingsRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewSettingsRepository(pool *pgxpool.Pool, logger *slog.Logger) SettingsRepository {
	return &settingsRepository{pool: pool, logger: logger}
}

func (r *settingsRepository) All(ctx context.Context) ([]*Setting, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		r.logger.Error("repository.settings.list_failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *settingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		r.logger.Error("repository.settings.set_failed", "key", key, "error", err)
		return err
	}
	return nil
}
