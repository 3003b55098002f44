package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pasecure/idverify/constants"
	"github.com/pasecure/idverify/internal/common"
	"github.com/pasecure/idverify/internal/record"
)

// ListFilter narrows List results. Zero values mean no filtering.
type ListFilter struct {
	Status constants.VerificationStatus
	Since  time.Time
	Limit  int
}

type VerificationRepository interface {
	Create(ctx context.Context, v *record.Verification) error
	GetByID(ctx context.Context, id uuid.UUID) (*record.Verification, error)
	// List returns records newest first.
	List(ctx context.Context, filter ListFilter) ([]*record.Verification, error)
	// OldestPendingOCR returns the single oldest record still awaiting text
	// recognition, or ErrNotFound when the queue is empty.
	OldestPendingOCR(ctx context.Context) (*record.Verification, error)
	// UpdateFields writes only the columns the patch carries. Both pipeline
	// writers go through here so neither can clobber the other's columns.
	UpdateFields(ctx context.Context, id uuid.UUID, p record.Patch) error
}

type verificationRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewVerificationRepository(pool *pgxpool.Pool, logger *slog.Logger) VerificationRepository {
	return &verificationRepository{pool: pool, logger: logger}
}

const verificationColumns = `id, file_path, file_type, file_size, status, confidence_score,
	detected_id_type, detected_id_number, detected_holder_name, security_features,
	ocr_status, ocr_text, processing_time_ms, created_at`

func (r *verificationRepository) Create(ctx context.Context, v *record.Verification) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO verifications (`+verificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		v.ID, v.FilePath, v.FileType, v.FileSize, v.Status, v.ConfidenceScore,
		v.DetectedIDType, v.DetectedIDNumber, v.DetectedHolderName, v.SecurityFeatures,
		v.OCRStatus, v.OCRText, v.ProcessingTimeMs, v.CreatedAt,
	)
	if err != nil {
		r.logger.Error("repository.verification.create_failed", "id", v.ID, "error", err)
		return err
	}
	return nil
}

func (r *verificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*record.Verification, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+verificationColumns+` FROM verifications WHERE id = $1`, id)
	v, err := scanVerification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("verification %s not found", id), common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("repository.verification.get_failed", "id", id, "error", err)
		return nil, err
	}
	return v, nil
}

func (r *verificationRepository) List(ctx context.Context, filter ListFilter) ([]*record.Verification, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	query := `SELECT ` + verificationColumns + ` FROM verifications`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("repository.verification.list_failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*record.Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *verificationRepository) OldestPendingOCR(ctx context.Context) (*record.Verification, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+verificationColumns+`
		FROM verifications
		WHERE ocr_status = $1
		ORDER BY created_at ASC
		LIMIT 1`, constants.OCRPending)
	v, err := scanVerification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", "no pending recognition work", common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("repository.verification.oldest_pending_failed", "error", err)
		return nil, err
	}
	return v, nil
}

func (r *verificationRepository) UpdateFields(ctx context.Context, id uuid.UUID, p record.Patch) error {
	if p.IsZero() {
		return nil
	}

	var (
		sets []string
		args []any
	)
	set := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Status != nil {
		set("status", *p.Status)
	}
	if p.ConfidenceScore != nil {
		set("confidence_score", *p.ConfidenceScore)
	}
	if p.DetectedIDType != nil {
		set("detected_id_type", *p.DetectedIDType)
	}
	if p.DetectedIDNumber != nil {
		set("detected_id_number", *p.DetectedIDNumber)
	}
	if p.DetectedHolderName != nil {
		set("detected_holder_name", *p.DetectedHolderName)
	}
	if p.SecurityFeatures != nil {
		set("security_features", p.SecurityFeatures)
	}
	if p.OCRStatus != nil {
		set("ocr_status", *p.OCRStatus)
	}
	if p.OCRText != nil {
		set("ocr_text", *p.OCRText)
	}
	if p.ProcessingTimeMs != nil {
		set("processing_time_ms", *p.ProcessingTimeMs)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE verifications SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("repository.verification.update_failed", "id", id, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewAppError("NOT_FOUND", fmt.Sprintf("verification %s not found", id), common.ErrNotFound)
	}
	return nil
}

func scanVerification(row pgx.Row) (*record.Verification, error) {
	var v record.Verification
	err := row.Scan(
		&v.ID, &v.FilePath, &v.FileType, &v.FileSize, &v.Status, &v.ConfidenceScore,
		&v.DetectedIDType, &v.DetectedIDNumber, &v.DetectedHolderName, &v.SecurityFeatures,
		&v.OCRStatus, &v.OCRText, &v.ProcessingTimeMs, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
