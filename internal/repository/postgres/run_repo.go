package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"planfill/internal/domain"
	"planfill/internal/port"
)

type runRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a new PostgreSQL-backed RunRepository.
func NewRunRepo(db *sqlx.DB) port.RunRepository {
	return &runRepo{db: db}
}

func (r *runRepo) Create(ctx context.Context, run *domain.Run) error {
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now

	query := `INSERT INTO runs (
		id, status, template_name, content_type,
		template_bucket, template_key, output_bucket, output_key,
		user_context, binding_count, fill_count, total_batches, failed_batches,
		attempts, error_text, notify_email,
		created_at, started_at, completed_at, updated_at
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8,
		$9, $10, $11, $12, $13,
		$14, $15, $16,
		$17, $18, $19, $20
	)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Status, run.TemplateName, run.ContentType,
		run.TemplateBucket, run.TemplateKey, run.OutputBucket, run.OutputKey,
		run.UserContext, run.BindingCount, run.FillCount, run.TotalBatches, run.FailedBatches,
		run.Attempts, run.ErrorText, run.NotifyEmail,
		run.CreatedAt, run.StartedAt, run.CompletedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("runRepo.Create: %w", err)
	}
	return nil
}

func (r *runRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	var run domain.Run
	err := r.db.GetContext(ctx, &run, "SELECT * FROM runs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("runRepo.GetByID: %w", err)
	}
	return &run, nil
}

func (r *runRepo) List(ctx context.Context, offset, limit int) ([]domain.Run, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM runs")
	if err != nil {
		return nil, 0, fmt.Errorf("runRepo.List count: %w", err)
	}

	var runs []domain.Run
	err = r.db.SelectContext(ctx, &runs,
		"SELECT * FROM runs ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("runRepo.List: %w", err)
	}
	return runs, total, nil
}

func (r *runRepo) Update(ctx context.Context, run *domain.Run) error {
	run.UpdatedAt = time.Now().UTC()

	query := `UPDATE runs SET
		status = $2, template_name = $3, content_type = $4,
		template_bucket = $5, template_key = $6, output_bucket = $7, output_key = $8,
		user_context = $9, binding_count = $10, fill_count = $11,
		total_batches = $12, failed_batches = $13,
		attempts = $14, error_text = $15, notify_email = $16,
		started_at = $17, completed_at = $18, updated_at = $19
	WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		run.ID, run.Status, run.TemplateName, run.ContentType,
		run.TemplateBucket, run.TemplateKey, run.OutputBucket, run.OutputKey,
		run.UserContext, run.BindingCount, run.FillCount,
		run.TotalBatches, run.FailedBatches,
		run.Attempts, run.ErrorText, run.NotifyEmail,
		run.StartedAt, run.CompletedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("runRepo.Update: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("runRepo.Update rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}

// ClaimQueued atomically moves up to limit queued runs to processing
// so concurrent workers never pick up the same run twice.
func (r *runRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Run, error) {
	query := `UPDATE runs SET
		status = $1, attempts = attempts + 1, started_at = $2, updated_at = $2
	WHERE id IN (
		SELECT id FROM runs WHERE status = $3
		ORDER BY created_at ASC LIMIT $4
		FOR UPDATE SKIP LOCKED
	)
	RETURNING *`

	now := time.Now().UTC()
	var runs []domain.Run
	err := r.db.SelectContext(ctx, &runs, query,
		domain.RunStatusProcessing, now, domain.RunStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("runRepo.ClaimQueued: %w", err)
	}
	return runs, nil
}
