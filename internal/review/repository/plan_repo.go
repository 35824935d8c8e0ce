package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pitchai/pitchai-backend/internal/review/domain"
)

const planCols = "id, project_id, file_name, file_size, status, upload_time, updated_at, error_message"

// PlanRepository persists business plan records. A plan is created in
// processing and receives exactly one terminal write per upload attempt.
type PlanRepository struct {
	db *pgxpool.Pool
}

// NewPlanRepository creates a new business plan repository.
func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

func scanPlan(row pgx.Row) (*domain.BusinessPlan, error) {
	var bp domain.BusinessPlan
	err := row.Scan(&bp.ID, &bp.ProjectID, &bp.FileName, &bp.FileSize,
		&bp.Status, &bp.UploadTime, &bp.UpdatedAt, &bp.ErrorMessage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, mapPgError(err)
	}
	return &bp, nil
}

// Create inserts a processing plan record and moves the project to
// processing in the same transaction.
func (r *PlanRepository) Create(ctx context.Context, projectID, fileName string, fileSize int64) (*domain.BusinessPlan, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	cur, err := lockProject(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}

	const insQ = `
INSERT INTO business_plans (id, project_id, file_name, file_size, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + planCols + `;
`
	bp, err := scanPlan(tx.QueryRow(ctx, insQ, uuid.New().String(), projectID, fileName, fileSize, domain.PlanProcessing))
	if err != nil {
		return nil, err
	}

	next := domain.NextStatus(cur, domain.Event{Kind: domain.EventPlanUploadAccepted})
	if err := setStatus(ctx, tx, projectID, next); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit plan create: %w", mapPgError(err))
	}
	return bp, nil
}

// LatestByProject returns the most recently uploaded plan for a project.
func (r *PlanRepository) LatestByProject(ctx context.Context, projectID string) (*domain.BusinessPlan, error) {
	const q = `
SELECT ` + planCols + `
FROM business_plans
WHERE project_id = $1
ORDER BY upload_time DESC
LIMIT 1;
`
	return scanPlan(r.db.QueryRow(ctx, q, projectID))
}

// MarkCompleted writes the completed terminal status. The status guard makes
// the terminal write idempotent: a plan already completed or failed is left
// untouched.
func (r *PlanRepository) MarkCompleted(ctx context.Context, planID, projectID string) error {
	return r.terminal(ctx, planID, projectID, domain.PlanCompleted, nil, domain.EventIngestionSucceeded)
}

// MarkFailed writes the failed terminal status with the recorded error.
func (r *PlanRepository) MarkFailed(ctx context.Context, planID, projectID, errMsg string) error {
	return r.terminal(ctx, planID, projectID, domain.PlanFailed, &errMsg, domain.EventIngestionFailed)
}

func (r *PlanRepository) terminal(ctx context.Context, planID, projectID, status string, errMsg *string, ev domain.EventKind) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	cur, err := lockProject(ctx, tx, projectID)
	if err != nil {
		return err
	}

	const q = `
UPDATE business_plans
SET status = $2, error_message = $3, updated_at = now()
WHERE id = $1 AND status = $4;
`
	ct, err := tx.Exec(ctx, q, planID, status, errMsg, domain.PlanProcessing)
	if err != nil {
		return fmt.Errorf("plan terminal write: %w", mapPgError(err))
	}
	if ct.RowsAffected() == 0 {
		// Already terminal; nothing else to do.
		return tx.Commit(ctx)
	}

	openInfo, err := countOpenInfo(ctx, tx, projectID)
	if err != nil {
		return err
	}
	next := domain.NextStatus(cur, domain.Event{Kind: ev, OpenInfo: openInfo > 0})
	if err := setStatus(ctx, tx, projectID, next); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit plan terminal: %w", mapPgError(err))
	}
	return nil
}

func setStatus(ctx context.Context, tx pgx.Tx, projectID string, status domain.Status) error {
	const q = `UPDATE projects SET status = $2, updated_at = now() WHERE id = $1;`
	if _, err := tx.Exec(ctx, q, projectID, status); err != nil {
		return fmt.Errorf("update project status: %w", mapPgError(err))
	}
	return nil
}
