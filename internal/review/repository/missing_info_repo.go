package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pitchai/pitchai-backend/internal/review/domain"
)

const infoCols = "id, project_id, dimension, information_type, description, status, created_at, updated_at"

// MissingInfoRepository persists missing-information records. Open records
// gate the owning project's completion status; every mutation recomputes the
// status under the project row lock.
type MissingInfoRepository struct {
	db *pgxpool.Pool
}

// NewMissingInfoRepository creates a new missing-information repository.
func NewMissingInfoRepository(db *pgxpool.Pool) *MissingInfoRepository {
	return &MissingInfoRepository{db: db}
}

// Add inserts an open record and forces the project to needs_info (unless
// ingestion is still running).
func (r *MissingInfoRepository) Add(ctx context.Context, projectID, dimension, infoType, description string) (*domain.MissingInformation, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	cur, err := lockProject(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO missing_information (id, project_id, dimension, information_type, description, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + infoCols + `;
`
	var rec domain.MissingInformation
	err = tx.QueryRow(ctx, q, uuid.New().String(), projectID, dimension, infoType, description, domain.InfoOpen).
		Scan(&rec.ID, &rec.ProjectID, &rec.Dimension, &rec.InformationType, &rec.Description,
			&rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert missing info: %w", mapPgError(err))
	}

	next := domain.NextStatus(cur, domain.Event{Kind: domain.EventInfoAdded, OpenInfo: true})
	if next != cur {
		if err := setStatus(ctx, tx, projectID, next); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit missing info add: %w", mapPgError(err))
	}
	return &rec, nil
}

// Remove deletes a record owned by the project. When the last open record
// goes, the project reverts to completed if scores exist, otherwise to
// pending_review.
func (r *MissingInfoRepository) Remove(ctx context.Context, projectID, infoID string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	cur, err := lockProject(ctx, tx, projectID)
	if err != nil {
		return err
	}

	ct, err := tx.Exec(ctx, `DELETE FROM missing_information WHERE id = $1 AND project_id = $2;`, infoID, projectID)
	if err != nil {
		return fmt.Errorf("delete missing info: %w", mapPgError(err))
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrInfoNotFound
	}

	openInfo, err := countOpenInfo(ctx, tx, projectID)
	if err != nil {
		return err
	}
	nScores, err := countScores(ctx, tx, projectID)
	if err != nil {
		return err
	}

	next := domain.NextStatus(cur, domain.Event{
		Kind:      domain.EventInfoRemoved,
		OpenInfo:  openInfo > 0,
		HasScores: nScores > 0,
	})
	if next != cur {
		if err := setStatus(ctx, tx, projectID, next); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit missing info remove: %w", mapPgError(err))
	}
	return nil
}

// ListOpen returns the project's open records in creation order. Each call
// replays current state, not a cached snapshot.
func (r *MissingInfoRepository) ListOpen(ctx context.Context, projectID string) ([]domain.MissingInformation, error) {
	const q = `
SELECT ` + infoCols + `
FROM missing_information
WHERE project_id = $1 AND status = $2
ORDER BY created_at ASC;
`
	rows, err := r.db.Query(ctx, q, projectID, domain.InfoOpen)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	out := make([]domain.MissingInformation, 0, 8)
	for rows.Next() {
		var rec domain.MissingInformation
		if err := rows.Scan(&rec.ID, &rec.ProjectID, &rec.Dimension, &rec.InformationType,
			&rec.Description, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, mapPgError(err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
