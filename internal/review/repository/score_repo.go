package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pitchai/pitchai-backend/internal/review/domain"
)

// ScoreRepository persists dimension and sub-dimension scores.
type ScoreRepository struct {
	db *pgxpool.Pool
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(db *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Replace swaps the project's entire score set in a single transaction:
// the prior set (including sub-dimensions) is removed, the new one inserted,
// and the project's total, review result, and status recomputed. Any failure
// rolls back, leaving the previous set authoritative. The project row lock
// serializes concurrent replacements.
func (r *ScoreRepository) Replace(ctx context.Context, projectID string, set domain.ScoreSet) (*domain.Project, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	cur, err := lockProject(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}

	// score_details rows go with their parent scores via ON DELETE CASCADE.
	if _, err := tx.Exec(ctx, `DELETE FROM scores WHERE project_id = $1;`, projectID); err != nil {
		return nil, fmt.Errorf("delete prior scores: %w", mapPgError(err))
	}

	const insScore = `
INSERT INTO scores (id, project_id, dimension, score, max_score, comments)
VALUES ($1, $2, $3, $4, $5, $6);
`
	const insDetail = `
INSERT INTO score_details (id, score_id, sub_dimension, score, max_score, comments)
VALUES ($1, $2, $3, $4, $5, $6);
`
	for _, d := range set.Dimensions {
		scoreID := uuid.New().String()
		if _, err := tx.Exec(ctx, insScore, scoreID, projectID, d.Dimension, d.Score, d.MaxScore, d.Comments); err != nil {
			return nil, fmt.Errorf("insert score %s: %w", d.Dimension, mapPgError(err))
		}
		for _, sub := range d.SubDimensions {
			if _, err := tx.Exec(ctx, insDetail, uuid.New().String(), scoreID, sub.SubDimension, sub.Score, sub.MaxScore, sub.Comments); err != nil {
				return nil, fmt.Errorf("insert sub-dimension %s: %w", sub.SubDimension, mapPgError(err))
			}
		}
	}

	openInfo, err := countOpenInfo(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	next := domain.NextStatus(cur, domain.Event{Kind: domain.EventScoresReplaced, OpenInfo: openInfo > 0})

	const updQ = `
UPDATE projects
SET total_score = $2, review_result = $3, status = $4, updated_at = now()
WHERE id = $1
RETURNING ` + projectCols + `;
`
	p, err := scanProject(tx.QueryRow(ctx, updQ, projectID, set.Total, set.ReviewResult, next))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit score replace: %w", mapPgError(err))
	}
	return p, nil
}

// ListByProject returns the project's dimension scores with their
// sub-dimensions, in rubric insertion order.
func (r *ScoreRepository) ListByProject(ctx context.Context, projectID string) ([]domain.DimensionScore, error) {
	const q = `
SELECT id, dimension, score, max_score, comments
FROM scores
WHERE project_id = $1
ORDER BY created_at ASC;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	type scored struct {
		id  string
		dim domain.DimensionScore
	}
	out := make([]scored, 0, 8)
	for rows.Next() {
		var s scored
		if err := rows.Scan(&s.id, &s.dim.Dimension, &s.dim.Score, &s.dim.MaxScore, &s.dim.Comments); err != nil {
			return nil, mapPgError(err)
		}
		s.dim.SubDimensions = []domain.SubDimensionScore{}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err)
	}

	const subQ = `
SELECT sub_dimension, score, max_score, comments
FROM score_details
WHERE score_id = $1
ORDER BY created_at ASC;
`
	dims := make([]domain.DimensionScore, 0, len(out))
	for _, s := range out {
		subRows, err := r.db.Query(ctx, subQ, s.id)
		if err != nil {
			return nil, mapPgError(err)
		}
		for subRows.Next() {
			var sub domain.SubDimensionScore
			if err := subRows.Scan(&sub.SubDimension, &sub.Score, &sub.MaxScore, &sub.Comments); err != nil {
				subRows.Close()
				return nil, mapPgError(err)
			}
			s.dim.SubDimensions = append(s.dim.SubDimensions, sub)
		}
		err = subRows.Err()
		subRows.Close()
		if err != nil {
			return nil, mapPgError(err)
		}
		dims = append(dims, s.dim)
	}
	return dims, nil
}

func countOpenInfo(ctx context.Context, tx pgx.Tx, projectID string) (int, error) {
	var n int
	const q = `SELECT count(*) FROM missing_information WHERE project_id = $1 AND status = $2;`
	if err := tx.QueryRow(ctx, q, projectID, domain.InfoOpen).Scan(&n); err != nil {
		return 0, mapPgError(err)
	}
	return n, nil
}

func countScores(ctx context.Context, tx pgx.Tx, projectID string) (int, error) {
	var n int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM scores WHERE project_id = $1;`, projectID).Scan(&n); err != nil {
		return 0, mapPgError(err)
	}
	return n, nil
}
