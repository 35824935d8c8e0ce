package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pitchai/pitchai-backend/internal/review/domain"
)

const projectCols = "id, enterprise_name, project_name, description, status, total_score, review_result, created_at, updated_at"

// ProjectRepository provides persistence operations for projects.
type ProjectRepository struct {
	db *pgxpool.Pool
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.EnterpriseName, &p.ProjectName, &p.Description,
		&p.Status, &p.TotalScore, &p.ReviewResult, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, mapPgError(err)
	}
	return &p, nil
}

// Create inserts a new project in pending_review.
func (r *ProjectRepository) Create(ctx context.Context, enterpriseName, projectName string, description *string) (*domain.Project, error) {
	const q = `
INSERT INTO projects (id, enterprise_name, project_name, description, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + projectCols + `;
`
	row := r.db.QueryRow(ctx, q, uuid.New().String(), enterpriseName, projectName, description, domain.StatusPendingReview)
	return scanProject(row)
}

// Get returns a project by id.
func (r *ProjectRepository) Get(ctx context.Context, id string) (*domain.Project, error) {
	const q = `SELECT ` + projectCols + ` FROM projects WHERE id = $1;`
	return scanProject(r.db.QueryRow(ctx, q, id))
}

// Update changes the client-editable fields only. Status, total_score and
// review_result are derived and never written here.
func (r *ProjectRepository) Update(ctx context.Context, id, enterpriseName, projectName string, description *string) (*domain.Project, error) {
	const q = `
UPDATE projects
SET enterprise_name = $2, project_name = $3, description = $4, updated_at = now()
WHERE id = $1
RETURNING ` + projectCols + `;
`
	return scanProject(r.db.QueryRow(ctx, q, id, enterpriseName, projectName, description))
}

// Delete removes a project. Scores, score details, business plans, and
// missing-information rows go with it via ON DELETE CASCADE.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1;`, id)
	if err != nil {
		return mapPgError(err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// List returns one page of projects filtered by status and name search,
// newest first.
func (r *ProjectRepository) List(ctx context.Context, f domain.ProjectFilter) (*domain.ProjectPage, error) {
	where := "WHERE 1=1"
	args := make([]any, 0, 4)

	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(" AND (enterprise_name ILIKE $%d OR project_name ILIKE $%d)", len(args), len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM projects "+where+";", args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("%w: count projects: %v", domain.ErrStoreUnavailable, err)
	}

	args = append(args, f.Size, (f.Page-1)*f.Size)
	q := fmt.Sprintf("SELECT %s FROM projects %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d;",
		projectCols, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list projects: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	items := make([]domain.Project, 0, f.Size)
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.EnterpriseName, &p.ProjectName, &p.Description,
			&p.Status, &p.TotalScore, &p.ReviewResult, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: list projects: %v", domain.ErrStoreUnavailable, err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list projects: %v", domain.ErrStoreUnavailable, err)
	}
	return &domain.ProjectPage{Total: total, Items: items}, nil
}

// Statistics counts projects by status and fetches the five most recent.
// A store failure is surfaced, never papered over with canned numbers.
func (r *ProjectRepository) Statistics(ctx context.Context) (*domain.Statistics, error) {
	const countQ = `SELECT status, count(*) FROM projects GROUP BY status;`

	rows, err := r.db.Query(ctx, countQ)
	if err != nil {
		return nil, fmt.Errorf("%w: count by status: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var st domain.Statistics
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("%w: count by status: %v", domain.ErrStoreUnavailable, err)
		}
		switch domain.Status(status) {
		case domain.StatusPendingReview:
			st.PendingReview = n
		case domain.StatusProcessing:
			st.Processing = n
		case domain.StatusCompleted:
			st.Completed = n
		case domain.StatusNeedsInfo:
			st.NeedsInfo = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: count by status: %v", domain.ErrStoreUnavailable, err)
	}

	const recentQ = `SELECT ` + projectCols + ` FROM projects ORDER BY created_at DESC LIMIT 5;`
	recent, err := r.db.Query(ctx, recentQ)
	if err != nil {
		return nil, fmt.Errorf("%w: recent projects: %v", domain.ErrStoreUnavailable, err)
	}
	defer recent.Close()

	st.RecentProjects = make([]domain.Project, 0, 5)
	for recent.Next() {
		var p domain.Project
		if err := recent.Scan(&p.ID, &p.EnterpriseName, &p.ProjectName, &p.Description,
			&p.Status, &p.TotalScore, &p.ReviewResult, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: recent projects: %v", domain.ErrStoreUnavailable, err)
		}
		st.RecentProjects = append(st.RecentProjects, p)
	}
	if err := recent.Err(); err != nil {
		return nil, fmt.Errorf("%w: recent projects: %v", domain.ErrStoreUnavailable, err)
	}
	return &st, nil
}

// lockProject takes the per-project row lock that serializes every mutating
// operation, and returns the current status seen under the lock.
func lockProject(ctx context.Context, tx pgx.Tx, projectID string) (domain.Status, error) {
	const q = `SELECT status FROM projects WHERE id = $1 FOR UPDATE;`
	var status domain.Status
	if err := tx.QueryRow(ctx, q, projectID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrProjectNotFound
		}
		return "", mapPgError(err)
	}
	return status, nil
}

// mapPgError translates serialization and lock failures into ErrConflict so
// callers know a retry is safe.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Code)
		}
	}
	return err
}
