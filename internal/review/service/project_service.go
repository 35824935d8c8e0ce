package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pitchai/pitchai-backend/internal/review/domain"
)

// ProjectStore is the persistence boundary for projects.
type ProjectStore interface {
	Create(ctx context.Context, enterpriseName, projectName string, description *string) (*domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	Update(ctx context.Context, id, enterpriseName, projectName string, description *string) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f domain.ProjectFilter) (*domain.ProjectPage, error)
	Statistics(ctx context.Context) (*domain.Statistics, error)
}

// ProjectService handles project CRUD and dashboard queries.
type ProjectService struct {
	projects ProjectStore
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projects ProjectStore) *ProjectService {
	return &ProjectService{projects: projects}
}

// ValidateID rejects identifiers that are not UUIDs before they reach the
// store.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	return nil
}

func validateNames(enterpriseName, projectName string) (string, string, error) {
	enterpriseName = strings.TrimSpace(enterpriseName)
	projectName = strings.TrimSpace(projectName)
	if enterpriseName == "" || len(enterpriseName) > 255 {
		return "", "", fmt.Errorf("%w: enterprise_name must be 1-255 characters", domain.ErrValidation)
	}
	if projectName == "" || len(projectName) > 255 {
		return "", "", fmt.Errorf("%w: project_name must be 1-255 characters", domain.ErrValidation)
	}
	return enterpriseName, projectName, nil
}

// Create registers a new project in pending_review.
func (s *ProjectService) Create(ctx context.Context, enterpriseName, projectName string, description *string) (*domain.Project, error) {
	enterpriseName, projectName, err := validateNames(enterpriseName, projectName)
	if err != nil {
		return nil, err
	}
	return s.projects.Create(ctx, enterpriseName, projectName, description)
}

// Get returns a project by id.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	return s.projects.Get(ctx, id)
}

// Update changes names and description. Status and review result are derived
// fields and cannot be set by clients.
func (s *ProjectService) Update(ctx context.Context, id, enterpriseName, projectName string, description *string) (*domain.Project, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	enterpriseName, projectName, err := validateNames(enterpriseName, projectName)
	if err != nil {
		return nil, err
	}
	return s.projects.Update(ctx, id, enterpriseName, projectName, description)
}

// Delete removes a project and everything it owns.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	return s.projects.Delete(ctx, id)
}

// List returns one page of projects. Page and size are clamped to sane
// bounds; status must be a declared value when present.
func (s *ProjectService) List(ctx context.Context, f domain.ProjectFilter) (*domain.ProjectPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Size < 1 {
		f.Size = 10
	}
	if f.Size > 100 {
		f.Size = 100
	}
	if f.Status != "" && !domain.ValidStatus(domain.Status(f.Status)) {
		return nil, fmt.Errorf("%w: unknown status filter %q", domain.ErrValidation, f.Status)
	}
	return s.projects.List(ctx, f)
}

// Statistics returns dashboard counts and recent projects.
func (s *ProjectService) Statistics(ctx context.Context) (*domain.Statistics, error) {
	return s.projects.Statistics(ctx)
}
