package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pitchai/pitchai-backend/internal/review/domain"
	"github.com/pitchai/pitchai-backend/internal/review/rubric"
)

// InfoStore is the persistence boundary for missing-information records.
type InfoStore interface {
	Add(ctx context.Context, projectID, dimension, infoType, description string) (*domain.MissingInformation, error)
	Remove(ctx context.Context, projectID, infoID string) error
	ListOpen(ctx context.Context, projectID string) ([]domain.MissingInformation, error)
}

// MissingInfoService tracks information requests that gate a project's
// completion.
type MissingInfoService struct {
	rubric   *rubric.Rubric
	infos    InfoStore
	projects ProjectGetter
}

// NewMissingInfoService creates a new MissingInfoService.
func NewMissingInfoService(r *rubric.Rubric, infos InfoStore, projects ProjectGetter) *MissingInfoService {
	return &MissingInfoService{rubric: r, infos: infos, projects: projects}
}

// Add flags a gap in one rubric dimension. The project moves to needs_info
// regardless of its prior status, unless ingestion is still running.
func (s *MissingInfoService) Add(ctx context.Context, projectID, dimension, infoType, description string) (*domain.MissingInformation, error) {
	if err := ValidateID(projectID); err != nil {
		return nil, err
	}
	if _, err := s.rubric.MaxScoreFor(dimension); err != nil {
		return nil, err
	}
	infoType = strings.TrimSpace(infoType)
	description = strings.TrimSpace(description)
	if infoType == "" {
		return nil, fmt.Errorf("%w: information_type is required", domain.ErrValidation)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	return s.infos.Add(ctx, projectID, dimension, infoType, description)
}

// Remove deletes a record. Removing the last open record restores completed
// when scores exist, pending_review otherwise.
func (s *MissingInfoService) Remove(ctx context.Context, projectID, infoID string) error {
	if err := ValidateID(projectID); err != nil {
		return err
	}
	if err := ValidateID(infoID); err != nil {
		return err
	}
	return s.infos.Remove(ctx, projectID, infoID)
}

// ListOpen returns the project's open records in creation order.
func (s *MissingInfoService) ListOpen(ctx context.Context, projectID string) ([]domain.MissingInformation, error) {
	if err := ValidateID(projectID); err != nil {
		return nil, err
	}
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.infos.ListOpen(ctx, projectID)
}
