package service

import (
	"context"
	"fmt"
	"math"

	"github.com/pitchai/pitchai-backend/internal/review/domain"
	"github.com/pitchai/pitchai-backend/internal/review/rubric"
)

// ScoreStore is the persistence boundary for score sets.
type ScoreStore interface {
	Replace(ctx context.Context, projectID string, set domain.ScoreSet) (*domain.Project, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.DimensionScore, error)
}

// ProjectGetter looks up a single project.
type ProjectGetter interface {
	Get(ctx context.Context, id string) (*domain.Project, error)
}

// Recommendation strings derived from the total score.
const (
	RecommendExcellent = "excellent, eligible for full incubation benefit"
	RecommendBaseline  = "meets baseline incubation criteria"
	RecommendBelowBar  = "does not meet incubation criteria"
)

// ScoreService validates score sets against the rubric and aggregates them
// into a total and a recommendation.
type ScoreService struct {
	rubric   *rubric.Rubric
	scores   ScoreStore
	projects ProjectGetter
}

// NewScoreService creates a new ScoreService.
func NewScoreService(r *rubric.Rubric, scores ScoreStore, projects ProjectGetter) *ScoreService {
	return &ScoreService{rubric: r, scores: scores, projects: projects}
}

// ReplaceScores validates and atomically replaces the project's entire score
// set. A rejected set leaves the prior set untouched.
func (s *ScoreService) ReplaceScores(ctx context.Context, projectID string, dims []domain.DimensionScore) (*domain.Project, error) {
	if err := ValidateID(projectID); err != nil {
		return nil, err
	}
	if len(dims) == 0 {
		return nil, domain.ErrEmptyScoreSet
	}

	seen := make(map[string]bool, len(dims))
	total := 0.0
	for _, d := range dims {
		declared, err := s.rubric.MaxScoreFor(d.Dimension)
		if err != nil {
			return nil, err
		}
		if seen[d.Dimension] {
			return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateDimension, d.Dimension)
		}
		seen[d.Dimension] = true

		if d.MaxScore != declared {
			return nil, fmt.Errorf("%w: %q declares %.1f, rubric says %.1f",
				domain.ErrRubricMismatch, d.Dimension, d.MaxScore, declared)
		}
		if d.Score < 0 || d.Score > d.MaxScore {
			return nil, fmt.Errorf("%w: %q scored %.1f of %.1f",
				domain.ErrScoreOutOfRange, d.Dimension, d.Score, d.MaxScore)
		}
		for _, sub := range d.SubDimensions {
			if sub.Score < 0 || sub.Score > sub.MaxScore {
				return nil, fmt.Errorf("%w: %q/%q scored %.1f of %.1f",
					domain.ErrScoreOutOfRange, d.Dimension, sub.SubDimension, sub.Score, sub.MaxScore)
			}
		}
		total += d.Score
	}

	set := domain.ScoreSet{
		Dimensions:   dims,
		Total:        total,
		ReviewResult: Recommendation(total),
	}
	return s.scores.Replace(ctx, projectID, set)
}

// ProjectScores returns the full dimension breakdown. A project with no
// scores yet gets a zeroed skeleton built from the rubric; that is a valid
// empty state, not an error.
func (s *ScoreService) ProjectScores(ctx context.Context, projectID string) ([]domain.DimensionScore, error) {
	if err := ValidateID(projectID); err != nil {
		return nil, err
	}
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}

	dims, err := s.scores.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(dims) > 0 {
		return dims, nil
	}

	skeleton := make([]domain.DimensionScore, 0, len(s.rubric.Dimensions()))
	for _, d := range s.rubric.Dimensions() {
		subs := make([]domain.SubDimensionScore, 0, len(d.SubDimensions))
		for _, sub := range d.SubDimensions {
			subs = append(subs, domain.SubDimensionScore{SubDimension: sub.Name, MaxScore: sub.MaxScore})
		}
		skeleton = append(skeleton, domain.DimensionScore{
			Dimension:     d.Name,
			MaxScore:      d.MaxScore,
			SubDimensions: subs,
		})
	}
	return skeleton, nil
}

// DimensionSummary is one row of the score summary.
type DimensionSummary struct {
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"max_score"`
	Percentage float64 `json:"percentage"`
}

// ScoreSummary aggregates a project's scores for reporting.
type ScoreSummary struct {
	ProjectID          string                      `json:"project_id"`
	ProjectName        string                      `json:"project_name"`
	EnterpriseName     string                      `json:"enterprise_name"`
	TotalScore         float64                     `json:"total_score"`
	TotalPossible      float64                     `json:"total_possible"`
	OverallPercentage  float64                     `json:"overall_percentage"`
	Recommendation     string                      `json:"recommendation"`
	DimensionBreakdown map[string]DimensionSummary `json:"dimension_breakdown"`
	LastUpdated        string                      `json:"last_updated"`
}

// Summary computes per-dimension percentages and the overall recommendation.
// With zero scores the breakdown is empty and every percentage is 0.
func (s *ScoreService) Summary(ctx context.Context, projectID string) (*ScoreSummary, error) {
	if err := ValidateID(projectID); err != nil {
		return nil, err
	}
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	dims, err := s.scores.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	breakdown := make(map[string]DimensionSummary, len(dims))
	totalPossible := 0.0
	for _, d := range dims {
		pct := 0.0
		if d.MaxScore > 0 {
			pct = round1(d.Score / d.MaxScore * 100)
		}
		breakdown[d.Dimension] = DimensionSummary{Score: d.Score, MaxScore: d.MaxScore, Percentage: pct}
		totalPossible += d.MaxScore
	}

	total := 0.0
	if p.TotalScore != nil {
		total = *p.TotalScore
	}
	overall := 0.0
	if totalPossible > 0 {
		overall = round1(total / totalPossible * 100)
	}

	return &ScoreSummary{
		ProjectID:          p.ID,
		ProjectName:        p.ProjectName,
		EnterpriseName:     p.EnterpriseName,
		TotalScore:         total,
		TotalPossible:      totalPossible,
		OverallPercentage:  overall,
		Recommendation:     Recommendation(total),
		DimensionBreakdown: breakdown,
		LastUpdated:        p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// Recommendation maps a total score to its qualitative verdict.
func Recommendation(total float64) string {
	switch {
	case total >= 80:
		return RecommendExcellent
	case total >= 60:
		return RecommendBaseline
	default:
		return RecommendBelowBar
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
