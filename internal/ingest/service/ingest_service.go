// Package service runs the business plan ingestion pipeline: accept the
// upload synchronously, then validate, extract, and evaluate in the
// background. The pipeline's only authoritative effect is a single terminal
// write to the business_plans row.
package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/pitchai/pitchai-backend/internal/ingest/llm"
	ingestrepo "github.com/pitchai/pitchai-backend/internal/ingest/repository"
	"github.com/pitchai/pitchai-backend/internal/review/domain"
	"github.com/pitchai/pitchai-backend/internal/review/rubric"
	reviewsvc "github.com/pitchai/pitchai-backend/internal/review/service"
)

// MaxUploadSize caps business plan uploads at 20 MiB.
const MaxUploadSize = 20 << 20

// PlanStore is the persistence boundary for business plan records.
type PlanStore interface {
	Create(ctx context.Context, projectID, fileName string, fileSize int64) (*domain.BusinessPlan, error)
	LatestByProject(ctx context.Context, projectID string) (*domain.BusinessPlan, error)
	MarkCompleted(ctx context.Context, planID, projectID string) error
	MarkFailed(ctx context.Context, planID, projectID, errMsg string) error
}

// FileStorage is the document storage collaborator.
type FileStorage interface {
	SavePlan(projectID, originalName string, r io.Reader) (path, storedName string, size int64, err error)
	PlanPath(fileName string) string
	Exists(path string) bool
	Delete(path string) bool
}

// Extractor is the text extraction collaborator.
type Extractor interface {
	ExtractText(path string) (string, error)
}

// Evaluator is the AI scoring collaborator. A failure here degrades to a
// recorded error; it must never crash the pipeline.
type Evaluator interface {
	EvaluateDimension(ctx context.Context, dim rubric.Dimension, text string) (*llm.DimensionEvaluation, error)
}

// Progress mirrors pipeline state into a side channel for observability.
type Progress interface {
	SetStage(ctx context.Context, planID, stage string) error
	SaveProposal(ctx context.Context, planID string, p *llm.Proposal) error
	Proposal(ctx context.Context, planID string) (*llm.Proposal, error)
}

// Service orchestrates upload and background ingestion.
type Service struct {
	plans    PlanStore
	projects reviewsvc.ProjectGetter
	files    FileStorage
	extract  Extractor
	eval     Evaluator // nil when AI evaluation is disabled
	progress Progress
	rubric   *rubric.Rubric
	timeout  time.Duration
}

// New creates an ingestion service. eval may be nil to run in manual-review
// mode where documents are only validated.
func New(plans PlanStore, projects reviewsvc.ProjectGetter, files FileStorage, extract Extractor, eval Evaluator, progress Progress, r *rubric.Rubric, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Service{
		plans:    plans,
		projects: projects,
		files:    files,
		extract:  extract,
		eval:     eval,
		progress: progress,
		rubric:   r,
		timeout:  timeout,
	}
}

// Upload validates and stores the document, creates the processing record,
// and dispatches the background pipeline. Once the record exists the upload
// has succeeded; later pipeline failures are recorded on the plan, never
// returned here.
func (s *Service) Upload(ctx context.Context, projectID, fileName string, size int64, r io.Reader) (*domain.BusinessPlan, error) {
	if err := reviewsvc.ValidateID(projectID); err != nil {
		return nil, err
	}
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	if fileName == "" {
		return nil, fmt.Errorf("%w: no file provided", domain.ErrValidation)
	}
	if !strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		return nil, fmt.Errorf("%w: only PDF files are supported", domain.ErrValidation)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: file must not be empty", domain.ErrValidation)
	}
	if size > MaxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds the %d MiB limit", domain.ErrValidation, MaxUploadSize>>20)
	}

	path, storedName, written, err := s.files.SavePlan(projectID, fileName, io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("save file: %w", err)
	}
	if written == 0 || written > MaxUploadSize {
		s.files.Delete(path)
		return nil, fmt.Errorf("%w: file must be between 1 byte and %d MiB", domain.ErrValidation, MaxUploadSize>>20)
	}

	bp, err := s.plans.Create(ctx, projectID, storedName, written)
	if err != nil {
		s.files.Delete(path)
		return nil, err
	}

	log.Printf("ingest: plan %s accepted for project %s (%s, %d bytes)", bp.ID, projectID, storedName, written)
	go s.process(bp.ID, projectID, path)

	return bp, nil
}

// process runs the pipeline to exactly one terminal write. The timeout
// bounds the whole run; expiry forces a failed write so no plan is left in
// processing forever.
func (s *Service) process(planID, projectID, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.run(ctx, planID, path)

	// The terminal write gets its own deadline so it still lands after the
	// pipeline context expires.
	wctx, wcancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer wcancel()

	if err == nil {
		s.stage(planID, ingestrepo.StageCompleted)
		if werr := s.plans.MarkCompleted(wctx, planID, projectID); werr != nil {
			log.Printf("ingest: plan %s terminal write failed: %v", planID, werr)
		}
		log.Printf("ingest: plan %s completed", planID)
		return
	}

	s.stage(planID, ingestrepo.StageFailed)
	if werr := s.plans.MarkFailed(wctx, planID, projectID, err.Error()); werr != nil {
		log.Printf("ingest: plan %s terminal write failed: %v", planID, werr)
	}
	log.Printf("ingest: plan %s failed: %v", planID, err)
}

func (s *Service) run(ctx context.Context, planID, path string) error {
	s.stage(planID, ingestrepo.StageVerifying)
	if !s.files.Exists(path) {
		return fmt.Errorf("stored file missing: %s", path)
	}

	s.stage(planID, ingestrepo.StageExtracting)
	text, err := s.extract.ExtractText(path)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}

	if s.eval == nil {
		// Manual-review mode: the document is validated and ready for a
		// human reviewer.
		return nil
	}

	s.stage(planID, ingestrepo.StageEvaluating)
	proposal := &llm.Proposal{Dimensions: make(map[string]llm.DimensionEvaluation)}
	for _, dim := range s.rubric.Dimensions() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("evaluation timed out: %w", err)
		}
		eval, err := s.eval.EvaluateDimension(ctx, dim, text)
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", dim.Name, err)
		}
		proposal.Dimensions[dim.Name] = *eval
		proposal.TotalScore += eval.Score
		proposal.MissingInfo = append(proposal.MissingInfo, eval.MissingInfo...)
	}

	if s.progress != nil {
		if err := s.progress.SaveProposal(ctx, planID, proposal); err != nil {
			log.Printf("ingest: plan %s proposal not saved: %v", planID, err)
		}
	}
	return nil
}

// LatestPlan returns the newest plan record for a project.
func (s *Service) LatestPlan(ctx context.Context, projectID string) (*domain.BusinessPlan, error) {
	if err := reviewsvc.ValidateID(projectID); err != nil {
		return nil, err
	}
	return s.plans.LatestByProject(ctx, projectID)
}

// PlanFile resolves the latest plan's document for download.
func (s *Service) PlanFile(ctx context.Context, projectID string) (path, fileName string, err error) {
	bp, err := s.LatestPlan(ctx, projectID)
	if err != nil {
		return "", "", err
	}
	path = s.files.PlanPath(bp.FileName)
	if !s.files.Exists(path) {
		return "", "", domain.ErrPlanNotFound
	}
	return path, bp.FileName, nil
}

// Cleanup removes the newest stored document for a project, best effort.
// Called when the owning project is deleted; the database rows go via
// cascade, this only reclaims the disk.
func (s *Service) Cleanup(ctx context.Context, projectID string) {
	bp, err := s.LatestPlan(ctx, projectID)
	if err != nil {
		return
	}
	s.files.Delete(s.files.PlanPath(bp.FileName))
}

// Proposal returns the AI score proposal for the latest plan, or nil when
// none was produced.
func (s *Service) Proposal(ctx context.Context, projectID string) (*llm.Proposal, error) {
	bp, err := s.LatestPlan(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if s.progress == nil {
		return nil, nil
	}
	return s.progress.Proposal(ctx, bp.ID)
}

func (s *Service) stage(planID, stage string) {
	if s.progress == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.progress.SetStage(ctx, planID, stage); err != nil {
		log.Printf("ingest: plan %s stage %s not recorded: %v", planID, stage, err)
	}
}
