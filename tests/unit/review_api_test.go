package unit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ingestsvc "github.com/pitchai/pitchai-backend/internal/ingest/service"
	"github.com/pitchai/pitchai-backend/internal/review/domain"
	reviewhttp "github.com/pitchai/pitchai-backend/internal/review/http"
	"github.com/pitchai/pitchai-backend/internal/review/rubric"
	"github.com/pitchai/pitchai-backend/internal/review/service"
)

// memStore is an in-memory stand-in for the postgres repositories. It applies
// the same lifecycle rule the real repositories do, so handler tests exercise
// status transitions end to end without a database.
type memStore struct {
	projects map[string]*domain.Project
	scores   map[string][]domain.DimensionScore
	infos    map[string][]domain.MissingInformation
	plans    map[string][]*domain.BusinessPlan
	listErr  error
}

func newMemStore() *memStore {
	return &memStore{
		projects: make(map[string]*domain.Project),
		scores:   make(map[string][]domain.DimensionScore),
		infos:    make(map[string][]domain.MissingInformation),
		plans:    make(map[string][]*domain.BusinessPlan),
	}
}

func (m *memStore) Create(_ context.Context, enterpriseName, projectName string, description *string) (*domain.Project, error) {
	p := &domain.Project{
		ID:             uuid.NewString(),
		EnterpriseName: enterpriseName,
		ProjectName:    projectName,
		Description:    description,
		Status:         domain.StatusPendingReview,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	m.projects[p.ID] = p
	return p, nil
}

func (m *memStore) Get(_ context.Context, id string) (*domain.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) Update(_ context.Context, id, enterpriseName, projectName string, description *string) (*domain.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	p.EnterpriseName = enterpriseName
	p.ProjectName = projectName
	p.Description = description
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(m.projects, id)
	delete(m.scores, id)
	delete(m.infos, id)
	delete(m.plans, id)
	return nil
}

func (m *memStore) List(_ context.Context, f domain.ProjectFilter) (*domain.ProjectPage, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	items := make([]domain.Project, 0, len(m.projects))
	for _, p := range m.projects {
		if f.Status != "" && string(p.Status) != f.Status {
			continue
		}
		items = append(items, *p)
	}
	return &domain.ProjectPage{Total: len(items), Items: items}, nil
}

func (m *memStore) Statistics(_ context.Context) (*domain.Statistics, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	st := &domain.Statistics{RecentProjects: []domain.Project{}}
	for _, p := range m.projects {
		switch p.Status {
		case domain.StatusPendingReview:
			st.PendingReview++
		case domain.StatusProcessing:
			st.Processing++
		case domain.StatusCompleted:
			st.Completed++
		case domain.StatusNeedsInfo:
			st.NeedsInfo++
		}
	}
	return st, nil
}

func (m *memStore) openInfo(projectID string) bool {
	for _, rec := range m.infos[projectID] {
		if rec.Status == domain.InfoOpen {
			return true
		}
	}
	return false
}

func (m *memStore) Replace(_ context.Context, projectID string, set domain.ScoreSet) (*domain.Project, error) {
	p, ok := m.projects[projectID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	m.scores[projectID] = set.Dimensions
	p.TotalScore = &set.Total
	p.ReviewResult = &set.ReviewResult
	p.Status = domain.NextStatus(p.Status, domain.Event{
		Kind:      domain.EventScoresReplaced,
		OpenInfo:  m.openInfo(projectID),
		HasScores: true,
	})
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (m *memStore) ListByProject(_ context.Context, projectID string) ([]domain.DimensionScore, error) {
	return m.scores[projectID], nil
}

func (m *memStore) Add(_ context.Context, projectID, dimension, infoType, description string) (*domain.MissingInformation, error) {
	p, ok := m.projects[projectID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	rec := domain.MissingInformation{
		ID:              uuid.NewString(),
		ProjectID:       projectID,
		Dimension:       dimension,
		InformationType: infoType,
		Description:     description,
		Status:          domain.InfoOpen,
		CreatedAt:       time.Now().UTC(),
	}
	m.infos[projectID] = append(m.infos[projectID], rec)
	p.Status = domain.NextStatus(p.Status, domain.Event{Kind: domain.EventInfoAdded, OpenInfo: true})
	return &rec, nil
}

func (m *memStore) Remove(_ context.Context, projectID, infoID string) error {
	p, ok := m.projects[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	recs := m.infos[projectID]
	idx := -1
	for i, rec := range recs {
		if rec.ID == infoID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrInfoNotFound
	}
	m.infos[projectID] = append(recs[:idx], recs[idx+1:]...)
	p.Status = domain.NextStatus(p.Status, domain.Event{
		Kind:      domain.EventInfoRemoved,
		OpenInfo:  m.openInfo(projectID),
		HasScores: len(m.scores[projectID]) > 0,
	})
	return nil
}

func (m *memStore) ListOpen(_ context.Context, projectID string) ([]domain.MissingInformation, error) {
	recs := m.infos[projectID]
	if recs == nil {
		recs = []domain.MissingInformation{}
	}
	return recs, nil
}

func (m *memStore) CreatePlan(_ context.Context, projectID, fileName string, fileSize int64) (*domain.BusinessPlan, error) {
	p, ok := m.projects[projectID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	bp := &domain.BusinessPlan{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		FileName:   fileName,
		FileSize:   fileSize,
		Status:     domain.PlanProcessing,
		UploadTime: time.Now().UTC(),
	}
	m.plans[projectID] = append(m.plans[projectID], bp)
	p.Status = domain.NextStatus(p.Status, domain.Event{Kind: domain.EventPlanUploadAccepted})
	return bp, nil
}

// planStore adapts memStore to the ingestion service's PlanStore and signals
// terminal writes so tests can wait for the background pipeline.
type planStore struct {
	*memStore
	done chan string
}

func (s *planStore) Create(ctx context.Context, projectID, fileName string, fileSize int64) (*domain.BusinessPlan, error) {
	return s.CreatePlan(ctx, projectID, fileName, fileSize)
}

func (s *planStore) LatestByProject(_ context.Context, projectID string) (*domain.BusinessPlan, error) {
	plans := s.plans[projectID]
	if len(plans) == 0 {
		return nil, domain.ErrPlanNotFound
	}
	return plans[len(plans)-1], nil
}

func (s *planStore) terminal(projectID, planID, status string, errMsg *string) error {
	p, ok := s.projects[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	for _, bp := range s.plans[projectID] {
		if bp.ID == planID {
			bp.Status = status
			bp.ErrorMessage = errMsg
		}
	}
	kind := domain.EventIngestionSucceeded
	if status == domain.PlanFailed {
		kind = domain.EventIngestionFailed
	}
	p.Status = domain.NextStatus(p.Status, domain.Event{
		Kind:     kind,
		OpenInfo: s.openInfo(projectID),
	})
	if s.done != nil {
		s.done <- planID
	}
	return nil
}

func (s *planStore) MarkCompleted(_ context.Context, planID, projectID string) error {
	return s.terminal(projectID, planID, domain.PlanCompleted, nil)
}

func (s *planStore) MarkFailed(_ context.Context, planID, projectID, errMsg string) error {
	return s.terminal(projectID, planID, domain.PlanFailed, &errMsg)
}

type memFiles struct{}

func (memFiles) SavePlan(projectID, originalName string, r io.Reader) (string, string, int64, error) {
	n, _ := io.Copy(io.Discard, r)
	name := projectID + "_" + originalName
	return "/uploads/" + name, name, n, nil
}

func (memFiles) PlanPath(fileName string) string { return "/uploads/" + fileName }
func (memFiles) Exists(string) bool              { return true }
func (memFiles) Delete(string) bool              { return true }

type memExtractor struct{}

func (memExtractor) ExtractText(string) (string, error) { return "plan text", nil }

type testAPI struct {
	router *gin.Engine
	store  *memStore
	done   chan string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	done := make(chan string, 1)
	r := rubric.Default()

	projects := service.NewProjectService(store)
	scores := service.NewScoreService(r, store, store)
	infos := service.NewMissingInfoService(r, store, store)
	ingest := ingestsvc.New(&planStore{memStore: store, done: done}, store, memFiles{}, memExtractor{}, nil, nil, r, time.Minute)

	router := gin.New()
	reviewhttp.Register(router.Group("/api/v1"), projects, scores, infos, ingest)

	return &testAPI{router: router, store: store, done: done}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) createProject(t *testing.T) string {
	t.Helper()
	rr := a.do(t, "POST", "/api/v1/projects", gin.H{
		"enterprise_name": "Acme",
		"project_name":    "Widget",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		Project domain.Project `json:"project"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Project.ID
}

func (a *testAPI) projectStatus(t *testing.T, id string) domain.Status {
	t.Helper()
	p, ok := a.store.projects[id]
	require.True(t, ok)
	return p.Status
}

func TestProjectCRUD(t *testing.T) {
	api := newTestAPI(t)

	id := api.createProject(t)
	assert.Equal(t, domain.StatusPendingReview, api.projectStatus(t, id))

	rr := api.do(t, "GET", "/api/v1/projects/"+id, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(t, "PUT", "/api/v1/projects/"+id, gin.H{
		"enterprise_name": "Acme Corp",
		"project_name":    "Widget v2",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(t, "GET", "/api/v1/projects", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Widget v2")

	rr = api.do(t, "DELETE", "/api/v1/projects/"+id, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(t, "GET", "/api/v1/projects/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProjectErrorMapping(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, "GET", "/api/v1/projects/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, "GET", "/api/v1/projects/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do(t, "POST", "/api/v1/projects", gin.H{"enterprise_name": "", "project_name": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	api.store.listErr = domain.ErrStoreUnavailable
	rr = api.do(t, "GET", "/api/v1/projects", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = api.do(t, "GET", "/api/v1/projects/statistics", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestScoreReplacementCompletesProject(t *testing.T) {
	api := newTestAPI(t)
	id := api.createProject(t)

	rr := api.do(t, "PUT", "/api/v1/projects/"+id+"/scores", gin.H{
		"dimensions": []gin.H{
			{"dimension": "team", "score": 25, "max_score": 30},
			{"dimension": "product", "score": 16, "max_score": 20},
			{"dimension": "market", "score": 17, "max_score": 20},
			{"dimension": "business_model", "score": 15, "max_score": 20},
			{"dimension": "finance", "score": 9, "max_score": 10},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Project domain.Project `json:"project"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, domain.StatusCompleted, resp.Project.Status)
	require.NotNil(t, resp.Project.TotalScore)
	assert.Equal(t, 82.0, *resp.Project.TotalScore)
	require.NotNil(t, resp.Project.ReviewResult)
	assert.Equal(t, service.RecommendExcellent, *resp.Project.ReviewResult)

	rr = api.do(t, "GET", "/api/v1/projects/"+id+"/scores/summary", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "full incubation")
}

func TestScoreValidationRejected(t *testing.T) {
	api := newTestAPI(t)
	id := api.createProject(t)

	rr := api.do(t, "PUT", "/api/v1/projects/"+id+"/scores", gin.H{
		"dimensions": []gin.H{
			{"dimension": "team", "score": 99, "max_score": 30},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, domain.StatusPendingReview, api.projectStatus(t, id))

	rr = api.do(t, "PUT", "/api/v1/projects/"+id+"/scores", gin.H{"dimensions": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestScoresSkeletonBeforeScoring(t *testing.T) {
	api := newTestAPI(t)
	id := api.createProject(t)

	rr := api.do(t, "GET", "/api/v1/projects/"+id+"/scores", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Dimensions []domain.DimensionScore `json:"dimensions"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Dimensions, 5)
	for _, d := range resp.Dimensions {
		assert.Zero(t, d.Score)
	}
}

func TestMissingInformationGatesCompletion(t *testing.T) {
	api := newTestAPI(t)
	id := api.createProject(t)

	// Flag a gap, then score: the project must stay gated on needs_info.
	rr := api.do(t, "POST", "/api/v1/projects/"+id+"/missing-information", gin.H{
		"dimension":        "finance",
		"information_type": "financial_statements",
		"description":      "last two fiscal years",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, domain.StatusNeedsInfo, api.projectStatus(t, id))

	var created struct {
		MissingInformation domain.MissingInformation `json:"missing_information"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = api.do(t, "PUT", "/api/v1/projects/"+id+"/scores", gin.H{
		"dimensions": []gin.H{
			{"dimension": "team", "score": 25, "max_score": 30},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.StatusNeedsInfo, api.projectStatus(t, id))

	// Resolving the last record completes the scored project.
	rr = api.do(t, "DELETE", "/api/v1/projects/"+id+"/missing-information/"+created.MissingInformation.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.StatusCompleted, api.projectStatus(t, id))
}

func TestMissingInformationValidation(t *testing.T) {
	api := newTestAPI(t)
	id := api.createProject(t)

	rr := api.do(t, "POST", "/api/v1/projects/"+id+"/missing-information", gin.H{
		"dimension":        "charisma",
		"information_type": "x",
		"description":      "y",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, "DELETE", "/api/v1/projects/"+id+"/missing-information/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func uploadRequest(t *testing.T, path, fileName, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = io.Copy(fw, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestBusinessPlanUpload(t *testing.T) {
	api := newTestAPI(t)
	id := api.createProject(t)

	req := uploadRequest(t, "/api/v1/projects/"+id+"/business-plans", "plan.pdf", "%PDF-1.7 content")
	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	// Wait for the background pipeline's terminal write.
	select {
	case <-api.done:
	case <-time.After(5 * time.Second):
		t.Fatal("ingestion never finished")
	}

	assert.Equal(t, domain.StatusPendingReview, api.projectStatus(t, id))

	statusRR := api.do(t, "GET", "/api/v1/projects/"+id+"/business-plans/status", nil)
	require.Equal(t, http.StatusOK, statusRR.Code)
	assert.Contains(t, statusRR.Body.String(), domain.PlanCompleted)
}

func TestBusinessPlanUploadRejectsNonPDF(t *testing.T) {
	api := newTestAPI(t)
	id := api.createProject(t)

	req := uploadRequest(t, "/api/v1/projects/"+id+"/business-plans", "plan.docx", "word doc")
	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, domain.StatusPendingReview, api.projectStatus(t, id))
}

func TestBusinessPlanStatusWithoutUpload(t *testing.T) {
	api := newTestAPI(t)
	id := api.createProject(t)

	rr := api.do(t, "GET", "/api/v1/projects/"+id+"/business-plans/status", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do(t, "GET", "/api/v1/projects/"+id+"/business-plans/proposal", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
