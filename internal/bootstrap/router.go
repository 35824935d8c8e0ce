package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/pitchai/pitchai-backend/internal/api/http"
	"github.com/pitchai/pitchai-backend/internal/api/http/middleware"
	"github.com/pitchai/pitchai-backend/internal/ingest/llm"
	ingestrepo "github.com/pitchai/pitchai-backend/internal/ingest/repository"
	ingestsvc "github.com/pitchai/pitchai-backend/internal/ingest/service"
	reviewhttp "github.com/pitchai/pitchai-backend/internal/review/http"
	"github.com/pitchai/pitchai-backend/internal/review/repository"
	"github.com/pitchai/pitchai-backend/internal/review/rubric"
	"github.com/pitchai/pitchai-backend/internal/review/service"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *pgxpool.Pool
	Redis       *redis.Client
	Files       ingestsvc.FileStorage
	UploadDir   string
	Extractor   ingestsvc.Extractor
	Evaluator   ingestsvc.Evaluator // nil disables AI evaluation
	Rubric      *rubric.Rubric
	IngestTO    time.Duration
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())
	r.Use(middleware.RequestID())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis, dep.UploadDir)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	projectRepo := repository.NewProjectRepository(dep.DB)
	scoreRepo := repository.NewScoreRepository(dep.DB)
	planRepo := repository.NewPlanRepository(dep.DB)
	infoRepo := repository.NewMissingInfoRepository(dep.DB)

	var progress ingestsvc.Progress
	if dep.Redis != nil {
		progress = ingestrepo.NewProgressRepository(dep.Redis)
	}

	projectSvc := service.NewProjectService(projectRepo)
	scoreSvc := service.NewScoreService(dep.Rubric, scoreRepo, projectRepo)
	infoSvc := service.NewMissingInfoService(dep.Rubric, infoRepo, projectRepo)
	ingestService := ingestsvc.New(planRepo, projectRepo, dep.Files, dep.Extractor, dep.Evaluator, progress, dep.Rubric, dep.IngestTO)

	reviewhttp.Register(api, projectSvc, scoreSvc, infoSvc, ingestService)

	return r
}

// NewEvaluator wires the DeepSeek client, or nil when disabled.
func NewEvaluator(enabled bool, baseURL, apiKey, model string) ingestsvc.Evaluator {
	if !enabled {
		return nil
	}
	return llm.NewDeepSeek(baseURL, apiKey, model)
}
