package http

import (
	"github.com/gin-gonic/gin"

	ingestsvc "github.com/pitchai/pitchai-backend/internal/ingest/service"
	"github.com/pitchai/pitchai-backend/internal/review/service"
)

// Handler serves the review API: projects, scores, missing information, and
// business plan uploads.
type Handler struct {
	projects *service.ProjectService
	scores   *service.ScoreService
	infos    *service.MissingInfoService
	ingest   *ingestsvc.Service
}

// Register mounts all review routes on the group.
func Register(rg *gin.RouterGroup, projects *service.ProjectService, scores *service.ScoreService, infos *service.MissingInfoService, ingest *ingestsvc.Service) {
	h := &Handler{projects: projects, scores: scores, infos: infos, ingest: ingest}

	rg.GET("/projects/statistics", h.statistics)
	rg.GET("/projects", h.listProjects)
	rg.POST("/projects", h.createProject)
	rg.GET("/projects/:id", h.getProject)
	rg.PUT("/projects/:id", h.updateProject)
	rg.DELETE("/projects/:id", h.deleteProject)

	rg.GET("/projects/:id/scores", h.getScores)
	rg.PUT("/projects/:id/scores", h.replaceScores)
	rg.GET("/projects/:id/scores/summary", h.scoreSummary)

	rg.GET("/projects/:id/missing-information", h.listMissingInfo)
	rg.POST("/projects/:id/missing-information", h.addMissingInfo)
	rg.DELETE("/projects/:id/missing-information/:info_id", h.removeMissingInfo)

	rg.POST("/projects/:id/business-plans", h.uploadPlan)
	rg.GET("/projects/:id/business-plans/status", h.planStatus)
	rg.GET("/projects/:id/business-plans/download", h.downloadPlan)
	rg.GET("/projects/:id/business-plans/proposal", h.planProposal)
}
