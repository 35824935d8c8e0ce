package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pitchai/pitchai-backend/internal/review/domain"
)

type projectReq struct {
	EnterpriseName string  `json:"enterprise_name"`
	ProjectName    string  `json:"project_name"`
	Description    *string `json:"description"`
}

type scoreUpdateReq struct {
	Dimensions []domain.DimensionScore `json:"dimensions"`
}

type missingInfoReq struct {
	Dimension       string `json:"dimension"`
	InformationType string `json:"information_type"`
	Description     string `json:"description"`
}

// respondError maps domain errors onto HTTP statuses. Every error body
// carries ok=false and a human-readable message.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrPlanNotFound),
		errors.Is(err, domain.ErrInfoNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrUnknownDimension),
		errors.Is(err, domain.ErrDuplicateDimension),
		errors.Is(err, domain.ErrRubricMismatch),
		errors.Is(err, domain.ErrScoreOutOfRange),
		errors.Is(err, domain.ErrEmptyScoreSet):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ok": false, "error": err.Error()})
}
