package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pitchai/pitchai-backend/internal/review/domain"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"project not found", domain.ErrProjectNotFound, http.StatusNotFound},
		{"plan not found", domain.ErrPlanNotFound, http.StatusNotFound},
		{"validation", fmt.Errorf("%w: only PDF files are supported", domain.ErrValidation), http.StatusBadRequest},
		{"score out of range", domain.ErrScoreOutOfRange, http.StatusBadRequest},
		{"conflict", fmt.Errorf("%w: 55P03", domain.ErrConflict), http.StatusConflict},
		{"store unavailable", fmt.Errorf("%w: count projects: timeout", domain.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)

			respondError(c, tt.err)

			assert.Equal(t, tt.want, rr.Code)
			assert.Contains(t, rr.Body.String(), `"ok":false`)
			assert.Contains(t, rr.Body.String(), `"error"`)
		})
	}
}
