package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getScores(c *gin.Context) {
	dims, err := h.scores.ProjectScores(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "dimensions": dims})
}

func (h *Handler) replaceScores(c *gin.Context) {
	var req scoreUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.scores.ReplaceScores(c.Request.Context(), c.Param("id"), req.Dimensions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) scoreSummary(c *gin.Context) {
	summary, err := h.scores.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
