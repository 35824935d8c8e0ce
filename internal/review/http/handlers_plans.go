package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) uploadPlan(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "no file provided"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable file"})
		return
	}
	defer src.Close()

	bp, err := h.ingest.Upload(c.Request.Context(), c.Param("id"), file.Filename, file.Size, src)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "business_plan": bp})
}

func (h *Handler) planStatus(c *gin.Context) {
	bp, err := h.ingest.LatestPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "business_plan": bp})
}

func (h *Handler) downloadPlan(c *gin.Context) {
	path, fileName, err := h.ingest.PlanFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, fileName)
}

func (h *Handler) planProposal(c *gin.Context) {
	proposal, err := h.ingest.Proposal(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if proposal == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "no proposal available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "proposal": proposal})
}
