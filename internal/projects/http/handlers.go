package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (h *Handler) generate(c *gin.Context) {
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		badRequest(c, "Prompt is required and must be a non-empty string")
		return
	}

	res, err := h.gen.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		h.writeError(c, err, messages{})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"projectId":     res.ProjectID,
		"versionId":     res.Version.ID,
		"versionNumber": res.Version.VersionNumber,
		"generatedHtml": res.Version.GeneratedHTML,
		"message":       "Website generated successfully!",
	})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.projects.ListAll(c.Request.Context())
	if err != nil {
		h.writeError(c, err, messages{})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": items})
}

func (h *Handler) get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		badRequest(c, "Project ID is required")
		return
	}

	p, err := h.projects.GetProject(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, messages{})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	ok, err := h.projects.DeleteProject(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, messages{})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) revise(c *gin.Context) {
	var req reviseReq
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.ProjectID) == "" || req.RevisionPrompt == "" || strings.TrimSpace(req.BaseVersionID) == "" {
		badRequest(c, "Project ID, revision prompt, and base version ID are required")
		return
	}
	if strings.TrimSpace(req.RevisionPrompt) == "" {
		badRequest(c, "Revision prompt must be a non-empty string")
		return
	}

	res, err := h.gen.Revise(c.Request.Context(), req.ProjectID, req.RevisionPrompt, req.BaseVersionID)
	if err != nil {
		h.writeError(c, err, messages{generation: "Failed to generate website revision. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"versionId":     res.Version.ID,
		"versionNumber": res.Version.VersionNumber,
		"generatedHtml": res.Version.GeneratedHTML,
		"message":       "Website revision generated successfully!",
	})
}

func (h *Handler) switchVersion(c *gin.Context) {
	var req switchReq
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.ProjectID) == "" || strings.TrimSpace(req.VersionID) == "" {
		badRequest(c, "Project ID and version ID are required")
		return
	}

	v, err := h.projects.SwitchVersion(c.Request.Context(), req.ProjectID, req.VersionID)
	if err != nil {
		h.writeError(c, err, messages{versionNotFound: "Version not found or does not belong to this project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"versionId":     v.ID,
		"versionNumber": v.VersionNumber,
		"message":       fmt.Sprintf("Switched to version %d", v.VersionNumber),
	})
}

func (h *Handler) deploy(c *gin.Context) {
	var req deployReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ProjectID) == "" {
		badRequest(c, "Project ID is required")
		return
	}

	d, err := h.deployer.Deploy(c.Request.Context(), req.ProjectID, strings.TrimSpace(req.VersionID))
	if err != nil {
		h.writeError(c, err, messages{})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"deploymentUrl": d.URL,
		"versionId":     d.VersionID,
		"versionNumber": d.VersionNumber,
		"message":       fmt.Sprintf("Website v%d deployed successfully!", d.VersionNumber),
	})
}
