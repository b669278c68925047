package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/deploy"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/generation"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/logger"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/domain"
)

const msgInternal = "Internal server error"

// messages overrides the client-facing text for one endpoint.
type messages struct {
	generation      string
	versionNotFound string
}

// writeError maps err onto a status code and a message that is safe to show.
// Detail for 500s stays in the log.
func (h *Handler) writeError(c *gin.Context, err error, m messages) {
	log := logger.For(c.Request.Context(), h.log).With(zap.String("route", c.FullPath()))

	var genErr *generation.GenerationError
	var pubErr *deploy.PublishError

	switch {
	case errors.As(err, &genErr):
		log.Error("generation failed", zap.String("version_id", genErr.VersionID), zap.Error(err))
		msg := m.generation
		if msg == "" {
			msg = "Failed to generate website. Please try again."
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})

	case errors.As(err, &pubErr):
		log.Error("deployment failed", zap.String("target", pubErr.Target), zap.Error(err))
		msg := pubErr.Error()
		if strings.TrimSpace(msg) == "" {
			msg = "Failed to deploy website. Please try again."
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})

	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, deploy.ErrNoContentToPublish):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No HTML content to deploy"})

	case errors.Is(err, domain.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})

	case errors.Is(err, domain.ErrBaseVersionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Base version not found"})

	case errors.Is(err, domain.ErrVersionNotFound):
		msg := m.versionNotFound
		if msg == "" {
			msg = "Version not found"
		}
		c.JSON(http.StatusNotFound, gin.H{"error": msg})

	default:
		log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
