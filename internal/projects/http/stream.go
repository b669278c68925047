package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/events"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/logger"
)

const keepAliveInterval = 15 * time.Second

// streamEvents pushes version changes of one project using Server-Sent Events.
// The stream ends when the client leaves or the project is deleted.
func (h *Handler) streamEvents(c *gin.Context) {
	projectID := c.Param("id")
	ctx := c.Request.Context()

	project, err := h.projects.GetProject(ctx, projectID)
	if err != nil {
		h.writeError(c, err, messages{})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	sub, cancel, err := h.events.Subscribe(ctx, projectID)
	if err != nil {
		h.writeError(c, err, messages{})
		return
	}
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering
	c.Status(http.StatusOK)

	h.writeSSE(c, "initial", gin.H{"project": project})
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case evt, ok := <-sub:
			if !ok {
				return
			}
			h.writeSSE(c, string(evt.Type), evt)
			flusher.Flush()
			if evt.Type == events.ProjectDeleted {
				return
			}
		}
	}
}

func (h *Handler) writeSSE(c *gin.Context, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.For(c.Request.Context(), h.log).Warn("failed to encode event", zap.Error(err))
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data)
}
