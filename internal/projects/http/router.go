package http

import "github.com/gin-gonic/gin"

// Register attaches the site routes to rg. The model-backed routes take
// limit as extra middleware when it is non-nil.
func (h *Handler) Register(rg gin.IRoutes, limit gin.HandlerFunc) {
	guarded := func(hf gin.HandlerFunc) []gin.HandlerFunc {
		if limit == nil {
			return []gin.HandlerFunc{hf}
		}
		return []gin.HandlerFunc{limit, hf}
	}

	rg.POST("/generate", guarded(h.generate)...)
	rg.GET("/generate", h.list)
	rg.POST("/revise", guarded(h.revise)...)
	rg.POST("/switch-version", h.switchVersion)
	rg.POST("/deploy", h.deploy)

	rg.GET("/project/:id", h.get)
	rg.DELETE("/project/:id", h.delete)
	rg.GET("/project/:id/events", h.streamEvents)
}
