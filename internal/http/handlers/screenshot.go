package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pixelbuddy-backend/internal/http/response"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
	"github.com/yungbote/pixelbuddy-backend/internal/services"
)

type ScreenshotHandler struct {
	log       *logger.Logger
	dashboard services.DashboardService
}

func NewScreenshotHandler(log *logger.Logger, dashboard services.DashboardService) *ScreenshotHandler {
	return &ScreenshotHandler{
		log:       log.With("handler", "ScreenshotHandler"),
		dashboard: dashboard,
	}
}

// GET /api/screenshots/:id
func (h *ScreenshotHandler) GetScreenshot(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	shot, err := h.dashboard.GetScreenshot(c.Request.Context(), id)
	if err != nil {
		respondReadError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"screenshot": shot})
}

// POST /api/screenshots/:id/baseline
func (h *ScreenshotHandler) PromoteToBaseline(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	baseline, err := h.dashboard.PromoteToBaseline(c.Request.Context(), id)
	if err != nil {
		h.log.Warn("promote to baseline failed", "screenshot_id", id, "error", err)
		respondReadError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"baseline": baseline})
}
