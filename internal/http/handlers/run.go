package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pixelbuddy-backend/internal/http/response"
	"github.com/yungbote/pixelbuddy-backend/internal/services"
)

type RunHandler struct {
	dashboard services.DashboardService
}

func NewRunHandler(dashboard services.DashboardService) *RunHandler {
	return &RunHandler{dashboard: dashboard}
}

// GET /api/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	run, err := h.dashboard.GetRun(c.Request.Context(), id)
	if err != nil {
		respondReadError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"run": run})
}
