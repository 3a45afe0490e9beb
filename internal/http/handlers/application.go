package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pixelbuddy-backend/internal/http/response"
	"github.com/yungbote/pixelbuddy-backend/internal/services"
)

type ApplicationHandler struct {
	dashboard services.DashboardService
}

func NewApplicationHandler(dashboard services.DashboardService) *ApplicationHandler {
	return &ApplicationHandler{dashboard: dashboard}
}

// GET /api/applications
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	apps, err := h.dashboard.ListApplications(c.Request.Context())
	if err != nil {
		respondReadError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"applications": apps})
}

// GET /api/applications/:id
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	app, err := h.dashboard.GetApplication(c.Request.Context(), id)
	if err != nil {
		respondReadError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"application": app})
}

// GET /api/applications/:id/runs?limit=&offset=
func (h *ApplicationHandler) ListRuns(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	runs, err := h.dashboard.ListRuns(c.Request.Context(), id, limit, offset)
	if err != nil {
		respondReadError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"runs": runs})
}
