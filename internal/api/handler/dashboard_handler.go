package handler

import (
	"github.com/gin-gonic/gin"

	"visa-consultancy/backend/internal/service"
	"visa-consultancy/backend/pkg/response"
)

// DashboardHandler statistics snapshot
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler creates a DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// GetStatistics recomputes every figure on each call
// GET /api/v1/dashboard
func (h *DashboardHandler) GetStatistics(c *gin.Context) {
	stats, err := h.dashboardSvc.GetStatistics(c.Request.Context())
	if err != nil {
		respondError(c, 19000, err)
		return
	}

	response.OK(c, stats)
}
