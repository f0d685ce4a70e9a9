package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/middleware"
	"github.com/mrhexvel/ezgu/internal/service"
	"github.com/mrhexvel/ezgu/internal/stats"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	now              func() time.Time
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, now: time.Now}
}

func periodQuery(c *gin.Context) (stats.Period, bool) {
	period, err := stats.ParsePeriod(c.Query("period"), stats.Monthly)
	if err != nil {
		BadRequest(c, service.ErrInvalidInput.Code, err.Error())
		return "", false
	}
	return period, true
}

// GET /dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	period, ok := periodQuery(c)
	if !ok {
		return
	}
	data, err := h.dashboardService.Dashboard(c.Request.Context(), middleware.GetCurrentUser(c), period, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, "stats", data)
}

// GET /admin/stats
func (h *DashboardHandler) AdminStats(c *gin.Context) {
	period, ok := periodQuery(c)
	if !ok {
		return
	}
	data, err := h.dashboardService.AdminStats(c.Request.Context(), period, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, "stats", data)
}
