package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/requestdata"
	"github.com/praxislabs/execemy-backend/internal/services"
)

type DashboardHandler struct {
	log              *logger.Logger
	dashboardService services.DashboardService
}

func NewDashboardHandler(log *logger.Logger, dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		log:              log.With("handler", "DashboardHandler"),
		dashboardService: dashboardService,
	}
}

// GET /api/dashboard
func (dh *DashboardHandler) GetDashboard(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	data, err := dh.dashboardService.Assemble(c.Request.Context(), rd.UserID)
	if err != nil {
		dh.log.Error("Dashboard assembly failed", "error", err, "user_id", rd.UserID)
		RespondError(c, http.StatusInternalServerError, "dashboard_failed", err)
		return
	}
	RespondOK(c, data)
}

// GET /api/roadmap
func (dh *DashboardHandler) GetRoadmap(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	roadmap, err := dh.dashboardService.Roadmap(c.Request.Context(), rd.UserID)
	if err != nil {
		dh.log.Error("Roadmap build failed", "error", err, "user_id", rd.UserID)
		RespondError(c, http.StatusInternalServerError, "roadmap_failed", err)
		return
	}
	RespondOK(c, gin.H{"roadmap": roadmap})
}
