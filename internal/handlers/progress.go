package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/services"
)

type ProgressHandler struct {
	log             *logger.Logger
	progressService services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progressService services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:             log.With("handler", "ProgressHandler"),
		progressService: progressService,
	}
}

// POST /api/progress/lessons/:domainId/:moduleId/:lessonId/events
func (ph *ProgressHandler) RecordLessonEvent(c *gin.Context) {
	var event services.LessonEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	row, err := ph.progressService.RecordLessonEvent(
		c.Request.Context(),
		c.Param("domainId"),
		c.Param("moduleId"),
		c.Param("lessonId"),
		event,
	)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "lesson_event_failed", err)
		return
	}
	RespondOK(c, gin.H{"progress": row})
}

// POST /api/progress/simulations/:caseId/events
func (ph *ProgressHandler) RecordSimulationEvent(c *gin.Context) {
	var event services.SimulationEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	row, err := ph.progressService.RecordSimulationEvent(c.Request.Context(), c.Param("caseId"), event)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "simulation_event_failed", err)
		return
	}
	RespondOK(c, gin.H{"progress": row})
}
