package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/services"
)

type DebriefHandler struct {
	log            *logger.Logger
	scoringService services.ScoringService
}

func NewDebriefHandler(log *logger.Logger, scoringService services.ScoringService) *DebriefHandler {
	return &DebriefHandler{
		log:            log.With("handler", "DebriefHandler"),
		scoringService: scoringService,
	}
}

type submitDebriefRequest struct {
	CaseID  string             `json:"case_id" binding:"required"`
	Summary string             `json:"summary"`
	Scores  map[string]float64 `json:"scores"`
}

// POST /api/debriefs
func (dh *DebriefHandler) SubmitDebrief(c *gin.Context) {
	var req submitDebriefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	debrief, err := dh.scoringService.SubmitDebrief(c.Request.Context(), req.CaseID, req.Summary, req.Scores)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "debrief_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"debrief": debrief})
}
