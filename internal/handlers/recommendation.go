package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/requestdata"
	"github.com/praxislabs/execemy-backend/internal/services"
)

type RecommendationHandler struct {
	log    *logger.Logger
	recSvc services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, recSvc services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		log:    log.With("handler", "RecommendationHandler"),
		recSvc: recSvc,
	}
}

// GET /api/recommendations
func (rh *RecommendationHandler) GetRecommendations(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	rec, err := rh.recSvc.GetSmartRecommendations(c.Request.Context(), rd.UserID)
	if err != nil {
		rh.log.Warn("Recommendations failed", "error", err, "user_id", rd.UserID)
		RespondError(c, http.StatusInternalServerError, "recommendations_failed", err)
		return
	}
	RespondOK(c, rec)
}
