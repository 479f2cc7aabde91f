package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/praxislabs/execemy-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusBadRequest, "profile_failed", err)
		return
	}
	RespondOK(c, gin.H{"me": me})
}

func (uh *UserHandler) UpdateProfile(c *gin.Context) {
	var update services.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	me, err := uh.userService.UpdateProfile(c.Request.Context(), update)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "profile_update_failed", err)
		return
	}
	RespondOK(c, gin.H{"me": me})
}
