package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AntoDono/utmostatmos-app/internal/core/port"
	"github.com/AntoDono/utmostatmos-app/internal/transport/http/middleware"
	"github.com/AntoDono/utmostatmos-app/internal/usecase"
)

// ProfileHandler exposes the authenticated account's own record.
type ProfileHandler struct {
	accounts *usecase.AccountService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(accounts *usecase.AccountService) *ProfileHandler {
	return &ProfileHandler{accounts: accounts}
}

// RegisterRoutes binds profile routes. The group is expected to carry an auth
// middleware already.
func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profile", h.getProfile)
	r.PUT("/profile", h.updateProfile)
	r.DELETE("/profile", h.deleteAccount)
}

// GetProfile godoc
// @Summary Fetch the authenticated account
// @Tags Profile
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/user/profile [get]
func (h *ProfileHandler) getProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, NewUserResponse(*user))
}

// UpdateProfile godoc
// @Summary Apply a partial name update to the authenticated account
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body ProfileUpdateRequest true "Profile update payload"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/user/profile [put]
func (h *ProfileHandler) updateProfile(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile payload"))
		return
	}

	user, err := h.accounts.UpdateProfile(c.Request.Context(), userID, port.UserProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: usecase.ErrUserNotFound.Error()},
		}, http.StatusBadRequest, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, NewUserResponse(*user))
}

// DeleteAccount godoc
// @Summary Delete the authenticated account and revoke its sessions
// @Tags Profile
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/user/profile [delete]
func (h *ProfileHandler) deleteAccount(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.accounts.DeleteAccount(c.Request.Context(), userID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: usecase.ErrUserNotFound.Error()},
		}, http.StatusInternalServerError, "failed to delete account")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "account deleted"})
}
