package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AntoDono/utmostatmos-app/internal/usecase"
)

// LeaderboardHandler serves the public top-scorers projection.
type LeaderboardHandler struct {
	leaderboard *usecase.LeaderboardService
}

// NewLeaderboardHandler constructs LeaderboardHandler.
func NewLeaderboardHandler(leaderboard *usecase.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// RegisterRoutes binds the leaderboard route.
func (h *LeaderboardHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.top)
}

// Top godoc
// @Summary Fetch the public leaderboard
// @Tags Leaderboard
// @Produce json
// @Success 200 {array} LeaderboardEntryResponse
// @Router /api/v1/leaderboard [get]
func (h *LeaderboardHandler) top(c *gin.Context) {
	entries, err := h.leaderboard.Top(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load leaderboard"))
		return
	}

	c.JSON(http.StatusOK, NewLeaderboardResponse(entries))
}
