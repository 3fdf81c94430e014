package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/transport/http/middleware"
	"github.com/AntoDono/utmostatmos-app/internal/usecase"
)

// ContestHandler serves environmental contest listings.
type ContestHandler struct {
	contests *usecase.ContestService
}

// NewContestHandler constructs ContestHandler.
func NewContestHandler(contests *usecase.ContestService) *ContestHandler {
	return &ContestHandler{contests: contests}
}

// RegisterRoutes binds contest routes. Reads are public; writes are admin-only.
func (h *ContestHandler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	r.GET("", h.list)
	r.GET("/:id", h.get)

	admin := r.Group("")
	admin.Use(auth, middleware.RequireRole(domain.RoleAdmin))
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.remove)
}

// List godoc
// @Summary List contest listings
// @Tags Contests
// @Produce json
// @Success 200 {array} ContestResponse
// @Router /api/v1/contests [get]
func (h *ContestHandler) list(c *gin.Context) {
	contests, err := h.contests.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load contests"))
		return
	}

	out := make([]ContestResponse, 0, len(contests))
	for _, contest := range contests {
		out = append(out, NewContestResponse(contest))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ContestHandler) get(c *gin.Context) {
	contest, err := h.contests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrContestNotFound, Status: http.StatusNotFound, Message: usecase.ErrContestNotFound.Error()},
		}, http.StatusInternalServerError, "failed to load contest")
		return
	}

	c.JSON(http.StatusOK, NewContestResponse(*contest))
}

func contestInput(req ContestRequest) usecase.ContestInput {
	return usecase.ContestInput{
		Title:        req.Title,
		Organization: req.Organization,
		Scope:        req.Scope,
		Grade:        req.Grade,
		Deadline:     req.Deadline,
		Prize:        req.Prize,
		Description:  req.Description,
		Requirements: req.Requirements,
	}
}

func (h *ContestHandler) create(c *gin.Context) {
	var req ContestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid contest payload"))
		return
	}

	contest, err := h.contests.Create(c.Request.Context(), contestInput(req))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, NewContestResponse(*contest))
}

func (h *ContestHandler) update(c *gin.Context) {
	var req ContestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid contest payload"))
		return
	}

	contest, err := h.contests.Update(c.Request.Context(), c.Param("id"), contestInput(req))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrContestNotFound, Status: http.StatusNotFound, Message: usecase.ErrContestNotFound.Error()},
		}, http.StatusBadRequest, "failed to update contest")
		return
	}

	c.JSON(http.StatusOK, NewContestResponse(*contest))
}

func (h *ContestHandler) remove(c *gin.Context) {
	if err := h.contests.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrContestNotFound, Status: http.StatusNotFound, Message: usecase.ErrContestNotFound.Error()},
		}, http.StatusInternalServerError, "failed to delete contest")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "contest deleted"})
}
