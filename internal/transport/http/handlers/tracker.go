package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/transport/http/middleware"
	"github.com/AntoDono/utmostatmos-app/internal/usecase"
)

// TrackerHandler serves mapped recycling-bin locations.
type TrackerHandler struct {
	trackers *usecase.TrackerService
}

// NewTrackerHandler constructs TrackerHandler.
func NewTrackerHandler(trackers *usecase.TrackerService) *TrackerHandler {
	return &TrackerHandler{trackers: trackers}
}

// RegisterRoutes binds tracker routes. Reads are public; writes are admin-only.
func (h *TrackerHandler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	r.GET("", h.list)
	r.GET("/:id", h.get)

	admin := r.Group("")
	admin.Use(auth, middleware.RequireRole(domain.RoleAdmin))
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.remove)
}

// List godoc
// @Summary List recycling-bin trackers
// @Tags Trackers
// @Produce json
// @Param type query string false "Filter by bin type"
// @Success 200 {array} TrackerResponse
// @Router /api/v1/trackers [get]
func (h *TrackerHandler) list(c *gin.Context) {
	trackers, err := h.trackers.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load trackers"))
		return
	}

	out := make([]TrackerResponse, 0, len(trackers))
	for _, tracker := range trackers {
		out = append(out, NewTrackerResponse(tracker))
	}
	c.JSON(http.StatusOK, out)
}

func (h *TrackerHandler) get(c *gin.Context) {
	tracker, err := h.trackers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrTrackerNotFound, Status: http.StatusNotFound, Message: usecase.ErrTrackerNotFound.Error()},
		}, http.StatusInternalServerError, "failed to load tracker")
		return
	}

	c.JSON(http.StatusOK, NewTrackerResponse(*tracker))
}

func trackerInput(req TrackerRequest) usecase.TrackerInput {
	input := usecase.TrackerInput{
		Type: req.Type,
		Name: req.Name,
	}
	if req.Longitude != nil {
		input.Longitude = *req.Longitude
	}
	if req.Latitude != nil {
		input.Latitude = *req.Latitude
	}
	return input
}

func (h *TrackerHandler) create(c *gin.Context) {
	var req TrackerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid tracker payload"))
		return
	}

	tracker, err := h.trackers.Create(c.Request.Context(), trackerInput(req))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, NewTrackerResponse(*tracker))
}

func (h *TrackerHandler) update(c *gin.Context) {
	var req TrackerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid tracker payload"))
		return
	}

	tracker, err := h.trackers.Update(c.Request.Context(), c.Param("id"), trackerInput(req))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrTrackerNotFound, Status: http.StatusNotFound, Message: usecase.ErrTrackerNotFound.Error()},
		}, http.StatusBadRequest, "failed to update tracker")
		return
	}

	c.JSON(http.StatusOK, NewTrackerResponse(*tracker))
}

func (h *TrackerHandler) remove(c *gin.Context) {
	if err := h.trackers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrTrackerNotFound, Status: http.StatusNotFound, Message: usecase.ErrTrackerNotFound.Error()},
		}, http.StatusInternalServerError, "failed to delete tracker")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "tracker deleted"})
}
