package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/transport/http/middleware"
	"github.com/AntoDono/utmostatmos-app/internal/usecase"
)

const (
	defaultQuizListLimit = 10
	maxQuizListLimit     = 100
)

// QuizHandler serves bin-sorting quizzes and scores submissions.
type QuizHandler struct {
	quizzes *usecase.QuizService
}

// NewQuizHandler constructs QuizHandler.
func NewQuizHandler(quizzes *usecase.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// RegisterRoutes binds quiz routes. Listing is public; submission requires the
// auth middleware provided by the caller; content changes are admin-only.
func (h *QuizHandler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	r.GET("", h.list)
	r.POST("/submit", auth, h.submit)

	admin := r.Group("")
	admin.Use(auth, middleware.RequireRole(domain.RoleAdmin))
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.remove)
}

// List godoc
// @Summary List bin-sorting quizzes
// @Tags Quizzes
// @Produce json
// @Param limit query int false "Maximum quizzes to return"
// @Success 200 {array} QuizResponse
// @Router /api/v1/quizzes [get]
func (h *QuizHandler) list(c *gin.Context) {
	limit := defaultQuizListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	if limit > maxQuizListLimit {
		limit = maxQuizListLimit
	}

	quizzes, err := h.quizzes.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load quizzes"))
		return
	}

	out := make([]QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		out = append(out, NewQuizResponse(quiz))
	}
	c.JSON(http.StatusOK, QuizListResponse{
		Quizzes: out,
		Count:   len(out),
		Limit:   limit,
	})
}

// Submit godoc
// @Summary Credit quiz points to the authenticated account
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param request body QuizSubmitRequest true "Submission payload"
// @Success 200 {object} QuizSubmitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/quizzes/submit [post]
func (h *QuizHandler) submit(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req QuizSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Points == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid submission payload"))
		return
	}

	user, err := h.quizzes.Submit(c.Request.Context(), userID, *req.Points)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNegativePoints, Status: http.StatusBadRequest, Message: usecase.ErrNegativePoints.Error()},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: usecase.ErrUserNotFound.Error()},
		}, http.StatusInternalServerError, "failed to record submission")
		return
	}

	c.JSON(http.StatusOK, QuizSubmitResponse{
		UserID:           user.ID,
		LeaderboardScore: user.LeaderboardScore,
	})
}

func (h *QuizHandler) create(c *gin.Context) {
	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid quiz payload"))
		return
	}

	quiz, err := h.quizzes.Create(c.Request.Context(), usecase.QuizInput{
		Item:    req.Item,
		Choices: req.Choices,
		Answer:  req.Answer,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, NewQuizResponse(*quiz))
}

func (h *QuizHandler) update(c *gin.Context) {
	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid quiz payload"))
		return
	}

	quiz, err := h.quizzes.Update(c.Request.Context(), c.Param("id"), usecase.QuizInput{
		Item:    req.Item,
		Choices: req.Choices,
		Answer:  req.Answer,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrQuizNotFound, Status: http.StatusNotFound, Message: usecase.ErrQuizNotFound.Error()},
		}, http.StatusBadRequest, "failed to update quiz")
		return
	}

	c.JSON(http.StatusOK, NewQuizResponse(*quiz))
}

func (h *QuizHandler) remove(c *gin.Context) {
	if err := h.quizzes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrQuizNotFound, Status: http.StatusNotFound, Message: usecase.ErrQuizNotFound.Error()},
		}, http.StatusInternalServerError, "failed to delete quiz")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "quiz deleted"})
}
