package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the externally visible view of an account. Password hashes
// and verification tokens never leave the service.
type UserResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         *string   `json:"last_name,omitempty"`
	Role             string    `json:"role"`
	LeaderboardScore int       `json:"leaderboard_score"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewUserResponse sanitizes a user record for transport.
func NewUserResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Role:             string(user.Role),
		LeaderboardScore: user.LeaderboardScore,
		CreatedAt:        user.CreatedAt,
	}
}

// SignupRequest defines the payload for legacy account creation.
type SignupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
}

// LoginRequest defines the payload for the legacy login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the opaque session token and the account it belongs
// to. Expiry and creation time stay server-side.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ProfileUpdateRequest carries a partial name update.
type ProfileUpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// QuizResponse is a bin-sorting question.
type QuizResponse struct {
	ID      string   `json:"id"`
	Item    string   `json:"item"`
	Choices []string `json:"choices"`
	Answer  string   `json:"answer"`
}

// NewQuizResponse converts a quiz record for transport.
func NewQuizResponse(quiz domain.BinQuiz) QuizResponse {
	return QuizResponse{
		ID:      quiz.ID,
		Item:    quiz.Item,
		Choices: quiz.Choices,
		Answer:  quiz.Answer,
	}
}

// QuizRequest defines the admin payload for creating or updating a quiz.
type QuizRequest struct {
	Item    string   `json:"item" binding:"required"`
	Choices []string `json:"choices" binding:"required"`
	Answer  string   `json:"answer" binding:"required"`
}

// QuizSubmitRequest carries the points earned in a completed quiz round.
type QuizSubmitRequest struct {
	Points *int `json:"points" binding:"required"`
}

// QuizListResponse wraps a quiz batch with its count and the applied limit.
type QuizListResponse struct {
	Quizzes []QuizResponse `json:"quizzes"`
	Count   int            `json:"count"`
	Limit   int            `json:"limit"`
}

// QuizSubmitResponse reports the account's score after crediting.
type QuizSubmitResponse struct {
	UserID           string `json:"user_id"`
	LeaderboardScore int    `json:"leaderboard_score"`
}

// ContestResponse is an environmental contest listing.
type ContestResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Organization string   `json:"organization"`
	Scope        string   `json:"scope,omitempty"`
	Grade        string   `json:"grade,omitempty"`
	Deadline     string   `json:"deadline"`
	Prize        string   `json:"prize,omitempty"`
	Description  string   `json:"description,omitempty"`
	Requirements []string `json:"requirements"`
}

// NewContestResponse converts a contest record for transport.
func NewContestResponse(contest domain.Contest) ContestResponse {
	requirements := contest.Requirements
	if requirements == nil {
		requirements = []string{}
	}
	return ContestResponse{
		ID:           contest.ID,
		Title:        contest.Title,
		Organization: contest.Organization,
		Scope:        contest.Scope,
		Grade:        contest.Grade,
		Deadline:     contest.Deadline,
		Prize:        contest.Prize,
		Description:  contest.Description,
		Requirements: requirements,
	}
}

// ContestRequest defines the admin payload for creating or updating a contest.
type ContestRequest struct {
	Title        string   `json:"title" binding:"required"`
	Organization string   `json:"organization" binding:"required"`
	Scope        string   `json:"scope"`
	Grade        string   `json:"grade"`
	Deadline     string   `json:"deadline" binding:"required"`
	Prize        string   `json:"prize"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
}

// TrackerResponse is a mapped recycling-bin location.
type TrackerResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// NewTrackerResponse converts a tracker record for transport.
func NewTrackerResponse(tracker domain.Tracker) TrackerResponse {
	return TrackerResponse{
		ID:        tracker.ID,
		Type:      tracker.Type,
		Name:      tracker.Name,
		Longitude: tracker.Longitude,
		Latitude:  tracker.Latitude,
	}
}

// TrackerRequest defines the admin payload for creating or updating a tracker.
type TrackerRequest struct {
	Type      string   `json:"type" binding:"required"`
	Name      string   `json:"name" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
}

// LeaderboardEntryResponse is one public leaderboard row.
type LeaderboardEntryResponse struct {
	UserID           string  `json:"user_id"`
	FirstName        string  `json:"first_name"`
	LastName         *string `json:"last_name,omitempty"`
	LeaderboardScore int     `json:"leaderboard_score"`
}

// LeaderboardResponse wraps the public leaderboard rows with their count.
type LeaderboardResponse struct {
	Leaderboard []LeaderboardEntryResponse `json:"leaderboard"`
	Count       int                        `json:"count"`
}

// NewLeaderboardResponse converts leaderboard rows for transport.
func NewLeaderboardResponse(entries []domain.LeaderboardEntry) LeaderboardResponse {
	rows := make([]LeaderboardEntryResponse, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, LeaderboardEntryResponse{
			UserID:           entry.UserID,
			FirstName:        entry.FirstName,
			LastName:         entry.LastName,
			LeaderboardScore: entry.LeaderboardScore,
		})
	}
	return LeaderboardResponse{Leaderboard: rows, Count: len(rows)}
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
