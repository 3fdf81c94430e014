package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// TokenSourceFunc supplies the bearer token for authenticated calls. A nil
// source leaves requests unauthenticated.
type TokenSourceFunc func(ctx context.Context) (string, error)

// Error is a non-2xx response decoded from the service's error body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// User mirrors the service's sanitized account view.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         *string   `json:"last_name,omitempty"`
	Role             string    `json:"role"`
	LeaderboardScore int       `json:"leaderboard_score"`
	CreatedAt        time.Time `json:"created_at"`
}

// ProfileUpdate is a partial name update; nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// Quiz is one bin-sorting question.
type Quiz struct {
	ID      string   `json:"id"`
	Item    string   `json:"item"`
	Choices []string `json:"choices"`
	Answer  string   `json:"answer"`
}

// QuizList is a quiz batch with the limit the service applied.
type QuizList struct {
	Quizzes []Quiz `json:"quizzes"`
	Count   int    `json:"count"`
	Limit   int    `json:"limit"`
}

// QuizResult reports the account's score after a submission was credited.
type QuizResult struct {
	UserID           string `json:"user_id"`
	LeaderboardScore int    `json:"leaderboard_score"`
}

// Contest is an environmental contest listing.
type Contest struct {
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

// Tracker is a mapped recycling-bin location.
type Tracker struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// TrackerInput is the payload for creating or updating a tracker.
type TrackerInput struct {
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// LeaderboardEntry is one public leaderboard row.
type LeaderboardEntry struct {
	UserID           string  `json:"user_id"`
	FirstName        string  `json:"first_name"`
	LastName         *string `json:"last_name,omitempty"`
	LeaderboardScore int     `json:"leaderboard_score"`
}

// Leaderboard is the top scorers with their count.
type Leaderboard struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Count       int                `json:"count"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Client is a thin REST client for the service's versioned API.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSourceFunc
}

// New constructs a client for baseURL (scheme and host, no trailing path).
func New(baseURL string, token TokenSourceFunc) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
	}
}

// Profile fetches the caller's account.
func (c *Client) Profile(ctx context.Context) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/api/v1/user/profile", nil, &user, true)
	return user, err
}

// UpdateProfile applies a partial name update and returns the updated account.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error) {
	var user User
	err := c.do(ctx, http.MethodPut, "/api/v1/user/profile", update, &user, true)
	return user, err
}

// DeleteAccount removes the caller's account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	var msg messageResponse
	return c.do(ctx, http.MethodDelete, "/api/v1/user/profile", nil, &msg, true)
}

// Quizzes fetches up to limit questions; limit <= 0 uses the service default.
func (c *Client) Quizzes(ctx context.Context, limit int) (QuizList, error) {
	path := "/api/v1/quizzes"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var list QuizList
	err := c.do(ctx, http.MethodGet, path, nil, &list, false)
	return list, err
}

// SubmitQuiz credits points from a completed round to the caller's score.
func (c *Client) SubmitQuiz(ctx context.Context, points int) (QuizResult, error) {
	body := struct {
		Points int `json:"points"`
	}{Points: points}

	var result QuizResult
	err := c.do(ctx, http.MethodPost, "/api/v1/quizzes/submit", body, &result, true)
	return result, err
}

// Contests fetches all contest listings.
func (c *Client) Contests(ctx context.Context) ([]Contest, error) {
	var contests []Contest
	err := c.do(ctx, http.MethodGet, "/api/v1/contests", nil, &contests, false)
	return contests, err
}

// Trackers fetches bin locations, optionally filtered by bin type.
func (c *Client) Trackers(ctx context.Context, binType string) ([]Tracker, error) {
	path := "/api/v1/trackers"
	if binType != "" {
		path += "?type=" + url.QueryEscape(binType)
	}
	var trackers []Tracker
	err := c.do(ctx, http.MethodGet, path, nil, &trackers, false)
	return trackers, err
}

// CreateTracker registers a new bin location. Requires an admin account.
func (c *Client) CreateTracker(ctx context.Context, input TrackerInput) (Tracker, error) {
	var tracker Tracker
	err := c.do(ctx, http.MethodPost, "/api/v1/trackers", input, &tracker, true)
	return tracker, err
}

// UpdateTracker replaces a bin location. Requires an admin account.
func (c *Client) UpdateTracker(ctx context.Context, id string, input TrackerInput) (Tracker, error) {
	var tracker Tracker
	err := c.do(ctx, http.MethodPut, "/api/v1/trackers/"+url.PathEscape(id), input, &tracker, true)
	return tracker, err
}

// DeleteTracker removes a bin location. Requires an admin account.
func (c *Client) DeleteTracker(ctx context.Context, id string) error {
	var msg messageResponse
	return c.do(ctx, http.MethodDelete, "/api/v1/trackers/"+url.PathEscape(id), nil, &msg, true)
}

// Leaderboard fetches the public top scorers.
func (c *Client) Leaderboard(ctx context.Context) (Leaderboard, error) {
	var board Leaderboard
	err := c.do(ctx, http.MethodGet, "/api/v1/leaderboard", nil, &board, false)
	return board, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed && c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return fmt.Errorf("resolve bearer token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Message: body.Error}
}
