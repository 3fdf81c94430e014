package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/core/port"
	"github.com/AntoDono/utmostatmos-app/internal/infra/config"
	"github.com/AntoDono/utmostatmos-app/internal/repository"
	httproutes "github.com/AntoDono/utmostatmos-app/internal/transport/http/routes"
	"github.com/AntoDono/utmostatmos-app/internal/usecase"
)

type memUsers struct {
	users map[string]domain.User
}

func (m *memUsers) Create(_ context.Context, user domain.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByAuth0ID(_ context.Context, auth0ID string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Auth0ID != nil && *user.Auth0ID == auth0ID {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) UpdateProfile(_ context.Context, id string, update port.UserProfileUpdate) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = update.LastName
	}
	m.users[id] = user
	return &user, nil
}

func (m *memUsers) AddScore(_ context.Context, id string, points int) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user.LeaderboardScore += points
	m.users[id] = user
	return &user, nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUsers) TopByScore(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	entries := make([]domain.LeaderboardEntry, 0, len(m.users))
	for _, user := range m.users {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:           user.ID,
			FirstName:        user.FirstName,
			LastName:         user.LastName,
			LeaderboardScore: user.LeaderboardScore,
		})
	}
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[j].LeaderboardScore > entries[i].LeaderboardScore {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

type memSessions struct {
	sessions map[string]domain.Session
}

func (m *memSessions) Create(_ context.Context, session domain.Session) error {
	m.sessions[session.ID] = session
	return nil
}

func (m *memSessions) GetByToken(_ context.Context, token string) (*domain.Session, error) {
	for _, session := range m.sessions {
		if session.Token == token {
			s := session
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memSessions) Delete(_ context.Context, sessionID string) error {
	delete(m.sessions, sessionID)
	return nil
}

func (m *memSessions) DeleteByToken(_ context.Context, token string) error {
	for id, session := range m.sessions {
		if session.Token == token {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *memSessions) DeleteAllForUser(_ context.Context, userID string) (int, error) {
	count := 0
	for id, session := range m.sessions {
		if session.UserID == userID {
			delete(m.sessions, id)
			count++
		}
	}
	return count, nil
}

type memQuizzes struct {
	quizzes map[string]domain.BinQuiz
}

func (m *memQuizzes) Create(_ context.Context, quiz domain.BinQuiz) error {
	m.quizzes[quiz.ID] = quiz
	return nil
}

func (m *memQuizzes) GetByID(_ context.Context, id string) (*domain.BinQuiz, error) {
	quiz, ok := m.quizzes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &quiz, nil
}

func (m *memQuizzes) List(_ context.Context, limit int) ([]domain.BinQuiz, error) {
	quizzes := make([]domain.BinQuiz, 0, len(m.quizzes))
	for _, quiz := range m.quizzes {
		quizzes = append(quizzes, quiz)
	}
	if limit > 0 && len(quizzes) > limit {
		quizzes = quizzes[:limit]
	}
	return quizzes, nil
}

func (m *memQuizzes) Update(_ context.Context, quiz domain.BinQuiz) (*domain.BinQuiz, error) {
	if _, ok := m.quizzes[quiz.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	m.quizzes[quiz.ID] = quiz
	return &quiz, nil
}

func (m *memQuizzes) Delete(_ context.Context, id string) error {
	if _, ok := m.quizzes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.quizzes, id)
	return nil
}

type apiFixture struct {
	router *gin.Engine
	users  *memUsers
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &memUsers{users: map[string]domain.User{}}
	sessions := &memSessions{sessions: map[string]domain.Session{}}
	quizzes := &memQuizzes{quizzes: map[string]domain.BinQuiz{}}

	logger := zaptest.NewLogger(t)
	sessionSvc := usecase.NewSessionService(sessions, users, usecase.SessionConfig{})
	accountSvc := usecase.NewAccountService(users, sessionSvc, nil, nil, usecase.AccountConfig{BcryptCost: bcrypt.MinCost})
	identitySvc := usecase.NewIdentityService(users, nil, logger)
	leaderboardSvc := usecase.NewLeaderboardService(users, nil, logger, usecase.LeaderboardConfig{})
	quizSvc := usecase.NewQuizService(quizzes, users, leaderboardSvc, nil, nil)

	router := httproutes.Register(httproutes.Dependencies{
		Config: &config.AppConfig{App: config.AppSettings{Env: "test"}},
		Logger: logger,
		Services: httproutes.ServiceSet{
			Accounts:    accountSvc,
			Sessions:    sessionSvc,
			Identity:    identitySvc,
			Quizzes:     quizSvc,
			Leaderboard: leaderboardSvc,
		},
	})

	return &apiFixture{router: router, users: users}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewBuffer(raw)
	} else {
		payload = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func (f *apiFixture) signupAndLogin(t *testing.T, email string) string {
	t.Helper()

	rr := f.do(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email":      email,
		"password":   "pw123456",
		"first_name": "Jane",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", rr.Code, rr.Body.String())
	}

	rr = f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "pw123456",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func TestSignupResponseIsSanitized(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email":      "jane@example.com",
		"password":   "pw123456",
		"first_name": "Jane",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	for _, forbidden := range []string{"password_hash", "verification_token", "password_reset_token", "email_verified"} {
		if _, ok := body[forbidden]; ok {
			t.Fatalf("response must not carry %q", forbidden)
		}
	}
	if body["email"] != "jane@example.com" {
		t.Fatalf("unexpected email: %v", body["email"])
	}
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	f := newAPIFixture(t)

	payload := gin.H{"email": "jane@example.com", "password": "pw123456", "first_name": "Jane"}
	if rr := f.do(t, http.MethodPost, "/api/v1/auth/signup", "", payload); rr.Code != http.StatusCreated {
		t.Fatalf("first signup: %d", rr.Code)
	}
	if rr := f.do(t, http.MethodPost, "/api/v1/auth/signup", "", payload); rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAPIFixture(t)
	f.signupAndLogin(t, "jane@example.com")

	wrongPassword := f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "jane@example.com", "password": "incorrect1",
	})
	unknownEmail := f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "nobody@example.com", "password": "pw123456",
	})

	if wrongPassword.Code != http.StatusUnauthorized || unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401s, got %d and %d", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Fatalf("failure bodies must match: %s vs %s", wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestProfileRoundTrip(t *testing.T) {
	f := newAPIFixture(t)
	token := f.signupAndLogin(t, "jane@example.com")

	rr := f.do(t, http.MethodGet, "/api/v1/user/profile", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = f.do(t, http.MethodPut, "/api/v1/user/profile", token, gin.H{"first_name": "Janet"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["first_name"] != "Janet" {
		t.Fatalf("expected updated name, got %v", body["first_name"])
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newAPIFixture(t)
	token := f.signupAndLogin(t, "jane@example.com")

	if rr := f.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil); rr.Code != http.StatusOK {
		t.Fatalf("logout failed: %d", rr.Code)
	}

	if rr := f.do(t, http.MethodGet, "/api/v1/user/profile", token, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rr.Code)
	}
}

func TestQuizSubmitRejectsNegativePoints(t *testing.T) {
	f := newAPIFixture(t)
	token := f.signupAndLogin(t, "jane@example.com")

	rr := f.do(t, http.MethodPost, "/api/v1/quizzes/submit", token, gin.H{"points": -5})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}

	for _, user := range f.users.users {
		if user.LeaderboardScore != 0 {
			t.Fatalf("score must be untouched, got %d", user.LeaderboardScore)
		}
	}
}

func TestQuizSubmitAndLeaderboard(t *testing.T) {
	f := newAPIFixture(t)
	token := f.signupAndLogin(t, "jane@example.com")

	rr := f.do(t, http.MethodPost, "/api/v1/quizzes/submit", token, gin.H{"points": 15})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var submit struct {
		LeaderboardScore int `json:"leaderboard_score"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &submit); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if submit.LeaderboardScore != 15 {
		t.Fatalf("expected score 15, got %d", submit.LeaderboardScore)
	}

	rr = f.do(t, http.MethodGet, "/api/v1/leaderboard", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var board struct {
		Leaderboard []map[string]any `json:"leaderboard"`
		Count       int              `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &board); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if board.Count != 1 || len(board.Leaderboard) != 1 {
		t.Fatalf("expected one entry, got count %d", board.Count)
	}
}

func TestQuizAdminRoutesRejectRegularUsers(t *testing.T) {
	f := newAPIFixture(t)
	token := f.signupAndLogin(t, "jane@example.com")

	rr := f.do(t, http.MethodPost, "/api/v1/quizzes", token, gin.H{
		"item":    "Banana Peel",
		"choices": []string{"Compost", "Trash"},
		"answer":  "Compost",
	})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rr.Code, rr.Body.String())
	}
}
