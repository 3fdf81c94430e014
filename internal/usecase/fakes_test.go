package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/core/port"
	"github.com/AntoDono/utmostatmos-app/internal/repository"
)

type fakeUserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User

	createErr   error
	createCalls int
	// createHook runs before each insert, letting tests inject races.
	createHook func()
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]domain.User{}}
}

func (f *fakeUserRepository) Create(_ context.Context, user domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.createHook != nil {
		f.createHook()
	}
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
		if existing.Auth0ID != nil && user.Auth0ID != nil && *existing.Auth0ID == *user.Auth0ID {
			return repository.ErrDuplicate
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (f *fakeUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepository) GetByAuth0ID(_ context.Context, auth0ID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Auth0ID != nil && *user.Auth0ID == auth0ID {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepository) UpdateProfile(_ context.Context, id string, update port.UserProfileUpdate) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = update.LastName
	}
	f.users[id] = user
	return &user, nil
}

func (f *fakeUserRepository) AddScore(_ context.Context, id string, points int) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user.LeaderboardScore += points
	f.users[id] = user
	return &user, nil
}

func (f *fakeUserRepository) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepository) TopByScore(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries := make([]domain.LeaderboardEntry, 0, len(f.users))
	for _, user := range f.users {
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

var _ port.UserRepository = (*fakeUserRepository)(nil)

type fakeSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]domain.Session

	deleteCalls int
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{sessions: map[string]domain.Session{}}
}

func (f *fakeSessionRepository) Create(_ context.Context, session domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepository) GetByToken(_ context.Context, token string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, session := range f.sessions {
		if session.Token == token {
			s := session
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSessionRepository) Delete(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	delete(f.sessions, sessionID)
	return nil
}

func (f *fakeSessionRepository) DeleteByToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	for id, session := range f.sessions {
		if session.Token == token {
			delete(f.sessions, id)
			return nil
		}
	}
	return nil
}

func (f *fakeSessionRepository) DeleteAllForUser(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for id, session := range f.sessions {
		if session.UserID == userID {
			delete(f.sessions, id)
			count++
		}
	}
	return count, nil
}

var _ port.SessionRepository = (*fakeSessionRepository)(nil)

type fakeEventPublisher struct {
	mu          sync.Mutex
	publishErr  error
	provisioned []domain.UserProvisionedEvent
	deleted     []domain.UserDeletedEvent
	submitted   []domain.QuizSubmittedEvent
}

func (f *fakeEventPublisher) PublishUserProvisioned(_ context.Context, event domain.UserProvisionedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.provisioned = append(f.provisioned, event)
	return nil
}

func (f *fakeEventPublisher) PublishUserDeleted(_ context.Context, event domain.UserDeletedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.deleted = append(f.deleted, event)
	return nil
}

func (f *fakeEventPublisher) PublishQuizSubmitted(_ context.Context, event domain.QuizSubmittedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.submitted = append(f.submitted, event)
	return nil
}

var _ port.EventPublisher = (*fakeEventPublisher)(nil)

type fakeLeaderboardCache struct {
	mu          sync.Mutex
	entries     []domain.LeaderboardEntry
	getErr      error
	setCalls    int
	invalidated int
}

func (f *fakeLeaderboardCache) Get(_ context.Context) ([]domain.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.entries, nil
}

func (f *fakeLeaderboardCache) Set(_ context.Context, entries []domain.LeaderboardEntry, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	f.entries = entries
	return nil
}

func (f *fakeLeaderboardCache) Invalidate(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	f.entries = nil
	return nil
}

var _ port.LeaderboardCache = (*fakeLeaderboardCache)(nil)

type fakeQuizRepository struct {
	mu      sync.Mutex
	quizzes map[string]domain.BinQuiz
}

func newFakeQuizRepository() *fakeQuizRepository {
	return &fakeQuizRepository{quizzes: map[string]domain.BinQuiz{}}
}

func (f *fakeQuizRepository) Create(_ context.Context, quiz domain.BinQuiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quizzes[quiz.ID] = quiz
	return nil
}

func (f *fakeQuizRepository) GetByID(_ context.Context, id string) (*domain.BinQuiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	quiz, ok := f.quizzes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &quiz, nil
}

func (f *fakeQuizRepository) List(_ context.Context, limit int) ([]domain.BinQuiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	quizzes := make([]domain.BinQuiz, 0, len(f.quizzes))
	for _, quiz := range f.quizzes {
		quizzes = append(quizzes, quiz)
	}
	if limit > 0 && len(quizzes) > limit {
		quizzes = quizzes[:limit]
	}
	return quizzes, nil
}

func (f *fakeQuizRepository) Update(_ context.Context, quiz domain.BinQuiz) (*domain.BinQuiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.quizzes[quiz.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	f.quizzes[quiz.ID] = quiz
	return &quiz, nil
}

func (f *fakeQuizRepository) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.quizzes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.quizzes, id)
	return nil
}

var _ port.QuizRepository = (*fakeQuizRepository)(nil)
