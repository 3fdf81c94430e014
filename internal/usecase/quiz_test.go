package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
)

func TestQuizSubmitCreditsScore(t *testing.T) {
	users := newFakeUserRepository()
	cache := &fakeLeaderboardCache{}
	events := &fakeEventPublisher{}
	leaderboard := NewLeaderboardService(users, cache, nil, LeaderboardConfig{})
	svc := NewQuizService(newFakeQuizRepository(), users, leaderboard, events, nil)

	seedUser(t, users, domain.User{ID: "user-1", Email: "jane@example.com", LeaderboardScore: 30})

	user, err := svc.Submit(context.Background(), "user-1", 10)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if user.LeaderboardScore != 40 {
		t.Fatalf("expected score 40, got %d", user.LeaderboardScore)
	}
	if cache.invalidated != 1 {
		t.Fatalf("expected one cache invalidation, got %d", cache.invalidated)
	}
	if len(events.submitted) != 1 {
		t.Fatalf("expected one submission event, got %d", len(events.submitted))
	}
	if events.submitted[0].NewScore != 40 {
		t.Fatalf("expected event score 40, got %d", events.submitted[0].NewScore)
	}
}

func TestQuizSubmitSucceedsWhenPublishFails(t *testing.T) {
	users := newFakeUserRepository()
	events := &fakeEventPublisher{publishErr: errors.New("broker unavailable")}
	svc := NewQuizService(newFakeQuizRepository(), users, nil, events, nil)

	seedUser(t, users, domain.User{ID: "user-1", Email: "jane@example.com", LeaderboardScore: 30})

	user, err := svc.Submit(context.Background(), "user-1", 5)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if user.LeaderboardScore != 35 {
		t.Fatalf("expected score 35, got %d", user.LeaderboardScore)
	}
}

func TestQuizSubmitZeroPointsIsValid(t *testing.T) {
	users := newFakeUserRepository()
	svc := NewQuizService(newFakeQuizRepository(), users, nil, nil, nil)

	seedUser(t, users, domain.User{ID: "user-1", Email: "jane@example.com", LeaderboardScore: 30})

	user, err := svc.Submit(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if user.LeaderboardScore != 30 {
		t.Fatalf("expected unchanged score, got %d", user.LeaderboardScore)
	}
}

func TestQuizSubmitRejectsNegativePointsBeforeMutation(t *testing.T) {
	users := newFakeUserRepository()
	cache := &fakeLeaderboardCache{}
	events := &fakeEventPublisher{}
	leaderboard := NewLeaderboardService(users, cache, nil, LeaderboardConfig{})
	svc := NewQuizService(newFakeQuizRepository(), users, leaderboard, events, nil)

	seedUser(t, users, domain.User{ID: "user-1", Email: "jane@example.com", LeaderboardScore: 30})

	_, err := svc.Submit(context.Background(), "user-1", -5)
	if !errors.Is(err, ErrNegativePoints) {
		t.Fatalf("expected ErrNegativePoints, got %v", err)
	}

	user, err := users.GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if user.LeaderboardScore != 30 {
		t.Fatalf("expected untouched score, got %d", user.LeaderboardScore)
	}
	if cache.invalidated != 0 {
		t.Fatalf("expected no cache invalidation, got %d", cache.invalidated)
	}
	if len(events.submitted) != 0 {
		t.Fatalf("expected no events, got %d", len(events.submitted))
	}
}

func TestQuizSubmitUnknownUser(t *testing.T) {
	svc := NewQuizService(newFakeQuizRepository(), newFakeUserRepository(), nil, nil, nil)

	if _, err := svc.Submit(context.Background(), "missing", 5); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestQuizInputValidation(t *testing.T) {
	svc := NewQuizService(newFakeQuizRepository(), newFakeUserRepository(), nil, nil, nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		input QuizInput
	}{
		{"missing item", QuizInput{Choices: []string{"Recycling", "Trash"}, Answer: "Trash"}},
		{"single choice", QuizInput{Item: "Banana Peel", Choices: []string{"Compost"}, Answer: "Compost"}},
		{"answer not a choice", QuizInput{Item: "Banana Peel", Choices: []string{"Recycling", "Trash"}, Answer: "Compost"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.input); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	quiz, err := svc.Create(ctx, QuizInput{
		Item:    "Banana Peel",
		Choices: []string{"Recycling", "Compost", "Trash"},
		Answer:  "Compost",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if quiz.ID == "" {
		t.Fatal("expected a generated quiz id")
	}
}

func TestQuizUpdateUnknownID(t *testing.T) {
	svc := NewQuizService(newFakeQuizRepository(), newFakeUserRepository(), nil, nil, nil)

	_, err := svc.Update(context.Background(), "missing", QuizInput{
		Item:    "Glass Bottle",
		Choices: []string{"Recycling", "Trash"},
		Answer:  "Recycling",
	})
	if !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}
