package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
)

func TestLeaderboardTopPrefersCache(t *testing.T) {
	users := newFakeUserRepository()
	cache := &fakeLeaderboardCache{
		entries: []domain.LeaderboardEntry{{UserID: "cached", LeaderboardScore: 99}},
	}
	svc := NewLeaderboardService(users, cache, nil, LeaderboardConfig{})

	// The store holds different data so a fallthrough would be visible.
	seedUser(t, users, domain.User{ID: "user-1", Email: "jane@example.com", LeaderboardScore: 10})

	entries, err := svc.Top(context.Background())
	if err != nil {
		t.Fatalf("Top returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].UserID != "cached" {
		t.Fatalf("expected the cached snapshot, got %+v", entries)
	}
	if cache.setCalls != 0 {
		t.Fatalf("expected no cache writes on a hit, got %d", cache.setCalls)
	}
}

func TestLeaderboardTopPopulatesCacheOnMiss(t *testing.T) {
	users := newFakeUserRepository()
	cache := &fakeLeaderboardCache{}
	svc := NewLeaderboardService(users, cache, nil, LeaderboardConfig{})

	seedUser(t, users, domain.User{ID: "user-1", Email: "jane@example.com", LeaderboardScore: 10})
	seedUser(t, users, domain.User{ID: "user-2", Email: "john@example.com", LeaderboardScore: 25})

	entries, err := svc.Top(context.Background())
	if err != nil {
		t.Fatalf("Top returned error: %v", err)
	}
	if len(entries) != 2 || entries[0].UserID != "user-2" {
		t.Fatalf("expected highest scorer first, got %+v", entries)
	}
	if cache.setCalls != 1 {
		t.Fatalf("expected one cache write, got %d", cache.setCalls)
	}
}

func TestLeaderboardTopDegradesOnCacheFailure(t *testing.T) {
	users := newFakeUserRepository()
	cache := &fakeLeaderboardCache{getErr: errors.New("connection refused")}
	svc := NewLeaderboardService(users, cache, nil, LeaderboardConfig{})

	seedUser(t, users, domain.User{ID: "user-1", Email: "jane@example.com", LeaderboardScore: 10})

	entries, err := svc.Top(context.Background())
	if err != nil {
		t.Fatalf("Top returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].UserID != "user-1" {
		t.Fatalf("expected the database read to serve the request, got %+v", entries)
	}
}

func TestLeaderboardTopRespectsLimit(t *testing.T) {
	users := newFakeUserRepository()
	svc := NewLeaderboardService(users, nil, nil, LeaderboardConfig{Limit: 2})

	seedUser(t, users, domain.User{ID: "user-1", Email: "a@example.com", LeaderboardScore: 10})
	seedUser(t, users, domain.User{ID: "user-2", Email: "b@example.com", LeaderboardScore: 25})
	seedUser(t, users, domain.User{ID: "user-3", Email: "c@example.com", LeaderboardScore: 15})

	entries, err := svc.Top(context.Background())
	if err != nil {
		t.Fatalf("Top returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}
}
