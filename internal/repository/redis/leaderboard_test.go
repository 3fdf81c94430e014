package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestLeaderboardCache_SetAndGet(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewLeaderboardCache(client, LeaderboardCacheConfig{KeyPrefix: "atmos:leaderboard"})

	ctx := context.Background()
	last := "Doe"
	entries := []domain.LeaderboardEntry{
		{UserID: "user-1", FirstName: "Jane", LastName: &last, LeaderboardScore: 50},
		{UserID: "user-2", FirstName: "Sam", LeaderboardScore: 30},
	}

	if err := cache.Set(ctx, entries, time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	got, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].UserID != "user-1" || got[0].LeaderboardScore != 50 {
		t.Fatalf("unexpected first entry: %+v", got[0])
	}
	if got[0].LastName == nil || *got[0].LastName != "Doe" {
		t.Fatalf("unexpected last name: %v", got[0].LastName)
	}
	if got[1].LastName != nil {
		t.Fatalf("expected nil last name, got %v", got[1].LastName)
	}
}

func TestLeaderboardCache_GetMissReturnsNil(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewLeaderboardCache(client, LeaderboardCacheConfig{KeyPrefix: "atmos:leaderboard"})

	got, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil on miss, got %v", got)
	}
}

func TestLeaderboardCache_TTLExpiry(t *testing.T) {
	client, server := newTestRedis(t)
	cache := NewLeaderboardCache(client, LeaderboardCacheConfig{KeyPrefix: "atmos:leaderboard"})

	ctx := context.Background()
	entries := []domain.LeaderboardEntry{{UserID: "user-1", FirstName: "Jane", LeaderboardScore: 50}}

	if err := cache.Set(ctx, entries, 30*time.Second); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	server.FastForward(31 * time.Second)

	got, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil after TTL expiry, got %v", got)
	}
}

func TestLeaderboardCache_Invalidate(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewLeaderboardCache(client, LeaderboardCacheConfig{KeyPrefix: "atmos:leaderboard"})

	ctx := context.Background()
	entries := []domain.LeaderboardEntry{{UserID: "user-1", FirstName: "Jane", LeaderboardScore: 50}}

	if err := cache.Set(ctx, entries, time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate returned error: %v", err)
	}

	got, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil after invalidation, got %v", got)
	}
}
