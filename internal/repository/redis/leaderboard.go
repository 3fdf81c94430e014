package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/core/port"
)

// LeaderboardCacheConfig defines key naming for the cached leaderboard snapshot.
type LeaderboardCacheConfig struct {
	KeyPrefix string
}

// LeaderboardCache stores a JSON snapshot of the top scorers with a short TTL.
// The database stays the source of truth; the cache only absorbs read load.
type LeaderboardCache struct {
	client *redis.Client
	cfg    LeaderboardCacheConfig
}

// NewLeaderboardCache constructs a cache using the provided Redis client and config.
func NewLeaderboardCache(client *redis.Client, cfg LeaderboardCacheConfig) *LeaderboardCache {
	return &LeaderboardCache{client: client, cfg: cfg}
}

type cachedEntry struct {
	UserID           string  `json:"user_id"`
	FirstName        string  `json:"first_name"`
	LastName         *string `json:"last_name,omitempty"`
	LeaderboardScore int     `json:"leaderboard_score"`
}

// Get returns the cached snapshot, or (nil, nil) on a miss.
func (c *LeaderboardCache) Get(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	raw, err := c.client.Get(ctx, c.key()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get leaderboard: %w", err)
	}

	var cached []cachedEntry
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, fmt.Errorf("decode cached leaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(cached))
	for _, e := range cached {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:           e.UserID,
			FirstName:        e.FirstName,
			LastName:         e.LastName,
			LeaderboardScore: e.LeaderboardScore,
		})
	}

	return entries, nil
}

// Set stores the snapshot with the supplied TTL.
func (c *LeaderboardCache) Set(ctx context.Context, entries []domain.LeaderboardEntry, ttl time.Duration) error {
	cached := make([]cachedEntry, 0, len(entries))
	for _, e := range entries {
		cached = append(cached, cachedEntry{
			UserID:           e.UserID,
			FirstName:        e.FirstName,
			LastName:         e.LastName,
			LeaderboardScore: e.LeaderboardScore,
		})
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("encode leaderboard snapshot: %w", err)
	}

	if err := c.client.Set(ctx, c.key(), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set leaderboard: %w", err)
	}

	return nil
}

// Invalidate drops the cached snapshot so the next read refreshes from the database.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key()).Err(); err != nil {
		return fmt.Errorf("redis del leaderboard: %w", err)
	}
	return nil
}

func (c *LeaderboardCache) key() string {
	if c.cfg.KeyPrefix == "" {
		return "leaderboard:top"
	}
	return c.cfg.KeyPrefix + ":top"
}

var _ port.LeaderboardCache = (*LeaderboardCache)(nil)
