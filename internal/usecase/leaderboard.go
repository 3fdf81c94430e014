package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/core/port"
)

const (
	defaultLeaderboardLimit = 10
	defaultLeaderboardTTL   = 30 * time.Second
)

// LeaderboardConfig tunes leaderboard reads.
type LeaderboardConfig struct {
	Limit    int
	CacheTTL time.Duration
}

// LeaderboardService serves the public top-scorers projection through a
// read-through cache. Cache failures degrade to database reads.
type LeaderboardService struct {
	users  port.UserRepository
	cache  port.LeaderboardCache
	logger *zap.Logger
	cfg    LeaderboardConfig
}

// NewLeaderboardService constructs a leaderboard service.
func NewLeaderboardService(users port.UserRepository, cache port.LeaderboardCache, logger *zap.Logger, cfg LeaderboardConfig) *LeaderboardService {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLeaderboardLimit
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultLeaderboardTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardService{users: users, cache: cache, logger: logger, cfg: cfg}
}

// Top returns the highest scorers, preferring the cached snapshot.
func (s *LeaderboardService) Top(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("leaderboard cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	entries, err := s.users.TopByScore(ctx, s.cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, entries, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("leaderboard cache write failed", zap.Error(err))
		}
	}

	return entries, nil
}

// Invalidate drops the cached snapshot after a score change.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("leaderboard cache invalidation failed", zap.Error(err))
	}
}
