package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/AntoDono/utmostatmos-app/internal/core/port"
	"github.com/AntoDono/utmostatmos-app/internal/infra/config"
	"github.com/AntoDono/utmostatmos-app/internal/infra/database"
	kafkainfra "github.com/AntoDono/utmostatmos-app/internal/infra/kafka"
	"github.com/AntoDono/utmostatmos-app/internal/infra/logger"
	redisinfra "github.com/AntoDono/utmostatmos-app/internal/infra/redis"
	"github.com/AntoDono/utmostatmos-app/internal/infra/security"
	"github.com/AntoDono/utmostatmos-app/internal/infra/telemetry"
	postgresrepo "github.com/AntoDono/utmostatmos-app/internal/repository/postgres"
	redisrepo "github.com/AntoDono/utmostatmos-app/internal/repository/redis"
	"github.com/AntoDono/utmostatmos-app/internal/transport/http/middleware"
	"github.com/AntoDono/utmostatmos-app/internal/transport/http/routes"
	"github.com/AntoDono/utmostatmos-app/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	tracer *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tracer, err := telemetry.Attach(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	if cfg.Postgres.MigrateOnStart {
		if err := database.RunMigrations(ctx, pool, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	verifier, err := security.NewRemoteVerifier(security.RemoteVerifierConfig{
		Issuer:       cfg.OIDC.Issuer,
		Audience:     cfg.OIDC.Audience,
		EmailClaim:   cfg.OIDC.EmailClaim,
		HTTPTimeout:  cfg.OIDC.HTTPTimeout,
		JWKSCacheTTL: cfg.OIDC.JWKSCacheTTL,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init token verifier: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "atmos:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	leaderboardCache := redisrepo.NewLeaderboardCache(redisClient.Client(), redisrepo.LeaderboardCacheConfig{
		KeyPrefix: cfg.Redis.LeaderboardPrefix,
	})

	sessionService := usecase.NewSessionService(repos.Sessions, repos.Users, usecase.SessionConfig{
		TTL:        cfg.Session.TTL,
		TokenBytes: cfg.Session.TokenBytes,
	})
	accountService := usecase.NewAccountService(repos.Users, sessionService, eventPublisher, log, usecase.AccountConfig{
		PasswordMinLength: cfg.Session.PasswordMinLength,
		BcryptCost:        cfg.Session.BcryptCost,
	})
	identityService := usecase.NewIdentityService(repos.Users, eventPublisher, log)
	leaderboardService := usecase.NewLeaderboardService(repos.Users, leaderboardCache, log, usecase.LeaderboardConfig{
		CacheTTL: cfg.Redis.LeaderboardTTL,
	})
	quizService := usecase.NewQuizService(repos.Quizzes, repos.Users, leaderboardService, eventPublisher, log)
	contestService := usecase.NewContestService(repos.Contests)
	trackerService := usecase.NewTrackerService(repos.Trackers)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{
		Namespace: cfg.Telemetry.MetricsNamespace,
	})
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Verifier:    verifier,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Accounts:    accountService,
			Sessions:    sessionService,
			Identity:    identityService,
			Quizzes:     quizService,
			Contests:    contestService,
			Trackers:    trackerService,
			Leaderboard: leaderboardService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		tracer: tracer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := a.tracer.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("tracer shutdown failed", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
