package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/AntoDono/utmostatmos-app/internal/core/port"
	"github.com/AntoDono/utmostatmos-app/internal/infra/config"
	"github.com/AntoDono/utmostatmos-app/internal/transport/http/handlers"
	"github.com/AntoDono/utmostatmos-app/internal/transport/http/middleware"
	"github.com/AntoDono/utmostatmos-app/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Accounts    *usecase.AccountService
	Sessions    *usecase.SessionService
	Identity    *usecase.IdentityService
	Quizzes     *usecase.QuizService
	Contests    *usecase.ContestService
	Trackers    *usecase.TrackerService
	Leaderboard *usecase.LeaderboardService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Verifier    port.TokenVerifier
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if len(deps.Config.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	}
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireIdentity(deps.Services.Sessions, deps.Verifier, deps.Services.Identity)

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authHandler := handlers.NewAuthHandler(deps.Services.Accounts, deps.Services.Sessions)
		authHandler.RegisterRoutes(authGroup,
			buildRateLimit(deps, "auth_signup_ip", deps.Config.RateLimit.SignupMaxAttempts),
			buildRateLimit(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts),
		)

		userGroup := api.Group("/user")
		userGroup.Use(authMiddleware)
		profileHandler := handlers.NewProfileHandler(deps.Services.Accounts)
		profileHandler.RegisterRoutes(userGroup)

		quizHandler := handlers.NewQuizHandler(deps.Services.Quizzes)
		quizHandler.RegisterRoutes(api.Group("/quizzes"), authMiddleware)

		contestHandler := handlers.NewContestHandler(deps.Services.Contests)
		contestHandler.RegisterRoutes(api.Group("/contests"), authMiddleware)

		trackerHandler := handlers.NewTrackerHandler(deps.Services.Trackers)
		trackerHandler.RegisterRoutes(api.Group("/trackers"), authMiddleware)

		leaderboardHandler := handlers.NewLeaderboardHandler(deps.Services.Leaderboard)
		leaderboardHandler.RegisterRoutes(api.Group("/leaderboard"))
	}

	return r
}

func buildRateLimit(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
