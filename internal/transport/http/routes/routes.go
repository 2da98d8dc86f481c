package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lexaid/moderation-service/internal/infra/config"
	"github.com/lexaid/moderation-service/internal/infra/security"
	"github.com/lexaid/moderation-service/internal/transport/http/handlers"
	"github.com/lexaid/moderation-service/internal/transport/http/middleware"
	"github.com/lexaid/moderation-service/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Moderation *usecase.ModerationService
	Audit      *usecase.AuditService
	Glossary   *usecase.GlossaryService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	Verifier    *security.TokenVerifier
	Metrics     *middleware.HTTPMetrics
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
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

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

	adminAuth := middleware.RequireAdmin(deps.Verifier, deps.Config.Auth.AdminRole)

	api := r.Group("/api/v1")
	{
		glossaryHandler := handlers.NewGlossaryHandler(deps.Services.Glossary)

		publicGlossary := api.Group("/glossary")
		if mw := readRateLimit(deps); mw != nil {
			publicGlossary.Use(mw)
		}
		glossaryHandler.RegisterPublicRoutes(publicGlossary)

		adminGlossary := api.Group("/glossary")
		adminGlossary.Use(adminAuth)
		glossaryHandler.RegisterAdminRoutes(adminGlossary)

		moderationHandler := handlers.NewModerationHandler(deps.Services.Moderation, deps.Services.Audit)

		users := api.Group("/users")
		users.Use(adminAuth)
		if mw := actionRateLimit(deps); mw != nil {
			users.Use(mw)
		}
		moderationHandler.RegisterRoutes(users)

		sanctions := api.Group("/sanctions")
		sanctions.Use(adminAuth)
		moderationHandler.RegisterSanctionRoutes(sanctions)
	}

	return r
}

func actionRateLimit(deps Dependencies) gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.ActionMaxAttempts
	if limit <= 0 {
		return nil
	}

	return deps.RateLimiter.RateLimit(middleware.RateLimitRule{
		Name:       "moderation-actions",
		Limit:      limit,
		Window:     deps.Config.RateLimit.WindowDuration,
		Identifier: middleware.ClientIPIdentifier(),
	})
}

func readRateLimit(deps Dependencies) gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.ReadMaxAttempts
	if limit <= 0 {
		return nil
	}

	return deps.RateLimiter.RateLimit(middleware.RateLimitRule{
		Name:       "glossary-reads",
		Limit:      limit,
		Window:     deps.Config.RateLimit.WindowDuration,
		Identifier: middleware.ClientIPIdentifier(),
	})
}
