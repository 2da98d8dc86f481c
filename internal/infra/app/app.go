package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lexaid/moderation-service/internal/core/domain"
	"github.com/lexaid/moderation-service/internal/core/port"
	"github.com/lexaid/moderation-service/internal/infra/config"
	"github.com/lexaid/moderation-service/internal/infra/database"
	kafkainfra "github.com/lexaid/moderation-service/internal/infra/kafka"
	"github.com/lexaid/moderation-service/internal/infra/logger"
	redisinfra "github.com/lexaid/moderation-service/internal/infra/redis"
	"github.com/lexaid/moderation-service/internal/infra/security"
	"github.com/lexaid/moderation-service/internal/infra/telemetry"
	postgresrepo "github.com/lexaid/moderation-service/internal/repository/postgres"
	redisrepo "github.com/lexaid/moderation-service/internal/repository/redis"
	"github.com/lexaid/moderation-service/internal/transport/http/middleware"
	"github.com/lexaid/moderation-service/internal/transport/http/routes"
	"github.com/lexaid/moderation-service/internal/usecase"
)

type Application struct {
	cfg     *config.AppConfig
	engine  *gin.Engine
	logger  *zap.Logger
	pool    *pgxpool.Pool
	redis   *redisinfra.Client
	sweeper *usecase.SuspensionSweeper
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	verifier, err := security.NewTokenVerifier(cfg.Auth)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token verifier: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	sanctionCache := redisrepo.NewSanctionCache(redisClient.Client(), cfg.Redis.SanctionPrefix)
	glossaryCache := redisrepo.NewGlossaryCache(redisClient.Client(), cfg.Redis.GlossaryPrefix)

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
		KeyPrefix: cfg.Redis.RateLimitPrefix,
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{
		Namespace: cfg.Telemetry.MetricsNamespace,
	})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	moderationMetrics, err := telemetry.NewModerationMetrics(cfg.Telemetry.MetricsNamespace, nil)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init moderation metrics: %w", err)
	}

	policy := domain.Policy{
		StrikeLimit:        cfg.Policy.StrikeLimit,
		SuspensionLimit:    cfg.Policy.SuspensionLimit,
		SuspensionDuration: cfg.Policy.SuspensionDuration,
	}
	if policy.StrikeLimit <= 0 || policy.SuspensionLimit <= 0 || policy.SuspensionDuration <= 0 {
		policy = domain.DefaultPolicy()
	}

	moderationService := usecase.NewModerationService(repos.Sanctions, sanctionCache, eventPublisher, policy, cfg.Redis.SanctionTTL).
		WithLogger(log).
		WithMetrics(moderationMetrics)
	auditService := usecase.NewAuditService(repos.Audit)
	glossaryService := usecase.NewGlossaryService(repos.Glossary, glossaryCache, cfg.Redis.GlossaryTTL).
		WithLogger(log)

	var sweeper *usecase.SuspensionSweeper
	if cfg.Sweeper.Enabled {
		sweeper = usecase.NewSuspensionSweeper(repos.Sanctions, moderationService, cfg.Sweeper.Interval, cfg.Sweeper.BatchSize).
			WithLogger(log)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Verifier:    verifier,
		Metrics:     httpMetrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Moderation: moderationService,
			Audit:      auditService,
			Glossary:   glossaryService,
		},
	})

	return &Application{
		cfg:     cfg,
		engine:  engine,
		logger:  log,
		pool:    pool,
		redis:   redisClient,
		sweeper: sweeper,
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

	if a.sweeper != nil {
		go a.sweeper.Run(ctx)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting moderation API",
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
