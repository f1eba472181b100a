package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/session-service/internal/api/http"
	"github.com/spec-kit/session-service/internal/api/http/handlers"
	"github.com/spec-kit/session-service/internal/api/operations"
	"github.com/spec-kit/session-service/internal/api/rpc"
	"github.com/spec-kit/session-service/internal/auth"
	"github.com/spec-kit/session-service/internal/config"
	"github.com/spec-kit/session-service/internal/events"
	"github.com/spec-kit/session-service/internal/observability"
	"github.com/spec-kit/session-service/internal/persistence"
	"github.com/spec-kit/session-service/internal/repository"
	"github.com/spec-kit/session-service/internal/service"
	"github.com/spec-kit/session-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var limiter auth.AttemptLimiter = auth.NoopLimiter{}
	var redis *persistence.Redis
	if cfg.Auth.SignInMaxAttempts > 0 {
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		limiter = auth.NewRedisLimiter(redis.Client, cfg.Auth.SignInMaxAttempts, cfg.Auth.SignInWindow())
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	pool := pg.PoolHandle()
	sessions := service.NewSessionService(*cfg, service.SessionDependencies{
		AdminRepo:  repository.NewAdminRepository(pool),
		UserRepo:   repository.NewUserRepository(pool),
		Passwords:  auth.BcryptVerifier{},
		Limiter:    limiter,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	metrics := observability.NewMetrics()
	router := operations.NewRouter(sessions, metrics, logger)

	server, err := rpc.Dial(cfg.Broker, router, logger)
	if err != nil {
		logger.Fatal("failed to connect broker", zap.Error(err))
	}
	defer server.Close() //nolint:errcheck

	go func() {
		if err := server.Serve(ctx); err != nil {
			logger.Fatal("rpc serve", zap.Error(err))
		}
	}()

	var app *fiber.App
	if cfg.App.HTTPEnabled {
		deps := map[string]handlers.Pinger{"postgres": pg}
		if redis != nil {
			deps["redis"] = redis
		}

		app = fiber.New(fiber.Config{DisableStartupMessage: true})
		httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())
		httptransport.RegisterRoutes(app, httptransport.RouteConfig{
			Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, deps),
			Sessions: handlers.NewSessionHandler(router),
			Core:     sessions,
		})

		go func() {
			if err := app.Listen(cfg.App.Addr()); err != nil && !errors.Is(err, context.Canceled) {
				logger.Fatal("fiber listen", zap.Error(err))
			}
		}()
	}

	logger.Info("session service started", zap.String("queue", cfg.Broker.Queue), zap.Bool("http", cfg.App.HTTPEnabled))
	waitForShutdown(logger)

	cancel()
	if app != nil {
		_ = app.Shutdown()
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
