package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/BerkantGC/hotel-booking-api/internal/api/http"
	"github.com/BerkantGC/hotel-booking-api/internal/api/http/handlers"
	"github.com/BerkantGC/hotel-booking-api/internal/auth"
	"github.com/BerkantGC/hotel-booking-api/internal/config"
	"github.com/BerkantGC/hotel-booking-api/internal/observability"
	"github.com/BerkantGC/hotel-booking-api/internal/persistence"
	"github.com/BerkantGC/hotel-booking-api/internal/realtime"
	"github.com/BerkantGC/hotel-booking-api/internal/repository"
	"github.com/BerkantGC/hotel-booking-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store connectivity at boot is the one fatal condition the gateway
	// allows; everything after this point degrades per request instead.
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	subjectRepo := repository.NewSubjectRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	metrics := observability.NewMetrics()
	verifier := auth.NewTokenVerifier(cfg.Auth.JWTSecret, subjectRepo, cfg.Realtime.StoreTimeout())
	authService := service.NewAuthService(verifier, logger)

	registry := realtime.NewRegistry()
	presence := realtime.NewPresence(redis.Client, cfg.Realtime.PresenceTTL(), logger)
	hub := realtime.NewHub(registry, notificationRepo, presence, metrics, logger, cfg.Realtime.StoreTimeout())

	// Refresh well inside the key TTL so live subjects never expire out of
	// the mirror.
	go hub.RefreshPresence(cfg.Realtime.PresenceTTL() / 3)

	dispatchService := service.NewDispatchService(cfg.Internal.Secret, registry, metrics, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Notify: handlers.NewNotifyHandler(dispatchService),
		Token:  handlers.NewTokenHandler(authService),
		Socket: handlers.NewSocketHandler(authService, hub, logger),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	hub.Shutdown()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
