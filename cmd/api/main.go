package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/fidelipromo/loyalty-service/internal/api/http"
	"github.com/fidelipromo/loyalty-service/internal/api/http/handlers"
	"github.com/fidelipromo/loyalty-service/internal/auth"
	"github.com/fidelipromo/loyalty-service/internal/config"
	"github.com/fidelipromo/loyalty-service/internal/events"
	"github.com/fidelipromo/loyalty-service/internal/observability"
	"github.com/fidelipromo/loyalty-service/internal/persistence"
	"github.com/fidelipromo/loyalty-service/internal/repository"
	"github.com/fidelipromo/loyalty-service/internal/service"
	"github.com/fidelipromo/loyalty-service/internal/session"
	"github.com/fidelipromo/loyalty-service/internal/worker"
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
	identityRepo := repository.NewIdentityRepository(pool)
	businessRepo := repository.NewBusinessRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	ledgerRepo := repository.NewLedgerRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	sessions := session.NewRedisStore(redis.Client, cfg.Session.TTL())
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	contextService := service.NewContextService(membershipRepo, customerRepo, sessions, logger)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		IdentityRepo:      identityRepo,
		BusinessRepo:      businessRepo,
		MembershipRepo:    membershipRepo,
		CustomerRepo:      customerRepo,
		PasswordResetRepo: resetRepo,
		Contexts:          contextService,
		Sessions:          sessions,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	teamService := service.NewTeamService(membershipRepo, identityRepo, dispatcher, logger)
	businessService := service.NewBusinessService(businessRepo, customerRepo, ledgerRepo, dispatcher, logger)
	customerService := service.NewCustomerService(customerRepo, ledgerRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), identityRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, contextService),
		Team:           handlers.NewTeamHandler(teamService),
		Business:       handlers.NewBusinessHandler(businessService),
		Customer:       handlers.NewCustomerHandler(customerService),
		AuthMiddleware: authMiddleware,
		Sessions:       sessions,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
