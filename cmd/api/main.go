package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/abhi91543/noqgo/internal/api/http"
	"github.com/abhi91543/noqgo/internal/api/http/handlers"
	"github.com/abhi91543/noqgo/internal/auth"
	"github.com/abhi91543/noqgo/internal/config"
	"github.com/abhi91543/noqgo/internal/events"
	"github.com/abhi91543/noqgo/internal/observability"
	"github.com/abhi91543/noqgo/internal/payments"
	"github.com/abhi91543/noqgo/internal/persistence"
	"github.com/abhi91543/noqgo/internal/queue"
	"github.com/abhi91543/noqgo/internal/repository"
	"github.com/abhi91543/noqgo/internal/service"
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

	broker, err := queue.Dial(cfg.Rabbit.URL)
	if err != nil {
		logger.Fatal("failed to connect rabbitmq", zap.Error(err))
	}
	defer broker.Close()
	if err := broker.DeclareTopology(); err != nil {
		logger.Fatal("failed to declare queue topology", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	venueRepo := repository.NewVenueRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	invitationRepo := repository.NewInvitationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	provider := payments.NewClient(cfg.Payments, logger)
	guard := persistence.NewAssignmentGuard(redis, 0)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:       userRepo,
		InvitationRepo: invitationRepo,
	})
	venueService := service.NewVenueService(service.VenueDependencies{
		VenueRepo:             venueRepo,
		Dispatcher:            dispatcher,
		Logger:                logger,
		DefaultCommissionRate: cfg.Payments.DefaultCommissionRate,
	})
	onboardingService := service.NewOnboardingService(service.OnboardingDependencies{
		VenueRepo:  venueRepo,
		UserRepo:   userRepo,
		Provider:   provider,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:             orderRepo,
		VenueRepo:             venueRepo,
		Provider:              provider,
		Publisher:             broker,
		Dispatcher:            dispatcher,
		Logger:                logger,
		Currency:              cfg.Payments.Currency,
		DefaultCommissionRate: cfg.Payments.DefaultCommissionRate,
	})
	staffService := service.NewStaffService(service.StaffDependencies{
		UserRepo:       userRepo,
		StaffRepo:      staffRepo,
		InvitationRepo: invitationRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
		InvitationTTL:  time.Duration(cfg.Auth.InvitationTTLHours) * time.Hour,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		OrderRepo:  orderRepo,
		StaffRepo:  staffRepo,
		Guard:      guard,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	consumer := queue.NewAssignmentConsumer(broker, assignmentService, logger, cfg.Rabbit.Prefetch, cfg.Rabbit.MaxAttempts, cfg.Rabbit.RetryDelay())
	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("assignment consumer stopped", zap.Error(err))
		}
	}()

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Orders:         handlers.NewOrdersHandler(orderService),
		Venues:         handlers.NewVenuesHandler(venueService),
		Onboarding:     handlers.NewOnboardingHandler(onboardingService),
		Staff:          handlers.NewStaffHandler(staffService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
