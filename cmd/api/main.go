package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/logistics-kit/delivery-service/internal/api/http"
	"github.com/logistics-kit/delivery-service/internal/api/http/handlers"
	"github.com/logistics-kit/delivery-service/internal/auth"
	"github.com/logistics-kit/delivery-service/internal/config"
	"github.com/logistics-kit/delivery-service/internal/events"
	"github.com/logistics-kit/delivery-service/internal/observability"
	"github.com/logistics-kit/delivery-service/internal/persistence"
	"github.com/logistics-kit/delivery-service/internal/repository"
	"github.com/logistics-kit/delivery-service/internal/service"
	"github.com/logistics-kit/delivery-service/internal/worker"
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
	userRepo := repository.NewUserRepository(pool)
	historyRepo := repository.NewStatusHistoryRepository(pool)
	var deliveryRepo repository.DeliveryRepository = repository.NewRetryingDeliveryRepository(
		repository.NewDeliveryRepository(pool), logger, cfg.StoreRetry)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, userRepo, dispatcher)
	identityService := service.NewIdentityService(userRepo, redis.ClientHandle(), logger)
	identityService.RegisterHandlers(dispatcher)

	costRecorder := service.NewCostRecorder(service.NewStandardEstimator(cfg.Pricing))
	deliveryService := service.NewDeliveryService(service.DeliveryDependencies{
		DeliveryRepo: deliveryRepo,
		HistoryRepo:  historyRepo,
		CostRecorder: costRecorder,
		Dispatcher:   dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		DeliveryRepo: deliveryRepo,
		UserRepo:     userRepo,
		Dispatcher:   dispatcher,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService, identityService),
		Deliveries:     handlers.NewDeliveriesHandler(deliveryService, assignmentService),
		AuthMiddleware: authMiddleware,
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
