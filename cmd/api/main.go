package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/solarcare/inverter-service/internal/api/http"
	"github.com/solarcare/inverter-service/internal/api/http/handlers"
	"github.com/solarcare/inverter-service/internal/auth"
	"github.com/solarcare/inverter-service/internal/config"
	"github.com/solarcare/inverter-service/internal/events"
	"github.com/solarcare/inverter-service/internal/observability"
	"github.com/solarcare/inverter-service/internal/persistence"
	"github.com/solarcare/inverter-service/internal/repository"
	"github.com/solarcare/inverter-service/internal/service"
	"github.com/solarcare/inverter-service/internal/worker"
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

	store, err := persistence.NewStore(ctx, cfg.Store, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	userRepo := repository.NewUserRepository(store, logger)
	deviceRepo := repository.NewDeviceRepository(store, logger)
	ticketRepo := repository.NewTicketRepository(store, logger)
	resetRepo := repository.NewPasswordResetRepository(redis.Client)

	dispatcher := events.NewInMemoryDispatcher(logger)
	mailer := service.NewMailer(cfg.Mail, logger)
	notificationService := service.NewNotificationService(dispatcher, mailer, logger, cfg.App.ClientURL)
	worker.StartNotificationWorker(notificationService, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	customerService := service.NewCustomerService(service.CustomerDependencies{
		UserRepo:   userRepo,
		DeviceRepo: deviceRepo,
		TicketRepo: ticketRepo,
	})
	deviceService := service.NewDeviceService(service.DeviceDependencies{
		DeviceRepo: deviceRepo,
		UserRepo:   userRepo,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if cfg.Auth.BootstrapAdminEmail != "" && cfg.Auth.BootstrapAdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPassword); err != nil {
			logger.Fatal("failed to seed admin account", zap.Error(err))
		}
	}
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, cfg.Auth.CookieName)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"store": store,
			"redis": redis,
		}, metrics),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth),
		Customers:      handlers.NewCustomerHandler(customerService),
		Devices:        handlers.NewDeviceHandler(deviceService),
		Tickets:        handlers.NewTicketHandler(ticketService),
		Users:          handlers.NewUsersHandler(customerService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
