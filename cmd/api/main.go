package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/kursadbilgin/emergency-alerts/internal/app"
	"github.com/kursadbilgin/emergency-alerts/internal/config"
	"github.com/kursadbilgin/emergency-alerts/internal/handler"
	"github.com/kursadbilgin/emergency-alerts/internal/infra/postgresql"
	"github.com/kursadbilgin/emergency-alerts/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/emergency-alerts/internal/infra/redis"
	"github.com/kursadbilgin/emergency-alerts/internal/observability"
	"github.com/kursadbilgin/emergency-alerts/internal/queue"
	"github.com/kursadbilgin/emergency-alerts/internal/repository"
	"github.com/kursadbilgin/emergency-alerts/internal/service"
	"github.com/kursadbilgin/emergency-alerts/internal/transport"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgresql.NewPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	broker, err := queue.NewRabbitMQ(ctx, cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer broker.Close()

	publisher := queue.NewRabbitMQPublisher(broker)
	defer publisher.Close()

	metrics := observability.NewMetrics()

	contactRepo := repository.NewGormContactRepo(db)
	callRepo := repository.NewGormCallRepo(db)
	roleRepo := repository.NewGormRoleRepo(db)
	deliveryRepo := repository.NewGormDeliveryRepo(db)

	dispatcher, err := app.NewAlertDispatcher(cfg, contactRepo, rdb, metrics, logger)
	if err != nil {
		logger.Fatal("alert dispatcher initialization failed", zap.Error(err))
	}

	contactService, err := service.NewContactService(contactRepo, logger)
	if err != nil {
		logger.Fatal("contact service initialization failed", zap.Error(err))
	}

	callService, err := service.NewCallService(callRepo, publisher, logger)
	if err != nil {
		logger.Fatal("call service initialization failed", zap.Error(err))
	}
	callService.SetDeliveryLister(deliveryRepo)

	roleService, err := service.NewRoleService(roleRepo, logger)
	if err != nil {
		logger.Fatal("role service initialization failed", zap.Error(err))
	}
	if err := roleService.Bootstrap(ctx, cfg.BootstrapAdmins()); err != nil {
		logger.Fatal("bootstrap admin seeding failed", zap.Error(err))
	}

	server := fiber.New(fiber.Config{
		AppName:               "emergency-alerts-api",
		DisableStartupMessage: true,
		ErrorHandler:          transport.ErrorHandler(logger),
	})
	server.Use(requestid.New())
	server.Use(recover.New())
	server.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(server, sqlDB, rdb, broker)
	server.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	for name, register := range map[string]func() error{
		"alert":   func() error { return handler.RegisterAlertRoutes(server, dispatcher) },
		"call":    func() error { return handler.RegisterCallRoutes(server, callService) },
		"contact": func() error { return handler.RegisterContactRoutes(server, contactService) },
		"role":    func() error { return handler.RegisterRoleRoutes(server, roleService) },
	} {
		if err := register(); err != nil {
			logger.Fatal("route registration failed", zap.String("routes", name), zap.Error(err))
		}
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	}()

	logger.Info("emergency-alerts api started", zap.Int("port", cfg.APIPort))

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error("http server stopped", zap.Error(err))
		}
	}

	if err := server.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	logger.Info("emergency-alerts api stopped")
}
