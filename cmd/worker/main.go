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
	"github.com/kursadbilgin/emergency-alerts/internal/app"
	"github.com/kursadbilgin/emergency-alerts/internal/config"
	"github.com/kursadbilgin/emergency-alerts/internal/handler"
	"github.com/kursadbilgin/emergency-alerts/internal/infra/postgresql"
	infraredis "github.com/kursadbilgin/emergency-alerts/internal/infra/redis"
	"github.com/kursadbilgin/emergency-alerts/internal/observability"
	"github.com/kursadbilgin/emergency-alerts/internal/queue"
	"github.com/kursadbilgin/emergency-alerts/internal/repository"
	"github.com/kursadbilgin/emergency-alerts/internal/service"
	"github.com/kursadbilgin/emergency-alerts/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
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

	metrics := observability.NewMetrics()

	publisher := queue.NewRabbitMQPublisher(broker)
	defer publisher.Close()

	consumer := queue.NewRabbitMQConsumer(broker, cfg.WorkerConcurrency, logger)
	consumer.SetMetrics(metrics)
	defer consumer.Close()

	callRepo := repository.NewGormCallRepo(db)

	dispatcher, err := app.NewAlertDispatcher(cfg, repository.NewGormContactRepo(db), rdb, metrics, logger)
	if err != nil {
		logger.Fatal("alert dispatcher initialization failed", zap.Error(err))
	}
	dispatcher.SetAttemptRecorder(repository.NewGormDeliveryRepo(db))

	worker, err := service.NewAlertWorker(callRepo, dispatcher, consumer, cfg.WorkerConcurrency, logger)
	if err != nil {
		logger.Fatal("alert worker initialization failed", zap.Error(err))
	}

	rescanner, err := service.NewAlertRescanner(callRepo, publisher, service.RescanConfig{
		Interval: cfg.RescanInterval,
		Grace:    cfg.RescanGrace,
		MaxAge:   cfg.RescanMaxAge,
	}, logger)
	if err != nil {
		logger.Fatal("alert rescanner initialization failed", zap.Error(err))
	}

	probe := fiber.New(fiber.Config{
		AppName:               "emergency-alerts-worker",
		DisableStartupMessage: true,
		ErrorHandler:          transport.ErrorHandler(logger),
	})
	handler.RegisterHealthRoutes(probe, sqlDB, rdb, broker)
	probe.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return worker.Start(groupCtx) })
	g.Go(func() error { return rescanner.Start(groupCtx) })
	g.Go(func() error {
		return probe.Listen(fmt.Sprintf(":%d", cfg.WorkerMetricsPort))
	})
	g.Go(func() error {
		<-groupCtx.Done()
		return probe.ShutdownWithTimeout(cfg.ShutdownTimeout)
	})

	logger.Info("emergency-alerts worker started",
		zap.Int("concurrency", cfg.WorkerConcurrency),
		zap.Int("metricsPort", cfg.WorkerMetricsPort),
	)

	if err := g.Wait(); err != nil {
		logger.Error("worker stopped with error", zap.Error(err))
		return
	}
	logger.Info("emergency-alerts worker stopped")
}
