package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/plastinin/aceinterview/internal/adapter/backend"
	"github.com/plastinin/aceinterview/internal/adapter/queue"
	"github.com/plastinin/aceinterview/internal/adapter/repository"
	"github.com/plastinin/aceinterview/internal/adapter/storage"
	"github.com/plastinin/aceinterview/internal/analysis"
	"github.com/plastinin/aceinterview/internal/config"
	"github.com/plastinin/aceinterview/internal/domain"
	"github.com/plastinin/aceinterview/internal/usecase"
	"github.com/plastinin/aceinterview/pkg/logger"
	"github.com/plastinin/aceinterview/pkg/metrics"
	"go.uber.org/zap"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	log := logger.Must("worker", cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	log.Info("Starting aceinterview worker",
		zap.String("interview_url", cfg.Interview.BaseURL),
		zap.String("posture_url", cfg.Posture.BaseURL),
		zap.Duration("poll_interval", cfg.Analysis.PollInterval),
		zap.Int("concurrency", cfg.Analysis.Concurrency),
	)

	ctx := context.Background()

	dbPool, err := repository.NewPostgresPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()
	log.Info("Connected to PostgreSQL")

	s3Storage, err := storage.NewS3Storage(ctx, cfg.S3)
	if err != nil {
		log.Fatal("Failed to connect to S3", zap.Error(err))
	}
	log.Info("Connected to S3",
		zap.String("endpoint", cfg.S3.Endpoint),
		zap.String("bucket", cfg.S3.Bucket),
	)

	interviewClient := backend.NewInterviewClient(cfg.Interview, cfg.Analysis.RequestTimeout, log)
	postureClient := backend.NewPostureClient(cfg.Posture, cfg.Analysis.RequestTimeout, log)

	// Сервисы могут подняться позже воркера, поэтому только предупреждаем
	for _, checker := range []interface {
		usecase.HealthChecker
		Name() domain.Backend
	}{interviewClient, postureClient} {
		if _, err := checker.Health(ctx); err != nil {
			log.Warn("Analysis service health check failed",
				zap.String("backend", string(checker.Name())),
				zap.Error(err),
			)
		}
	}

	sessionRepo := repository.NewSessionRepository(dbPool)

	runnerUC := usecase.NewRunnerUseCase(
		sessionRepo,
		s3Storage,
		interviewClient,
		postureClient,
		analysis.Config{
			PollInterval: cfg.Analysis.PollInterval,
			PollDeadline: cfg.Analysis.PollDeadline,
		},
		log,
	)

	consumer := queue.NewTaskConsumer(cfg.Redis, cfg.Analysis.Concurrency, runnerUC, log)

	metricsServer := metrics.StartMetricsServer(":" + cfg.Metrics.Port)
	log.Info("Metrics server started", zap.String("port", cfg.Metrics.Port))

	go func() {
		if err := consumer.Start(); err != nil {
			log.Fatal("Failed to start consumer", zap.Error(err))
		}
	}()

	log.Info("Worker started, waiting for analysis runs...")

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down worker...")

	consumer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics server forced to shutdown", zap.Error(err))
	}

	log.Info("Worker stopped")
}
