package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/plastinin/aceinterview/internal/adapter/backend"
	"github.com/plastinin/aceinterview/internal/adapter/cache"
	"github.com/plastinin/aceinterview/internal/adapter/http/handler"
	"github.com/plastinin/aceinterview/internal/adapter/queue"
	"github.com/plastinin/aceinterview/internal/adapter/repository"
	"github.com/plastinin/aceinterview/internal/adapter/storage"
	"github.com/plastinin/aceinterview/internal/config"
	"github.com/plastinin/aceinterview/internal/usecase"
	"github.com/plastinin/aceinterview/pkg/logger"
	"go.uber.org/zap"

	apphttp "github.com/plastinin/aceinterview/internal/adapter/http"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	log := logger.Must("api", cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	log.Info("Starting aceinterview API",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("interview_url", cfg.Interview.BaseURL),
		zap.String("posture_url", cfg.Posture.BaseURL),
	)

	// Контекст с отменой для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := repository.NewPostgresPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()
	log.Info("Connected to PostgreSQL")

	if err := repository.Migrate(ctx, dbPool, log); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}

	s3Storage, err := storage.NewS3Storage(ctx, cfg.S3)
	if err != nil {
		log.Fatal("Failed to connect to S3", zap.Error(err))
	}
	log.Info("Connected to S3",
		zap.String("endpoint", cfg.S3.Endpoint),
		zap.String("bucket", cfg.S3.Bucket),
	)

	queueProducer := queue.NewTaskProducer(cfg.Redis, cfg.Analysis.JobTimeout)
	defer queueProducer.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))

	// Клиенты сервисов анализа: API использует их для советов и health check
	interviewClient := backend.NewInterviewClient(cfg.Interview, cfg.Analysis.RequestTimeout, log)
	postureClient := backend.NewPostureClient(cfg.Posture, cfg.Analysis.RequestTimeout, log)

	sessionRepo := repository.NewSessionRepository(dbPool)

	sessionUC := usecase.NewSessionUseCase(sessionRepo, s3Storage, queueProducer, log)
	tipsUC := usecase.NewTipsUseCase(interviewClient, cache.NewTipsCache(redisClient), cfg.Tips.CacheTTL, log)
	healthUC := usecase.NewHealthUseCase(interviewClient, postureClient, log)

	go healthUC.Monitor(ctx, cfg.Health.Interval)

	sessionHandler := handler.NewSessionHandler(sessionUC, cfg.Server.MaxUploadSize, log)
	tipsHandler := handler.NewTipsHandler(tipsUC, log)
	healthHandler := handler.NewHealthHandler(healthUC, log)

	router := apphttp.NewRouter(sessionHandler, tipsHandler, healthHandler, log)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("HTTP server starting",
			zap.String("addr", cfg.Server.Addr()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
