package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/plastinin/aceinterview/internal/config"
	"github.com/plastinin/aceinterview/internal/usecase"
	"go.uber.org/zap"
)

// AnalysisRunner выполняет запуск анализа сессии
type AnalysisRunner interface {
	Run(ctx context.Context, input usecase.RunInput) error
}

// TaskConsumer обрабатывает задачи из очереди
type TaskConsumer struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	runner AnalysisRunner
	logger *zap.Logger
}

// NewTaskConsumer создаёт новый экземпляр TaskConsumer
func NewTaskConsumer(
	cfg config.RedisConfig,
	concurrency int,
	runner AnalysisRunner,
	logger *zap.Logger,
) *TaskConsumer {
	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			// Каждый запуск держит две загрузки и два цикла опроса
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueAnalysis: 10,
				"default":     1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	consumer := &TaskConsumer{
		server: server,
		mux:    asynq.NewServeMux(),
		runner: runner,
		logger: logger,
	}

	consumer.mux.HandleFunc(TypeAnalysisRun, consumer.handleAnalysisRun)

	return consumer
}

// Start запускает обработку задач
func (c *TaskConsumer) Start() error {
	c.logger.Info("Starting task consumer")
	return c.server.Start(c.mux)
}

// Stop останавливает обработку задач
func (c *TaskConsumer) Stop() {
	c.logger.Info("Stopping task consumer")
	c.server.Stop()
	c.server.Shutdown()
}

// handleAnalysisRun обрабатывает запуск анализа сессии
func (c *TaskConsumer) handleAnalysisRun(ctx context.Context, t *asynq.Task) error {
	var payload AnalysisRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		c.logger.Error("Failed to unmarshal payload",
			zap.Error(err),
			zap.ByteString("payload", t.Payload()),
		)
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	sessionID, err := uuid.Parse(payload.SessionID)
	if err != nil {
		c.logger.Error("Invalid session ID",
			zap.String("session_id", payload.SessionID),
			zap.Error(err),
		)
		return fmt.Errorf("invalid session ID: %w: %w", err, asynq.SkipRetry)
	}

	c.logger.Info("Processing analysis run",
		zap.String("session_id", sessionID.String()),
		zap.Int("generation", payload.Generation),
	)

	if err := c.runner.Run(ctx, usecase.RunInput{SessionID: sessionID, Generation: payload.Generation}); err != nil {
		c.logger.Error("Failed to process analysis run",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// asynqLogger адаптер логгера для asynq
type asynqLogger struct {
	logger *zap.SugaredLogger
}

func newAsynqLogger(logger *zap.Logger) *asynqLogger {
	return &asynqLogger{logger: logger.Named("asynq").Sugar()}
}

func (l *asynqLogger) Debug(args ...any) { l.logger.Debug(args...) }
func (l *asynqLogger) Info(args ...any)  { l.logger.Info(args...) }
func (l *asynqLogger) Warn(args ...any)  { l.logger.Warn(args...) }
func (l *asynqLogger) Error(args ...any) { l.logger.Error(args...) }
func (l *asynqLogger) Fatal(args ...any) { l.logger.Fatal(args...) }
