package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/plastinin/aceinterview/internal/config"
)

// Типы задач
const (
	TypeAnalysisRun = "analysis:run"
)

// QueueAnalysis очередь запусков анализа
const QueueAnalysis = "analysis"

// AnalysisRunPayload данные запуска анализа
type AnalysisRunPayload struct {
	SessionID  string `json:"session_id"`
	Generation int    `json:"generation"`
}

// taskID один запуск на поколение сессии
func taskID(sessionID uuid.UUID, generation int) string {
	return fmt.Sprintf("%s:%d", sessionID, generation)
}

func redisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// TaskProducer ставит запуски анализа в очередь и отменяет их
type TaskProducer struct {
	client     *asynq.Client
	inspector  *asynq.Inspector
	jobTimeout time.Duration
}

// NewTaskProducer создаёт новый экземпляр TaskProducer
func NewTaskProducer(cfg config.RedisConfig, jobTimeout time.Duration) *TaskProducer {
	return &TaskProducer{
		client:     asynq.NewClient(redisOpt(cfg)),
		inspector:  asynq.NewInspector(redisOpt(cfg)),
		jobTimeout: jobTimeout,
	}
}

// Enqueue добавляет запуск анализа в очередь
func (p *TaskProducer) Enqueue(ctx context.Context, sessionID uuid.UUID, generation int) error {
	payload, err := json.Marshal(AnalysisRunPayload{
		SessionID:  sessionID.String(),
		Generation: generation,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	// Повтор запустил бы загрузку заново, поэтому без ретраев:
	// перезапуск делает пользователь через restart.
	task := asynq.NewTask(TypeAnalysisRun, payload,
		asynq.TaskID(taskID(sessionID, generation)),
		asynq.MaxRetry(0),
		asynq.Queue(QueueAnalysis),
		asynq.Timeout(p.jobTimeout),
	)

	if _, err := p.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	return nil
}

// Cancel удаляет ожидающий запуск из очереди и прерывает выполняющийся
func (p *TaskProducer) Cancel(_ context.Context, sessionID uuid.UUID, generation int) error {
	id := taskID(sessionID, generation)

	err := p.inspector.DeleteTask(QueueAnalysis, id)
	if err != nil && !errors.Is(err, asynq.ErrTaskNotFound) && !errors.Is(err, asynq.ErrQueueNotFound) {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	// Для задачи, которая уже не выполняется, отмена ничего не делает
	if err := p.inspector.CancelProcessing(id); err != nil {
		return fmt.Errorf("failed to cancel task: %w", err)
	}

	return nil
}

// Close закрывает соединения
func (p *TaskProducer) Close() error {
	return errors.Join(p.client.Close(), p.inspector.Close())
}
