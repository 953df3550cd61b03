package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/plastinin/aceinterview/internal/domain"
	"go.uber.org/zap"
)

// SessionUseCase бизнес-логика работы с сессиями анализа
type SessionUseCase struct {
	sessionRepo  SessionRepository
	videoStorage VideoStorage
	queue        AnalysisQueue
	logger       *zap.Logger
}

// NewSessionUseCase создаёт новый экземпляр SessionUseCase
func NewSessionUseCase(
	sessionRepo SessionRepository,
	videoStorage VideoStorage,
	queue AnalysisQueue,
	logger *zap.Logger,
) *SessionUseCase {
	return &SessionUseCase{
		sessionRepo:  sessionRepo,
		videoStorage: videoStorage,
		queue:        queue,
		logger:       logger,
	}
}

// Create сохраняет видео и ставит анализ обоими сервисами в очередь
func (uc *SessionUseCase) Create(ctx context.Context, input CreateSessionInput) (*domain.Session, error) {
	contentType, err := domain.DetectVideoContentType(input.FileName, input.ContentType)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if input.FileSize == 0 {
		return nil, fmt.Errorf("validation error: %w", domain.ErrEmptyVideo)
	}

	// Загружаем видео в S3
	videoKey, err := uc.videoStorage.Upload(ctx, input.FileName, contentType, input.FileReader, input.FileSize)
	if err != nil {
		uc.logger.Error("Failed to upload video to storage",
			zap.String("file_name", input.FileName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to upload video: %w", err)
	}

	session := domain.NewSession(videoKey, input.FileName, contentType, input.FileSize)

	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		// Удаляем загруженный файл при ошибке
		_ = uc.videoStorage.Delete(ctx, videoKey)
		uc.logger.Error("Failed to save session to database",
			zap.String("session_id", session.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if err := uc.queue.Enqueue(ctx, session.ID, session.Generation); err != nil {
		// Сессия сохранена, анализ можно перезапустить через Restart
		uc.logger.Error("Failed to enqueue analysis",
			zap.String("session_id", session.ID.String()),
			zap.Error(err),
		)
	}

	uc.logger.Info("Analysis session created",
		zap.String("session_id", session.ID.String()),
		zap.String("file_name", input.FileName),
		zap.Int64("file_size", input.FileSize),
	)

	return session, nil
}

// GetByID возвращает сессию по ID
func (uc *SessionUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return uc.sessionRepo.GetByID(ctx, id)
}

// List возвращает список сессий
func (uc *SessionUseCase) List(ctx context.Context, pagination domain.Pagination) (*domain.SessionListResult, error) {
	return uc.sessionRepo.List(ctx, pagination)
}

// Reset возвращает обе задачи в idle и останавливает опрос текущего запуска
func (uc *SessionUseCase) Reset(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	session, err := uc.sessionRepo.Reset(ctx, id)
	if err != nil {
		return nil, err
	}

	// Записи старого поколения уже отбрасываются репозиторием,
	// отмена только освобождает воркер раньше.
	previous := session.Generation - 1
	if err := uc.queue.Cancel(ctx, id, previous); err != nil {
		uc.logger.Warn("Failed to cancel analysis run",
			zap.String("session_id", id.String()),
			zap.Int("generation", previous),
			zap.Error(err),
		)
	}

	uc.logger.Info("Analysis session reset",
		zap.String("session_id", id.String()),
		zap.Int("generation", session.Generation),
	)

	return session, nil
}

// Restart сбрасывает сессию и запускает анализ заново на сохранённом видео
func (uc *SessionUseCase) Restart(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	session, err := uc.Reset(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.queue.Enqueue(ctx, session.ID, session.Generation); err != nil {
		return nil, fmt.Errorf("failed to enqueue analysis: %w", err)
	}

	uc.logger.Info("Analysis session restarted",
		zap.String("session_id", id.String()),
		zap.Int("generation", session.Generation),
	)

	return session, nil
}

// Delete отменяет анализ, удаляет видео и сессию
func (uc *SessionUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	session, err := uc.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.queue.Cancel(ctx, id, session.Generation); err != nil {
		uc.logger.Warn("Failed to cancel analysis run",
			zap.String("session_id", id.String()),
			zap.Error(err),
		)
	}

	// Удаляем видео из S3
	if err := uc.videoStorage.Delete(ctx, session.VideoKey); err != nil {
		uc.logger.Warn("Failed to delete video from storage",
			zap.String("session_id", id.String()),
			zap.String("video_key", session.VideoKey),
			zap.Error(err),
		)
		// Продолжаем удаление сессии
	}

	if err := uc.sessionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	uc.logger.Info("Analysis session deleted",
		zap.String("session_id", id.String()),
	)

	return nil
}
