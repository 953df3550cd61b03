package usecase

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/plastinin/aceinterview/internal/domain"
)

// SessionRepository интерфейс для работы с хранилищем сессий анализа
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	List(ctx context.Context, pagination domain.Pagination) (*domain.SessionListResult, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Reset переводит обе задачи в idle и увеличивает поколение
	Reset(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// UpdateInterview и UpdatePosture пишут снимок задачи, только если поколение
	// сессии совпадает с generation, иначе domain.ErrStaleGeneration
	UpdateInterview(ctx context.Context, id uuid.UUID, generation int, task domain.AnalysisTask[domain.InterviewResult]) error
	UpdatePosture(ctx context.Context, id uuid.UUID, generation int, task domain.AnalysisTask[domain.PostureResult]) error
}

// VideoStorage интерфейс для работы с файловым хранилищем (S3)
type VideoStorage interface {
	Upload(ctx context.Context, fileName string, contentType string, reader io.Reader, size int64) (videoKey string, err error)
	Download(ctx context.Context, videoKey string) (io.ReadCloser, int64, error)
	Delete(ctx context.Context, videoKey string) error
}

// AnalysisQueue интерфейс очереди запусков анализа
type AnalysisQueue interface {
	Enqueue(ctx context.Context, sessionID uuid.UUID, generation int) error
	// Cancel снимает запуск generation с очереди или прерывает его, если он уже выполняется
	Cancel(ctx context.Context, sessionID uuid.UUID, generation int) error
}

// TipsSource сервис, который отдаёт советы по метке
type TipsSource interface {
	Tips(ctx context.Context, label string) (domain.LabelTips, error)
}

// TipsCache кэш советов по меткам
type TipsCache interface {
	Get(ctx context.Context, label string) (domain.LabelTips, bool, error)
	Set(ctx context.Context, tips domain.LabelTips, ttl time.Duration) error
}

// HealthChecker health-эндпоинт сервиса анализа
type HealthChecker interface {
	Health(ctx context.Context) (domain.ServiceHealth, error)
}
