package domain

import (
	"errors"
	"time"
)

// Ошибки домена
var (
	ErrInvalidTransition = errors.New("invalid analysis state transition")
	ErrEmptyTaskID       = errors.New("task id cannot be empty")
)

// Сообщения, которые видит пользователь
const (
	MsgAnalysisFailed    = "Analysis failed"
	MsgUploadFailed      = "Failed to upload video"
	MsgStatusFetchFailed = "Failed to fetch analysis status"
	MsgAnalysisTimedOut  = "Analysis timed out"
)

// AnalysisTask наблюдаемое состояние одного запроса на анализ видео.
// R: тип результата конкретного сервиса.
type AnalysisTask[R any] struct {
	TaskID         string    `json:"task_id,omitempty"` // Идентификатор, выданный сервисом
	State          State     `json:"state"`
	UploadProgress int       `json:"upload_progress"` // 0..100
	Result         *R        `json:"result,omitempty"`
	Error          string    `json:"error,omitempty"`
	ErrorDetail    string    `json:"error_detail,omitempty"` // Текст ошибки от сервиса, если был
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewAnalysisTask создаёт задачу в состоянии idle
func NewAnalysisTask[R any]() AnalysisTask[R] {
	return AnalysisTask[R]{State: StateIdle, UpdatedAt: time.Now()}
}

func (t *AnalysisTask[R]) moveTo(to State) error {
	if !t.State.CanTransitionTo(to) {
		return ErrInvalidTransition
	}
	t.State = to
	t.UpdatedAt = time.Now()
	return nil
}

// MarkUploading начинает загрузку. Допустимо только из idle.
func (t *AnalysisTask[R]) MarkUploading() error {
	if t.State != StateIdle {
		return ErrInvalidTransition
	}
	if err := t.moveTo(StateUploading); err != nil {
		return err
	}
	t.TaskID = ""
	t.UploadProgress = 0
	t.Result = nil
	t.Error = ""
	t.ErrorDetail = ""
	return nil
}

// SetUploadProgress обновляет прогресс загрузки. Значение ограничивается
// диапазоном 0..100, уменьшение игнорируется. Возвращает true, если прогресс изменился.
func (t *AnalysisTask[R]) SetUploadProgress(progress int) (bool, error) {
	if t.State != StateUploading {
		return false, ErrInvalidTransition
	}
	progress = min(max(progress, 0), 100)
	if progress <= t.UploadProgress {
		return false, nil
	}
	t.UploadProgress = progress
	t.UpdatedAt = time.Now()
	return true, nil
}

// MarkAnalyzing фиксирует идентификатор задачи сервиса и переводит в analyzing
func (t *AnalysisTask[R]) MarkAnalyzing(taskID string) error {
	if taskID == "" {
		return ErrEmptyTaskID
	}
	if err := t.moveTo(StateAnalyzing); err != nil {
		return err
	}
	t.TaskID = taskID
	return nil
}

// MarkComplete сохраняет результат
func (t *AnalysisTask[R]) MarkComplete(result R) error {
	if err := t.moveTo(StateComplete); err != nil {
		return err
	}
	t.Result = &result
	t.Error = ""
	t.ErrorDetail = ""
	return nil
}

// MarkFailed переводит задачу в error с сообщением msg.
// detail: исходный текст ошибки сервиса, может быть пустым.
func (t *AnalysisTask[R]) MarkFailed(msg, detail string) error {
	if err := t.moveTo(StateError); err != nil {
		return err
	}
	t.Result = nil
	t.Error = msg
	t.ErrorDetail = detail
	return nil
}

// Reset возвращает задачу в idle и очищает все поля
func (t *AnalysisTask[R]) Reset() {
	*t = AnalysisTask[R]{State: StateIdle, UpdatedAt: time.Now()}
}
