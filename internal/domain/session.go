package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("analysis session not found")
	// ErrStaleGeneration запись от запуска, который уже сброшен
	ErrStaleGeneration = errors.New("stale analysis generation")
)

// Backend внешний сервис анализа
type Backend string

const (
	BackendInterview Backend = "interview"
	BackendPosture   Backend = "posture"
)

// Session один загруженный файл и две независимые задачи анализа
type Session struct {
	ID          uuid.UUID                     `json:"id"`
	VideoKey    string                        `json:"video_key"` // Ключ файла в S3
	FileName    string                        `json:"file_name"`
	ContentType string                        `json:"content_type"`
	FileSize    int64                         `json:"file_size"`
	Generation  int                           `json:"generation"` // Растёт при каждом сбросе
	Interview   AnalysisTask[InterviewResult] `json:"interview"`
	Posture     AnalysisTask[PostureResult]   `json:"posture"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
}

// NewSession создаёт сессию с обеими задачами в состоянии idle
func NewSession(videoKey, fileName, contentType string, size int64) *Session {
	now := time.Now()
	return &Session{
		ID:          uuid.New(),
		VideoKey:    videoKey,
		FileName:    fileName,
		ContentType: contentType,
		FileSize:    size,
		Generation:  1,
		Interview:   NewAnalysisTask[InterviewResult](),
		Posture:     NewAnalysisTask[PostureResult](),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ResetAll сбрасывает обе задачи и начинает новое поколение
func (s *Session) ResetAll() {
	s.Interview.Reset()
	s.Posture.Reset()
	s.Generation++
	s.UpdatedAt = time.Now()
}

func (s *Session) AllComplete() bool {
	return s.Interview.State == StateComplete && s.Posture.State == StateComplete
}

func (s *Session) AnyError() bool {
	return s.Interview.State == StateError || s.Posture.State == StateError
}

// Active хотя бы одна задача ещё загружается или опрашивается
func (s *Session) Active() bool {
	return s.Interview.State.IsActive() || s.Posture.State.IsActive()
}
