package domain

import "io"

// Upload видеофайл, передаваемый в сервис анализа.
// Body читается ровно один раз, поэтому у каждой задачи свой Upload.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64 // 0, если размер неизвестен
	Body        io.Reader
}

// Submission нормализованный ответ сервиса на отправку видео
type Submission struct {
	Accepted bool
	TaskID   string
	Error    string // Сообщение сервиса, если Accepted == false
}

// RemoteTaskStatus нормализованный ответ сервиса на запрос статуса задачи
type RemoteTaskStatus[R any] struct {
	Success        bool // Внешний конверт ответа
	Status         RemoteStatus
	Result         *R
	Error          string
	ProcessingTime float64
}

// Completed успешный конверт и статус completed
func (s RemoteTaskStatus[R]) Completed() bool {
	return s.Success && s.Status == RemoteStatusCompleted
}

// Failed неуспешный конверт или статус failed
func (s RemoteTaskStatus[R]) Failed() bool {
	return !s.Success || s.Status == RemoteStatusFailed
}
