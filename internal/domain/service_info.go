package domain

import "errors"

var (
	ErrTipsUnavailable = errors.New("failed to fetch tips")
	ErrTipsFetch       = errors.New("error fetching tips")
	ErrEmptyLabel      = errors.New("label cannot be empty")
)

// LabelTips советы для метки из результата интервью
type LabelTips struct {
	Label string   `json:"label"`
	Tips  []string `json:"tips"`
}

// ServiceHealth ответ health-эндпоинта сервиса анализа
type ServiceHealth struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version,omitempty"`
	QueueSize int    `json:"queue_size"`
}

// BackendHealth результат проверки одного сервиса: либо Data, либо Error
type BackendHealth struct {
	Backend Backend        `json:"backend"`
	Data    *ServiceHealth `json:"data"`
	Error   string         `json:"error,omitempty"`
}

// Up сервис ответил
func (h BackendHealth) Up() bool {
	return h.Data != nil && h.Error == ""
}

const (
	MsgInterviewUnreachable = "Failed to connect to Interview API"
	MsgPostureUnreachable   = "Failed to connect to Posture API"
)

// BackendsHealth состояние обоих сервисов анализа
type BackendsHealth struct {
	Interview BackendHealth `json:"interview"`
	Posture   BackendHealth `json:"posture"`
}
