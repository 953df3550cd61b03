package domain

// State локальное состояние задачи анализа
type State string

const (
	StateIdle      State = "idle"      // Задача сброшена или ещё не запускалась
	StateUploading State = "uploading" // Видео загружается в сервис анализа
	StateAnalyzing State = "analyzing" // Сервис принял видео, идёт опрос статуса
	StateComplete  State = "complete"  // Получен результат
	StateError     State = "error"     // Задача завершилась с ошибкой
)

// transitions допустимые переходы в рамках одного запуска.
// Сброс в idle разрешён из любого состояния и проверяется отдельно.
var transitions = map[State][]State{
	StateIdle:      {StateUploading},
	StateUploading: {StateAnalyzing, StateError},
	StateAnalyzing: {StateComplete, StateError},
}

// IsValid проверяет валидность состояния
func (s State) IsValid() bool {
	switch s {
	case StateIdle, StateUploading, StateAnalyzing, StateComplete, StateError:
		return true
	}
	return false
}

// IsTerminal проверяет, является ли состояние финальным
func (s State) IsTerminal() bool {
	return s == StateComplete || s == StateError
}

// IsActive true, пока задача загружается или опрашивается
func (s State) IsActive() bool {
	return s == StateUploading || s == StateAnalyzing
}

// CanTransitionTo проверяет допустимость перехода s -> to
func (s State) CanTransitionTo(to State) bool {
	if to == StateIdle {
		return true
	}
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s State) String() string {
	return string(s)
}

// RemoteStatus статус задачи на стороне сервиса анализа
type RemoteStatus string

const (
	RemoteStatusPending    RemoteStatus = "pending"
	RemoteStatusProcessing RemoteStatus = "processing"
	RemoteStatusCompleted  RemoteStatus = "completed"
	RemoteStatusFailed     RemoteStatus = "failed"
)

// IsValid проверяет валидность статуса
func (s RemoteStatus) IsValid() bool {
	switch s {
	case RemoteStatusPending, RemoteStatusProcessing, RemoteStatusCompleted, RemoteStatusFailed:
		return true
	}
	return false
}

// IsFinal проверяет, является ли статус финальным
func (s RemoteStatus) IsFinal() bool {
	return s == RemoteStatusCompleted || s == RemoteStatusFailed
}

func (s RemoteStatus) String() string {
	return string(s)
}
