package usecase

import (
	"io"

	"github.com/google/uuid"
)

// CreateSessionInput входные данные для создания сессии анализа
type CreateSessionInput struct {
	FileName    string    // Имя файла
	ContentType string    // MIME тип из запроса
	FileSize    int64     // Размер файла
	FileReader  io.Reader // Содержимое файла
}

// RunInput входные данные запуска анализа воркером
type RunInput struct {
	SessionID  uuid.UUID
	Generation int
}
