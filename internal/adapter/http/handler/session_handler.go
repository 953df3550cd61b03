package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/plastinin/aceinterview/internal/adapter/http/dto"
	"github.com/plastinin/aceinterview/internal/domain"
	"github.com/plastinin/aceinterview/internal/usecase"
	"go.uber.org/zap"
)

const (
	// Часть формы сверх этого размера пишется во временные файлы
	multipartMemory = 32 << 20 // 32 MB

	videoFormField = "video"
)

// SessionService операции над сессиями анализа
type SessionService interface {
	Create(ctx context.Context, input usecase.CreateSessionInput) (*domain.Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	List(ctx context.Context, pagination domain.Pagination) (*domain.SessionListResult, error)
	Reset(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Restart(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionHandler обработчик HTTP запросов для сессий анализа
type SessionHandler struct {
	sessions      SessionService
	maxUploadSize int64
	logger        *zap.Logger
}

// NewSessionHandler создаёт новый SessionHandler
func NewSessionHandler(sessions SessionService, maxUploadSize int64, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:      sessions,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Create принимает видео и запускает оба анализа
// POST /api/v1/analyses
// Content-Type: multipart/form-data
// - video: файл mp4, mov или avi
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, h.logger, http.StatusRequestEntityTooLarge, "file_too_large", "Video exceeds the upload size limit")
			return
		}
		h.logger.Warn("Failed to parse multipart form", zap.Error(err))
		respondError(w, r, h.logger, http.StatusBadRequest, "invalid_request", "Failed to parse form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(videoFormField)
	if err != nil {
		h.logger.Warn("Failed to get video from form", zap.Error(err))
		respondError(w, r, h.logger, http.StatusBadRequest, "video_required", "Video file is required")
		return
	}
	defer file.Close()

	input := usecase.CreateSessionInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		FileSize:    header.Size,
		FileReader:  file,
	}

	session, err := h.sessions.Create(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnsupportedVideoType):
			respondError(w, r, h.logger, http.StatusBadRequest, "invalid_file_type", "Unsupported file type. Supported: MP4, MOV, AVI")
		case errors.Is(err, domain.ErrEmptyVideo):
			respondError(w, r, h.logger, http.StatusBadRequest, "empty_file", "Video file is empty")
		default:
			h.logger.Error("Failed to create analysis session", zap.Error(err))
			respondError(w, r, h.logger, http.StatusInternalServerError, "internal_error", "Failed to create analysis session")
		}
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, dto.SessionFromDomain(session))
}

// GetByID возвращает состояние сессии
// GET /api/v1/analyses/{id}
func (h *SessionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	session, err := h.sessions.GetByID(r.Context(), id)
	if err != nil {
		h.respondSessionError(w, r, id, "get", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, dto.SessionFromDomain(session))
}

// List возвращает список сессий
// GET /api/v1/analyses?page=1&page_size=20
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := h.sessions.List(r.Context(), domain.NewPagination(page, pageSize))
	if err != nil {
		h.logger.Error("Failed to list analysis sessions", zap.Error(err))
		respondError(w, r, h.logger, http.StatusInternalServerError, "internal_error", "Failed to list analysis sessions")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, dto.SessionListFromDomain(result))
}

// Reset останавливает опрос и возвращает обе задачи в idle
// POST /api/v1/analyses/{id}/reset
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	session, err := h.sessions.Reset(r.Context(), id)
	if err != nil {
		h.respondSessionError(w, r, id, "reset", err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, dto.SessionFromDomain(session))
}

// Restart запускает анализ заново на сохранённом видео
// POST /api/v1/analyses/{id}/restart
func (h *SessionHandler) Restart(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	session, err := h.sessions.Restart(r.Context(), id)
	if err != nil {
		h.respondSessionError(w, r, id, "restart", err)
		return
	}

	respondJSON(w, h.logger, http.StatusAccepted, dto.SessionFromDomain(session))
}

// Delete удаляет сессию и видео
// DELETE /api/v1/analyses/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.sessions.Delete(r.Context(), id); err != nil {
		h.respondSessionError(w, r, id, "delete", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) respondSessionError(w http.ResponseWriter, r *http.Request, id uuid.UUID, action string, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		respondError(w, r, h.logger, http.StatusNotFound, "not_found", "Analysis session not found")
		return
	}

	h.logger.Error("Failed to "+action+" analysis session",
		zap.String("session_id", id.String()),
		zap.Error(err),
	)
	respondError(w, r, h.logger, http.StatusInternalServerError, "internal_error", "Failed to "+action+" analysis session")
}
