package handler

import (
	"context"
	"net/http"

	"github.com/plastinin/aceinterview/internal/domain"
	"go.uber.org/zap"
)

// BackendHealthService проверка сервисов анализа
type BackendHealthService interface {
	Check(ctx context.Context) domain.BackendsHealth
}

// HealthHandler обработчик health check запросов
type HealthHandler struct {
	backends BackendHealthService
	logger   *zap.Logger
}

// NewHealthHandler создаёт новый HealthHandler
func NewHealthHandler(backends BackendHealthService, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		backends: backends,
		logger:   logger,
	}
}

// HealthResponse ответ health check
type HealthResponse struct {
	Status string `json:"status"`
}

// Check проверяет состояние сервиса
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, HealthResponse{Status: "ok"})
}

// Backends проверяет оба сервиса анализа. Ответ всегда 200:
// недоступность сервиса передаётся в поле error.
// GET /api/v1/backends/health
func (h *HealthHandler) Backends(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, h.backends.Check(r.Context()))
}
