package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/plastinin/aceinterview/internal/adapter/http/dto"
	"go.uber.org/zap"
)

// respondJSON отправляет JSON ответ
func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// respondError отправляет ответ с ошибкой
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, errCode string, message string) {
	respondJSON(w, logger, status, dto.NewErrorResponse(errCode, message, middleware.GetReqID(r.Context())))
}

// sessionID разбирает {id} из пути, при ошибке уже отправляет 400
func sessionID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, logger, http.StatusBadRequest, "invalid_id", "Invalid session ID format")
		return uuid.Nil, false
	}
	return id, true
}
