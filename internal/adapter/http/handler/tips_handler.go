package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/plastinin/aceinterview/internal/domain"
	"go.uber.org/zap"
)

// TipsService советы по метке результата интервью
type TipsService interface {
	Fetch(ctx context.Context, label string) (domain.LabelTips, error)
}

// TipsHandler обработчик запросов советов
type TipsHandler struct {
	tips   TipsService
	logger *zap.Logger
}

// NewTipsHandler создаёт новый TipsHandler
func NewTipsHandler(tips TipsService, logger *zap.Logger) *TipsHandler {
	return &TipsHandler{
		tips:   tips,
		logger: logger,
	}
}

// Get возвращает советы по метке
// GET /api/v1/tips/{label}
func (h *TipsHandler) Get(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")

	tips, err := h.tips.Fetch(r.Context(), label)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyLabel):
			respondError(w, r, h.logger, http.StatusBadRequest, "invalid_label", "Label is required")
		case errors.Is(err, domain.ErrTipsUnavailable):
			respondError(w, r, h.logger, http.StatusBadGateway, "tips_unavailable", "Failed to fetch tips")
		default:
			respondError(w, r, h.logger, http.StatusBadGateway, "tips_fetch_failed", "Error fetching tips")
		}
		return
	}

	respondJSON(w, h.logger, http.StatusOK, tips)
}
