// Package history реализует HTTP-обработчик истории обслуживания
// пользователя. Как и список предстоящего обслуживания, сбой чтения
// отдаётся пустым списком, а не ошибкой.
package history

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/glassrain/maintenance/internal/http/response"
	"github.com/glassrain/maintenance/internal/lib/sl"
	"github.com/glassrain/maintenance/internal/models"
)

// Handler обрабатывает запросы истории обслуживания пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выборки истории обслуживания.
type Service interface {
	History(ctx context.Context, userID string) ([]*models.ScheduleInfo, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary История обслуживания
// @Description Возвращает графики пользователя с выполненными визитами по убыванию даты выполнения.
// @Tags Maintenance
// @Produce  json
// @Param user_id path string true "Идентификатор пользователя"
// @Success 200 {object} map[string]any "История визитов"
// @Router /maintenance/history/{user_id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.maintenance.history"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		log.Error("user_id not found in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("user_id is required"))
		return
	}

	history, err := h.service.History(r.Context(), userID)
	if err != nil {
		log.Error("failed to list maintenance history", sl.Err(err))
		history = []*models.ScheduleInfo{}
	}

	log.Info("list maintenance history", "count", len(history))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"history_count": len(history),
		"history":       history,
	}))
}
