// Package complete реализует HTTP-обработчик завершения визита.
//
// Handler извлекает ID графика из URL, вызывает бизнес-логику завершения
// и возвращает обновлённое состояние графика: для разового сервиса —
// терминальный статус, для повторяющегося — новую дату визита и буфер
// будущих дат.
package complete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/glassrain/maintenance/internal/http/response"
	"github.com/glassrain/maintenance/internal/lib/sl"
	"github.com/glassrain/maintenance/internal/models"
	"github.com/glassrain/maintenance/internal/storage/repository"
)

// Handler обрабатывает запросы завершения визита по графику.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики завершения визита.
type Service interface {
	Complete(ctx context.Context, scheduleID int) (*models.ScheduleUpdate, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Завершить визит
// @Description Фиксирует выполнение визита и переносит график на следующую дату.
// @Tags Maintenance
// @Produce  json
// @Param schedule_id path int true "Идентификатор графика"
// @Success 200 {object} map[string]any "Обновлённое состояние графика"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "График не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /maintenance/complete/{schedule_id} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.maintenance.complete"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	scheduleID, err := strconv.Atoi(chi.URLParam(r, "schedule_id"))
	if err != nil {
		log.Error("failed to decode schedule_id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode schedule_id from url"))
		return
	}

	update, err := h.service.Complete(r.Context(), scheduleID)
	if errors.Is(err, repository.ErrScheduleNotFound) {
		log.Error("schedule not found", slog.Int("schedule_id", scheduleID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("schedule not found"))
		return
	}
	if err != nil {
		log.Error("failed to complete maintenance", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not complete maintenance"))
		return
	}

	log.Info("success to complete maintenance", slog.Int("schedule_id", scheduleID),
		slog.String("status", update.Status))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"schedule": update,
	}))
}
