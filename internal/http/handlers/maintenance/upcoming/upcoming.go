// Package upcoming реализует HTTP-обработчик списка предстоящего
// обслуживания пользователя.
//
// Сбой чтения не роняет дашборд: обработчик логирует ошибку и отдаёт
// пустой список.
package upcoming

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/glassrain/maintenance/internal/http/response"
	"github.com/glassrain/maintenance/internal/lib/sl"
	"github.com/glassrain/maintenance/internal/models"
)

// Handler обрабатывает запросы предстоящего обслуживания пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выборки предстоящего обслуживания.
type Service interface {
	Upcoming(ctx context.Context, userID string, daysAhead int) ([]*models.ScheduleInfo, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Предстоящее обслуживание
// @Description Возвращает активные графики пользователя с визитом в ближайшие days дней.
// @Tags Maintenance
// @Produce  json
// @Param user_id path string true "Идентификатор пользователя"
// @Param days query int false "Окно в днях (по умолчанию 30)"
// @Success 200 {object} map[string]any "Список визитов"
// @Router /maintenance/upcoming/{user_id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.maintenance.upcoming"

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

	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days <= 0 {
		days = 30
	}

	appointments, err := h.service.Upcoming(r.Context(), userID, days)
	if err != nil {
		// Дашборд не должен падать из-за недоступного хранилища.
		log.Error("failed to list upcoming maintenance", sl.Err(err))
		appointments = []*models.ScheduleInfo{}
	}

	log.Info("list upcoming maintenance", "count", len(appointments))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"appointments_count": len(appointments),
		"appointments":       appointments,
	}))
}
