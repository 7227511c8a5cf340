// Package create реализует HTTP-обработчик создания графика обслуживания
// по заявке.
//
// Handler принимает JSON-запрос с идентификатором заявки, валидирует его,
// вызывает бизнес-логику создания графика и возвращает созданный график
// в JSON-формате.
//
// В случае ошибок формируются соответствующие HTTP-ответы с описанием проблемы.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/glassrain/maintenance/internal/http/response"
	"github.com/glassrain/maintenance/internal/lib/sl"
	"github.com/glassrain/maintenance/internal/models"
	"github.com/glassrain/maintenance/internal/storage/repository"
)

// Handler управляет HTTP-запросами на создание графиков обслуживания.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики создания графика
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания графика.
type Service interface {
	Create(ctx context.Context, quoteID int) (*models.Schedule, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать график обслуживания
// @Description Создает график обслуживания по принятой заявке. Возвращает созданный график.
// @Tags Maintenance
// @Accept  json
// @Produce  json
// @Param request body models.DummyCreateRequest true "Идентификатор заявки"
// @Success 200 {object} map[string]any "График создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании графика"
// @Router /maintenance/schedule [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.maintenance.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	schedule, err := h.service.Create(r.Context(), req.QuoteID)
	if errors.Is(err, repository.ErrQuoteNotFound) {
		log.Error("quote not found", slog.Int("quote_id", req.QuoteID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("quote not found"))
		return
	}
	if err != nil {
		log.Error("failed to create maintenance schedule", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create maintenance schedule"))
		return
	}

	log.Info("success to create maintenance schedule", slog.Int("schedule_id", schedule.ScheduleID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"schedule_id": schedule.ScheduleID,
		"schedule":    schedule,
	}))
}
