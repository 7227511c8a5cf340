// Package services содержит бизнес-логику жизненного цикла графиков
// обслуживания: создание по заявке, выборки для дашборда и завершение
// визита с переносом графика вперёд.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glassrain/maintenance/internal/lib/daterule"
	"github.com/glassrain/maintenance/internal/models"
)

// defaultUpcomingDays — окно дашборда по умолчанию.
const defaultUpcomingDays = 30

// lookaheadSize — сколько будущих дат предрассчитывается при создании.
const lookaheadSize = 5

// upcomingCacheTTL — время жизни кеша предстоящего обслуживания.
const upcomingCacheTTL = 5 * time.Minute

// ScheduleRepository определяет методы для работы с графиками в хранилище.
type ScheduleRepository interface {
	// GetQuoteForScheduling возвращает заявку с фасетами сервиса и подрядчиком.
	GetQuoteForScheduling(ctx context.Context, quoteID int) (*models.QuoteInfo, error)
	// CreateSchedule сохраняет график и обратную ссылку на заявку, возвращает ID.
	CreateSchedule(ctx context.Context, entry models.Schedule) (int, error)
	// ListUpcoming возвращает активные графики с визитом до cutoff.
	ListUpcoming(ctx context.Context, userID string, cutoff time.Time) ([]*models.ScheduleInfo, error)
	// ListHistory возвращает графики с выполненными визитами.
	ListHistory(ctx context.Context, userID string) ([]*models.ScheduleInfo, error)
	// CompleteSchedule фиксирует выполнение визита и продвигает график.
	CompleteSchedule(ctx context.Context, scheduleID int, now time.Time) (*models.ScheduleUpdate, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// ScheduleService реализует бизнес-логику работы с графиками обслуживания.
type ScheduleService struct {
	repo  ScheduleRepository
	cache Cache
	log   *slog.Logger
}

// NewScheduleService создает новый экземпляр ScheduleService.
func NewScheduleService(repo ScheduleRepository, cache Cache, log *slog.Logger) *ScheduleService {
	return &ScheduleService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает график обслуживания по заявке и возвращает его.
//
// Фасеты сервиса снимаются с заявки на момент создания; первая дата визита
// считается по правилам daterule, для повторяющихся сервисов дополнительно
// предрассчитывается буфер будущих дат.
func (s *ScheduleService) Create(ctx context.Context, quoteID int) (*models.Schedule, error) {
	quote, err := s.repo.GetQuoteForScheduling(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	frequency := strings.ToLower(quote.Frequency)
	if frequency == "" {
		frequency = "one-time"
	}
	season := strings.ToLower(quote.Season)
	if season == "" {
		season = "spring"
	}
	requested := quote.RequestedDate
	if requested == "" {
		requested = now.Format(daterule.DateLayout)
	}

	initialDate := daterule.InitialDate(now, requested, quote.Recurring, frequency, quote.IsSeasonal, season)

	var futureDates []string
	if quote.Recurring {
		futureDates = daterule.FormatDates(
			daterule.GenerateDates(initialDate, effectiveFrequency(frequency, quote.IsSeasonal, season), lookaheadSize))
	}

	nextDate := models.NewDate(initialDate)
	entry := models.Schedule{
		QuoteID:       quote.QuoteID,
		UserID:        quote.UserID,
		ServiceID:     quote.ServiceID,
		ContractorID:  quote.ContractorID,
		IsRecurring:   quote.Recurring,
		Frequency:     frequency,
		IsSeasonal:    quote.IsSeasonal,
		Season:        season,
		InitialDate:   models.NewDate(initialDate),
		NextDate:      &nextDate,
		FutureDates:   futureDates,
		Status:        models.StatusScheduled,
		RemindersSent: 0,
	}

	id, err := s.repo.CreateSchedule(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ScheduleID = id

	s.log.Info("created new maintenance schedule",
		slog.Int("schedule_id", id), slog.Int("quote_id", quoteID))

	cacheKey := upcomingCacheKey(quote.UserID, defaultUpcomingDays)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate upcoming cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	return &entry, nil
}

// Upcoming возвращает предстоящее обслуживание пользователя в окне daysAhead
// дней, используя кеш или репозиторий.
func (s *ScheduleService) Upcoming(ctx context.Context, userID string, daysAhead int) ([]*models.ScheduleInfo, error) {
	if daysAhead <= 0 {
		daysAhead = defaultUpcomingDays
	}

	cacheKey := upcomingCacheKey(userID, daysAhead)
	var cached []*models.ScheduleInfo
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read upcoming cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	cutoff := time.Now().AddDate(0, 0, daysAhead)
	result, err := s.repo.ListUpcoming(ctx, userID, cutoff)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, upcomingCacheTTL); err != nil {
		s.log.Warn("failed to cache upcoming schedules", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// History возвращает историю выполненного обслуживания пользователя.
func (s *ScheduleService) History(ctx context.Context, userID string) ([]*models.ScheduleInfo, error) {
	return s.repo.ListHistory(ctx, userID)
}

// Complete фиксирует выполнение визита и возвращает обновлённое состояние
// графика. Единственный путь продвижения next_date после создания.
// После фиксации кеш предстоящего обслуживания владельца инвалидируется,
// чтобы дашборд не отдавал уже завершённый визит.
func (s *ScheduleService) Complete(ctx context.Context, scheduleID int) (*models.ScheduleUpdate, error) {
	update, err := s.repo.CompleteSchedule(ctx, scheduleID, time.Now())
	if err != nil {
		return nil, err
	}

	s.log.Info("maintenance visit completed",
		slog.Int("schedule_id", scheduleID), slog.String("status", update.Status))

	cacheKey := upcomingCacheKey(update.UserID, defaultUpcomingDays)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate upcoming cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	return update, nil
}

// effectiveFrequency возвращает частоту генерации будущих дат: у сезонных
// графиков сезон всегда приоритетнее снятой с сервиса частоты.
func effectiveFrequency(frequency string, isSeasonal bool, season string) string {
	if isSeasonal && daterule.IsSeason(season) {
		return season
	}
	return frequency
}

func upcomingCacheKey(userID string, daysAhead int) string {
	return fmt.Sprintf("maintenance:upcoming:%s:%d", userID, daysAhead)
}
