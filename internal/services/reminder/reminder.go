// Package services содержит батч рассылки напоминаний о предстоящих
// визитах: выборка графиков, публикация сообщений в RabbitMQ и пометка
// отправленных напоминаний.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/glassrain/maintenance/internal/lib/sl"
	"github.com/glassrain/maintenance/internal/models"
	"github.com/glassrain/maintenance/internal/rabbitmq"
	"github.com/streadway/amqp"
)

// defaultDaysAhead — окно напоминаний по умолчанию.
const defaultDaysAhead = 7

// ScheduleRepository определяет методы хранилища, нужные батчу напоминаний.
type ScheduleRepository interface {
	// FindDueReminders возвращает графики с визитом в окне без отправленных напоминаний.
	FindDueReminders(ctx context.Context, from, to time.Time) ([]*models.ReminderInfo, error)
	// MarkReminderSent помечает напоминание отправленным; 0 строк — уже отправлено.
	MarkReminderSent(ctx context.Context, scheduleID int) (int, error)
}

// ReminderService публикует напоминания о предстоящем обслуживании.
type ReminderService struct {
	repo ScheduleRepository
	log  *slog.Logger
}

// NewReminderService создает новый экземпляр ReminderService.
func NewReminderService(repo ScheduleRepository, log *slog.Logger) *ReminderService {
	return &ReminderService{
		repo: repo,
		log:  log,
	}
}

// SendDueReminders отправляет по одному напоминанию на график с визитом
// в окне [сегодня, сегодня + daysAhead].
//
// Ошибка публикации одного напоминания учитывается в счётчике ошибок и не
// прерывает обработку остальных. Повторный вызов в том же окне ничего не
// отправляет: графики с reminders_sent > 0 исключаются из выборки, а пометка
// отправки условная, поэтому на одну next_date уходит не больше одного
// напоминания до следующего завершения визита.
//
// Ошибка самой выборки (недоступное хранилище) возвращается вызывающему:
// батч должен знать, что проход не состоялся.
func (s *ReminderService) SendDueReminders(ctx context.Context, channel *amqp.Channel, daysAhead int) (models.ReminderStats, error) {
	if daysAhead <= 0 {
		daysAhead = defaultDaysAhead
	}

	var stats models.ReminderStats

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, daysAhead)

	due, err := s.repo.FindDueReminders(ctx, from, to)
	if err != nil {
		s.log.Error("failed to find due reminders", sl.Err(err))
		return stats, err
	}
	if len(due) == 0 {
		s.log.Info("no due maintenance reminders found")
		return stats, nil
	}
	s.log.Info("found due maintenance reminders", "count", len(due))

	for _, reminder := range due {
		err = rabbitmq.PublishMessage(channel, rabbitmq.NotificationsExchange, rabbitmq.ReminderRoutingKey, reminder)
		if err != nil {
			s.log.Error("failed to publish reminder",
				slog.Int("schedule_id", reminder.ScheduleID), sl.Err(err))
			stats.Errors++
			continue
		}

		marked, err := s.repo.MarkReminderSent(ctx, reminder.ScheduleID)
		if err != nil {
			s.log.Error("failed to mark reminder as sent",
				slog.Int("schedule_id", reminder.ScheduleID), sl.Err(err))
			stats.Errors++
			continue
		}
		if marked == 0 {
			// Уже помечено параллельным проходом.
			continue
		}
		stats.Sent++
	}

	s.log.Info("reminder batch finished",
		slog.Int("sent", stats.Sent), slog.Int("errors", stats.Errors))
	return stats, nil
}
