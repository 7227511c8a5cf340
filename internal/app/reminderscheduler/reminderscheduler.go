// Package reminderscheduler содержит логику планировщика рассылки напоминаний
// о предстоящих визитах обслуживания.
package reminderscheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"

	"github.com/glassrain/maintenance/internal/config"
	"github.com/glassrain/maintenance/internal/lib/sl"
	"github.com/glassrain/maintenance/internal/rabbitmq"
	reminderservice "github.com/glassrain/maintenance/internal/services/reminder"
	"github.com/glassrain/maintenance/internal/storage/repository"
)

// App представляет приложение планировщика напоминаний.
type App struct {
	reminderService *reminderservice.ReminderService
	conn            *amqp.Connection
	ch              *amqp.Channel
	cronSpec        string
	daysAhead       int
	logger          *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика напоминаний.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	reminderService := reminderservice.NewReminderService(db, logger)

	return &App{
		reminderService: reminderService,
		conn:            conn,
		ch:              ch,
		cronSpec:        cfg.Reminder.CronSpec,
		daysAhead:       cfg.Reminder.DaysAhead,
		logger:          logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает планировщик: один немедленный проход и далее по cron-расписанию.
func (a *App) Run(ctx context.Context) error {
	a.runBatch(ctx)

	c := cron.New()
	if _, err := c.AddFunc(a.cronSpec, func() {
		a.runBatch(ctx)
	}); err != nil {
		return fmt.Errorf("failed to register cron job: %w", err)
	}
	c.Start()

	<-ctx.Done()

	a.logger.Info("shutting down reminder scheduler")

	stopCtx := c.Stop()
	<-stopCtx.Done()

	closeResources(a.ch, a.conn, a.logger)

	return nil
}

func (a *App) runBatch(ctx context.Context) {
	stats, err := a.reminderService.SendDueReminders(ctx, a.ch, a.daysAhead)
	if err != nil {
		a.logger.Error("reminder batch failed", sl.Err(err))
		return
	}
	a.logger.Info("reminder batch finished",
		slog.Int("sent", stats.Sent),
		slog.Int("errors", stats.Errors))
}
