// Package services содержит сервис отправки писем-напоминаний,
// потребляющий сообщения пайплайна уведомлений.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/glassrain/maintenance/internal/lib/daterule"
	"github.com/glassrain/maintenance/internal/lib/sl"
	smtplib "github.com/glassrain/maintenance/internal/lib/smtp"
	"github.com/glassrain/maintenance/internal/models"
)

// Transport описывает SMTP транспорт, через который уходят письма.
type Transport interface {
	Connect() (smtplib.Client, error)
	GetSMTPUser() string
}

// SenderService отправляет письма-напоминания о предстоящих визитах.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport Transport) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendMaintenanceReminder разбирает сообщение из очереди и отправляет
// письмо-напоминание пользователю.
func (s *SenderService) SendMaintenanceReminder(body []byte) error {
	var message models.ReminderInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.UserEmail}
	subject := "Upcoming maintenance reminder from GlassRain"
	bodyText := fmt.Sprintf("Hello, %s!\n\n"+
		"Your %s service with %s is scheduled for %s.\n\n"+
		"If this date no longer works for you, please contact the contractor in advance at %s.",
		message.UserName, message.ServiceName, message.ContractorName,
		message.NextDate.Format(daterule.DateLayout), message.ContractorPhone)

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("reminder email sent", slog.String("to", strings.Join(to, ";")))
	return nil
}
