// Package models содержит доменные структуры платформы GlassRain,
// описывающие график обслуживания, а также вспомогательные типы для
// работы с данными из внешних источников (например, JSON-запросы).
package models

import "time"

// Статусы графика обслуживания.
const (
	// StatusScheduled — график активен, следующий визит назначен.
	StatusScheduled = "scheduled"
	// StatusCompleted — терминальный статус разового графика после выполнения.
	StatusCompleted = "completed"
)

// Schedule представляет собой основную модель графика обслуживания,
// используемую в бизнес-логике и хранилище. Поля-фасеты (IsRecurring,
// Frequency, IsSeasonal, Season) — снимок сервиса на момент создания
// и после этого не перечитываются из каталога.
// NextDate равен nil только для завершённых разовых графиков.
type Schedule struct {
	ScheduleID    int       `json:"schedule_id"`    // Уникальный идентификатор графика
	QuoteID       int       `json:"quote_id"`       // Заявка, из которой создан график
	UserID        string    `json:"user_id"`        // Владелец графика
	ServiceID     int       `json:"service_id"`     // Сервис из каталога
	ContractorID  int       `json:"contractor_id"`  // Подрядчик
	IsRecurring   bool      `json:"is_recurring"`   // Повторяется ли обслуживание
	Frequency     string    `json:"frequency"`      // Интервал повторения (weekly, monthly, ...)
	IsSeasonal    bool      `json:"is_seasonal"`    // Привязано ли обслуживание к сезону
	Season        string    `json:"season"`         // Сезон (spring, summer, fall, winter)
	InitialDate   Date      `json:"initial_date"`   // Первая рассчитанная дата визита
	NextDate      *Date     `json:"next_date"`      // Дата следующего визита
	FutureDates   []string  `json:"future_dates"`   // Буфер будущих дат в формате YYYY-MM-DD
	Status        string    `json:"status"`         // scheduled или completed
	RemindersSent int       `json:"reminders_sent"` // Счётчик напоминаний для текущей NextDate
	LastCompleted *Date     `json:"last_completed"` // Дата последнего выполнения
	CreatedAt     time.Time `json:"created_at"`     // Момент создания записи
}

// ScheduleInfo — график вместе с данными заявки, сервиса и подрядчика
// для дашборда пользователя (предстоящее обслуживание и история).
type ScheduleInfo struct {
	Schedule
	QuotePrice         float64 `json:"quote_price"`
	QuoteStatus        string  `json:"quote_status"`
	ServiceName        string  `json:"service_name"`
	ServiceDescription string  `json:"service_description"`
	ContractorName     string  `json:"contractor_name"`
	ContractorEmail    string  `json:"contractor_email"`
	ContractorPhone    string  `json:"contractor_phone"`
}

// ScheduleUpdate описывает результат операции завершения визита.
type ScheduleUpdate struct {
	ScheduleID    int      `json:"schedule_id"`
	UserID        string   `json:"user_id"`
	Status        string   `json:"status"`
	NextDate      *Date    `json:"next_date"`
	FutureDates   []string `json:"future_dates"`
	LastCompleted Date     `json:"last_completed"`
}

// DummyCreateRequest используется для приёма данных из JSON-запроса
// на создание графика по заявке.
type DummyCreateRequest struct {
	QuoteID int `json:"quote_id" validate:"required,gt=0"` // ID заявки
}
