package models

// ReminderInfo — данные для письма-напоминания о предстоящем визите.
// Публикуется батч-планировщиком в RabbitMQ и потребляется сервисом отправки.
type ReminderInfo struct {
	ScheduleID      int    `json:"schedule_id"`
	UserEmail       string `json:"user_email"`
	UserName        string `json:"user_name"`
	ServiceName     string `json:"service_name"`
	ContractorName  string `json:"contractor_name"`
	ContractorPhone string `json:"contractor_phone"`
	NextDate        Date   `json:"next_date"`
}

// ReminderStats — итог одного прохода рассылки напоминаний.
type ReminderStats struct {
	Sent   int `json:"reminders_sent"`
	Errors int `json:"errors"`
}
