package models

// QuoteInfo — заявка на обслуживание вместе с фасетами сервиса и данными
// подрядчика, необходимыми планировщику для создания графика.
// Заявки создаются и управляются вне планировщика, здесь они только читаются.
type QuoteInfo struct {
	QuoteID       int     // Идентификатор заявки
	UserID        string  // Пользователь, запросивший обслуживание
	ServiceID     int     // Сервис из каталога
	ContractorID  int     // Подрядчик, назначенный на заявку
	RequestedDate string  // Запрошенная дата в формате YYYY-MM-DD (может быть пустой или некорректной)
	Price         float64 // Стоимость по заявке
	Status        string  // Статус заявки (pending, accepted, completed, ...)

	// Снимок фасетов сервиса.
	ServiceName        string
	ServiceDescription string
	Recurring          bool
	Frequency          string
	IsSeasonal         bool
	Season             string

	ContractorName  string
	ContractorEmail string
	ContractorPhone string
}
