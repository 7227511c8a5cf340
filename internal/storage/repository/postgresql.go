// Package repository реализует хранилище данных на основе PostgreSQL
// для графиков обслуживания. Предоставляет чтение заявок, создание графика
// с обратной ссылкой на заявку, выборки для дашборда, завершение визита
// и пометку отправленных напоминаний.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища, по которым вызывающие слои различают
// "нет такой записи" и сбой самого хранилища.
var (
	// ErrQuoteNotFound — заявка, её сервис или подрядчик не найдены.
	ErrQuoteNotFound = errors.New("quote not found")
	// ErrScheduleNotFound — график с таким ID не существует.
	ErrScheduleNotFound = errors.New("schedule not found")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с графиками обслуживания.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'maintenance_schedules'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table maintenance_schedules missing or query error: %w", err)
	}
	return nil
}
