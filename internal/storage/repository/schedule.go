package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glassrain/maintenance/internal/lib/daterule"
	"github.com/glassrain/maintenance/internal/models"
)

// lookaheadSize — размер буфера предрассчитанных будущих дат.
const lookaheadSize = 5

// CreateSchedule вставляет новый график и проставляет обратную ссылку
// на заявку в одной транзакции: либо появляются обе записи, либо ни одной.
// Возвращает ID созданного графика.
func (s *Storage) CreateSchedule(ctx context.Context, entry models.Schedule) (int, error) {
	const op = "storage.CreateSchedule"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	futureJSON, err := json.Marshal(entry.FutureDates)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO maintenance_schedules (quote_id, user_id, service_id, contractor_id,
			      is_recurring, frequency, is_seasonal, season, initial_date, next_date,
			      future_dates, status, reminders_sent, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
			  RETURNING schedule_id`
	var newID int
	err = tx.QueryRowContext(ctx, query,
		entry.QuoteID, entry.UserID, entry.ServiceID, entry.ContractorID,
		entry.IsRecurring, entry.Frequency, entry.IsSeasonal, entry.Season,
		entry.InitialDate, entry.NextDate, futureJSON, entry.Status, entry.RemindersSent).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE quotes SET maintenance_schedule_id = $1 WHERE quote_id = $2`,
		newID, entry.QuoteID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

const scheduleInfoColumns = `ms.schedule_id, ms.quote_id, ms.user_id, ms.service_id, ms.contractor_id,
			      ms.is_recurring, ms.frequency, ms.is_seasonal, ms.season,
			      ms.initial_date, ms.next_date, ms.future_dates, ms.status,
			      ms.reminders_sent, ms.last_completed, ms.created_at,
			      q.price AS quote_price, q.status AS quote_status,
			      s.name AS service_name, COALESCE(s.description, '') AS service_description,
			      c.name AS contractor_name, c.contact_email, COALESCE(c.phone, '')`

const scheduleInfoJoins = `FROM maintenance_schedules ms
		      JOIN quotes q ON ms.quote_id = q.quote_id
		      JOIN services s ON ms.service_id = s.service_id
		      JOIN contractors c ON ms.contractor_id = c.contractor_id`

func scanScheduleInfo(rows *sql.Rows) (*models.ScheduleInfo, error) {
	var item models.ScheduleInfo
	var nextDate, lastCompleted sql.NullTime
	var futureRaw []byte
	if err := rows.Scan(&item.ScheduleID, &item.QuoteID, &item.UserID, &item.ServiceID, &item.ContractorID,
		&item.IsRecurring, &item.Frequency, &item.IsSeasonal, &item.Season,
		&item.InitialDate, &nextDate, &futureRaw, &item.Status,
		&item.RemindersSent, &lastCompleted, &item.CreatedAt,
		&item.QuotePrice, &item.QuoteStatus,
		&item.ServiceName, &item.ServiceDescription,
		&item.ContractorName, &item.ContractorEmail, &item.ContractorPhone); err != nil {
		return nil, err
	}
	if nextDate.Valid {
		item.NextDate = &models.Date{Time: nextDate.Time}
	}
	if lastCompleted.Valid {
		item.LastCompleted = &models.Date{Time: lastCompleted.Time}
	}
	if len(futureRaw) > 0 {
		if err := json.Unmarshal(futureRaw, &item.FutureDates); err != nil {
			return nil, err
		}
	}
	return &item, nil
}

// ListUpcoming возвращает активные графики пользователя с визитом в окне
// [сегодня, cutoff] по возрастанию даты визита.
func (s *Storage) ListUpcoming(ctx context.Context, userID string, cutoff time.Time) ([]*models.ScheduleInfo, error) {
	const op = "storage.ListUpcoming"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + scheduleInfoColumns + `
			  ` + scheduleInfoJoins + `
			  WHERE ms.user_id = $1
			    AND ms.status = 'scheduled'
			    AND ms.next_date BETWEEN CURRENT_DATE AND $2
			  ORDER BY ms.next_date ASC`
	rows, err := s.DB.QueryContext(ctx, query, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ScheduleInfo
	for rows.Next() {
		item, err := scanScheduleInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListHistory возвращает графики пользователя с хотя бы одним выполненным
// визитом по убыванию даты выполнения.
func (s *Storage) ListHistory(ctx context.Context, userID string) ([]*models.ScheduleInfo, error) {
	const op = "storage.ListHistory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + scheduleInfoColumns + `
			  ` + scheduleInfoJoins + `
			  WHERE ms.user_id = $1
			    AND ms.last_completed IS NOT NULL
			  ORDER BY ms.last_completed DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ScheduleInfo
	for rows.Next() {
		item, err := scanScheduleInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CompleteSchedule фиксирует выполнение визита и продвигает график вперёд.
// Строка графика блокируется через SELECT ... FOR UPDATE, поэтому два
// одновременных завершения одного графика сериализуются и не могут
// продвинуть его дважды.
//
// Разовый график переводится в терминальный статус completed с пустой
// next_date. У повторяющегося графика из буфера выбирается ближайшая дата;
// если после выборки в буфере остаётся не больше одной даты, буфер
// пополняется ещё одной. Пустой буфер пересчитывается от текущего момента
// с регенерацией полного буфера. Счётчик напоминаний сбрасывается.
func (s *Storage) CompleteSchedule(ctx context.Context, scheduleID int, now time.Time) (*models.ScheduleUpdate, error) {
	const op = "storage.CompleteSchedule"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx,
		`SELECT user_id, is_recurring, frequency, is_seasonal, season, future_dates
		 FROM maintenance_schedules
		 WHERE schedule_id = $1
		 FOR UPDATE`, scheduleID)

	var isRecurring, isSeasonal bool
	var userID, frequency, season string
	var futureRaw []byte
	err = row.Scan(&userID, &isRecurring, &frequency, &isSeasonal, &season, &futureRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrScheduleNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if !isRecurring {
		_, err = tx.ExecContext(ctx,
			`UPDATE maintenance_schedules
			 SET status = 'completed', next_date = NULL, last_completed = $1
			 WHERE schedule_id = $2`, today, scheduleID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = tx.Commit(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &models.ScheduleUpdate{
			ScheduleID:    scheduleID,
			UserID:        userID,
			Status:        models.StatusCompleted,
			LastCompleted: models.Date{Time: today},
		}, nil
	}

	var future []string
	if len(futureRaw) > 0 {
		if err = json.Unmarshal(futureRaw, &future); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	// Для сезонных графиков эффективная частота — сезон: даты всегда
	// остаются на фиксированном дне сезона и двигаются по целым годам.
	effective := frequency
	if isSeasonal && daterule.IsSeason(season) {
		effective = season
	}

	nextDate, rest := rollForward(future, effective, today)

	restJSON, err := json.Marshal(rest)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE maintenance_schedules
		 SET next_date = $1, future_dates = $2, reminders_sent = 0, last_completed = $3
		 WHERE schedule_id = $4`, nextDate, restJSON, today, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	next := models.Date{Time: nextDate}
	return &models.ScheduleUpdate{
		ScheduleID:    scheduleID,
		UserID:        userID,
		Status:        models.StatusScheduled,
		NextDate:      &next,
		FutureDates:   rest,
		LastCompleted: models.Date{Time: today},
	}, nil
}

// rollForward выбирает новую next_date из буфера либо пересчитывает её от
// today, возвращая также обновлённый буфер будущих дат.
func rollForward(future []string, frequency string, today time.Time) (time.Time, []string) {
	if len(future) > 0 {
		if nextDate, err := time.Parse(daterule.DateLayout, future[0]); err == nil {
			rest := append([]string(nil), future[1:]...)
			if len(rest) <= 1 {
				seed := nextDate
				if len(rest) > 0 {
					if last, err := time.Parse(daterule.DateLayout, rest[len(rest)-1]); err == nil {
						seed = last
					}
				}
				rest = append(rest, daterule.FormatDates(daterule.GenerateDates(seed, frequency, 1))...)
			}
			return nextDate, rest
		}
	}

	nextDate := daterule.Next(frequency, today)
	rest := daterule.FormatDates(daterule.GenerateDates(nextDate, frequency, lookaheadSize))
	return nextDate, rest
}

// FindDueReminders возвращает активные графики с визитом в окне [from, to],
// по которым для текущей next_date ещё не отправлялось напоминание.
func (s *Storage) FindDueReminders(ctx context.Context, from, to time.Time) ([]*models.ReminderInfo, error) {
	const op = "storage.FindDueReminders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ms.schedule_id, u.email, COALESCE(u.name, u.user_id),
			      s.name, c.name, COALESCE(c.phone, ''), ms.next_date
			  FROM maintenance_schedules ms
		      JOIN services s ON ms.service_id = s.service_id
		      JOIN contractors c ON ms.contractor_id = c.contractor_id
		      JOIN users u ON ms.user_id = u.user_id
		      WHERE ms.status = 'scheduled'
		        AND ms.reminders_sent = 0
		        AND ms.next_date BETWEEN $1 AND $2`
	rows, err := s.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ReminderInfo
	for rows.Next() {
		var ri models.ReminderInfo
		if err = rows.Scan(&ri.ScheduleID, &ri.UserEmail, &ri.UserName,
			&ri.ServiceName, &ri.ContractorName, &ri.ContractorPhone, &ri.NextDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &ri)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkReminderSent увеличивает счётчик напоминаний, но только если для
// текущей next_date ещё ничего не отправлялось. Возвращает количество
// изменённых строк: 0 означает, что напоминание уже ушло в параллельном
// проходе и отправлять его повторно не нужно.
func (s *Storage) MarkReminderSent(ctx context.Context, scheduleID int) (int, error) {
	const op = "storage.MarkReminderSent"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE maintenance_schedules
		 SET reminders_sent = reminders_sent + 1
		 WHERE schedule_id = $1 AND reminders_sent = 0`, scheduleID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
