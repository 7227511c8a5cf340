// Package daterule реализует чистый расчёт дат обслуживания по фасетам
// сервиса: разовые визиты, повторяющиеся интервалы и сезонные даты.
// Все функции детерминированы, текущий момент времени передаётся аргументом.
package daterule

import (
	"strings"
	"time"
)

// DateLayout — формат календарной даты на границах системы.
const DateLayout = "2006-01-02"

// fallbackDays — сдвиг по умолчанию при нечитаемой запрошенной дате.
const fallbackDays = 14

// soonThresholdDays — порог, ближе которого повторяющийся визит
// отодвигается на один интервал вперёд.
const soonThresholdDays = 7

type seasonDate struct {
	month time.Month
	day   int
}

// Фиксированное соответствие сезона и даты визита, не конфигурируется.
var seasonDates = map[string]seasonDate{
	"spring": {time.March, 15},
	"summer": {time.June, 15},
	"fall":   {time.September, 15},
	"winter": {time.December, 15},
}

type interval struct {
	years  int
	months int
	days   int
}

var frequencyIntervals = map[string]interval{
	"weekly":      {0, 0, 7},
	"bi-weekly":   {0, 0, 14},
	"monthly":     {0, 1, 0},
	"quarterly":   {0, 3, 0},
	"semi-annual": {0, 6, 0},
	"annual":      {1, 0, 0},
}

// Нераспознанная частота трактуется как ежемесячная. Это документированное
// поведение, унаследованное обеими ветками расчёта, а не ошибка.
var defaultInterval = interval{0, 1, 0}

// IsSeason сообщает, является ли значение названием сезона.
func IsSeason(name string) bool {
	_, ok := seasonDates[strings.ToLower(name)]
	return ok
}

// SeasonDate возвращает дату визита для сезона в заданном году.
// Для неизвестного сезона второй результат false.
func SeasonDate(season string, year int) (time.Time, bool) {
	sd, ok := seasonDates[strings.ToLower(season)]
	if !ok {
		return time.Time{}, false
	}
	return time.Date(year, sd.month, sd.day, 0, 0, 0, 0, time.UTC), true
}

// Next возвращает дату ровно через один интервал частоты после from.
// Сезонные частоты всегда сдвигаются на один календарный год с сохранением
// месяца и дня, остальные — по таблице интервалов.
func Next(frequency string, from time.Time) time.Time {
	f := strings.ToLower(frequency)
	if _, ok := seasonDates[f]; ok {
		return time.Date(from.Year()+1, from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	}
	iv, ok := frequencyIntervals[f]
	if !ok {
		iv = defaultInterval
	}
	return from.AddDate(iv.years, iv.months, iv.days)
}

// InitialDate рассчитывает первую дату визита по заявке.
//
// Правила:
//   - нечитаемая запрошенная дата — now + 14 дней (best-effort, не ошибка);
//   - разовый несезонный сервис — запрошенная дата как есть;
//   - сезонный сервис — фиксированная дата сезона в текущем году,
//     при уже прошедшей дате — тот же день следующего года; сезонность
//     имеет приоритет над частотой;
//   - повторяющийся сервис с запрошенной датой ближе 7 дней — now плюс
//     один интервал частоты, иначе запрошенная дата.
func InitialDate(now time.Time, requested string, isRecurring bool, frequency string, isSeasonal bool, season string) time.Time {
	req, err := time.Parse(DateLayout, requested)
	if err != nil {
		return truncateToDay(now).AddDate(0, 0, fallbackDays)
	}

	if !isRecurring && !isSeasonal {
		return req
	}

	if isSeasonal {
		if d, ok := SeasonDate(season, now.Year()); ok {
			if d.Before(now) {
				d, _ = SeasonDate(season, now.Year()+1)
			}
			return d
		}
	}

	if req.Sub(now) < soonThresholdDays*24*time.Hour {
		return Next(frequency, truncateToDay(now))
	}
	return req
}

// GenerateDates возвращает ровно count будущих дат, каждая на один интервал
// частоты позже предыдущей; первая — на интервал позже start (сама start
// в результат не входит). Результат — конечный срез, продолжение
// последовательности запрашивается от последней известной даты.
func GenerateDates(start time.Time, frequency string, count int) []time.Time {
	dates := make([]time.Time, 0, count)
	cur := start
	for range count {
		cur = Next(frequency, cur)
		dates = append(dates, cur)
	}
	return dates
}

// FormatDates переводит даты в строковый формат YYYY-MM-DD для хранения
// и передачи через границу API.
func FormatDates(dates []time.Time) []string {
	res := make([]string, 0, len(dates))
	for _, d := range dates {
		res = append(res, d.Format(DateLayout))
	}
	return res
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
