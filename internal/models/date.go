package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/glassrain/maintenance/internal/lib/daterule"
)

// Date — календарная дата без времени суток. В JSON сериализуется строкой
// YYYY-MM-DD: даты пересекают границу API и очереди сообщений в календарном
// формате, без компоненты времени и часового пояса.
type Date struct {
	time.Time
}

// NewDate создает Date из time.Time, отбрасывая время суток.
func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON сериализует дату строкой YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(daterule.DateLayout) + `"`), nil
}

// UnmarshalJSON разбирает дату из строки YYYY-MM-DD.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	t, err := time.Parse(daterule.DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Scan реализует sql.Scanner для колонок типа DATE.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case nil:
		d.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("unsupported type %T for date", src)
	}
}

// Value реализует driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}
