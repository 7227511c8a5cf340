package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/glassrain/maintenance/internal/models"
)

// GetQuoteForScheduling возвращает заявку вместе с фасетами сервиса и
// данными подрядчика. Возвращает ErrQuoteNotFound, если заявка, сервис
// или подрядчик отсутствуют.
func (s *Storage) GetQuoteForScheduling(ctx context.Context, quoteID int) (*models.QuoteInfo, error) {
	const op = "storage.GetQuoteForScheduling"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT q.quote_id, q.user_id, q.service_id, q.contractor_id,
			      COALESCE(q.requested_date, ''), q.price, q.status,
			      s.name, COALESCE(s.description, ''), s.recurring,
			      COALESCE(s.frequency, ''), s.is_seasonal, COALESCE(s.season, ''),
			      c.name, c.contact_email, COALESCE(c.phone, '')
			  FROM quotes q
			  JOIN services s ON q.service_id = s.service_id
			  JOIN contractors c ON q.contractor_id = c.contractor_id
			  WHERE q.quote_id = $1`
	row := s.DB.QueryRowContext(ctx, query, quoteID)

	var result models.QuoteInfo
	err := row.Scan(&result.QuoteID, &result.UserID, &result.ServiceID, &result.ContractorID,
		&result.RequestedDate, &result.Price, &result.Status,
		&result.ServiceName, &result.ServiceDescription, &result.Recurring,
		&result.Frequency, &result.IsSeasonal, &result.Season,
		&result.ContractorName, &result.ContractorEmail, &result.ContractorPhone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrQuoteNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}
