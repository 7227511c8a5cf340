package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/glassrain/maintenance/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindDueReminders(ctx context.Context, from, to time.Time) ([]*models.ReminderInfo, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReminderInfo), args.Error(1)
}

func (m *MockRepository) MarkReminderSent(ctx context.Context, scheduleID int) (int, error) {
	args := m.Called(ctx, scheduleID)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestReminderService_SendDueReminders(t *testing.T) {
	reminder := &models.ReminderInfo{
		ScheduleID:     7,
		UserEmail:      "owner@example.com",
		UserName:       "Alex",
		ServiceName:    "Gutter Cleaning",
		ContractorName: "ACME Home Services",
		NextDate:       models.NewDate(time.Now().AddDate(0, 0, 3)),
	}

	tests := []struct {
		name          string
		setupMocks    func(r *MockRepository)
		wantSent      int
		wantErrors    int
		expectedError bool
	}{
		{
			name: "no due reminders",
			setupMocks: func(r *MockRepository) {
				r.On("FindDueReminders", mock.Anything, mock.Anything, mock.Anything).
					Return([]*models.ReminderInfo{}, nil).Once()
			},
		},
		{
			name: "repository error is returned",
			setupMocks: func(r *MockRepository) {
				r.On("FindDueReminders", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.New("db down")).Once()
			},
			expectedError: true,
		},
		{
			name: "publish error counted per reminder",
			setupMocks: func(r *MockRepository) {
				// Канал nil, публикация падает, MarkReminderSent не вызывается
				r.On("FindDueReminders", mock.Anything, mock.Anything, mock.Anything).
					Return([]*models.ReminderInfo{reminder, reminder}, nil).Once()
			},
			wantErrors: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := NewReminderService(repo, newNoopLogger())

			tt.setupMocks(repo)

			stats, err := svc.SendDueReminders(context.Background(), nil, 7)
			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantSent, stats.Sent)
			assert.Equal(t, tt.wantErrors, stats.Errors)

			repo.AssertExpectations(t)
		})
	}
}

func TestReminderService_SendDueReminders_Window(t *testing.T) {
	repo := new(MockRepository)
	svc := NewReminderService(repo, newNoopLogger())

	var gotFrom, gotTo time.Time
	repo.On("FindDueReminders", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotFrom = args.Get(1).(time.Time)
			gotTo = args.Get(2).(time.Time)
		}).Return([]*models.ReminderInfo{}, nil).Once()

	_, err := svc.SendDueReminders(context.Background(), nil, 0)
	assert.NoError(t, err)

	// Нулевое окно заменяется значением по умолчанию, граница с начала суток
	assert.Equal(t, 0, gotFrom.Hour())
	assert.Equal(t, 0, gotFrom.Minute())
	assert.Equal(t, gotFrom.AddDate(0, 0, 7), gotTo)

	repo.AssertExpectations(t)
}
