package complete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/glassrain/maintenance/internal/models"
	"github.com/glassrain/maintenance/internal/storage/repository"
)

// MockService реализует интерфейс complete.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Complete(ctx context.Context, scheduleID int) (*models.ScheduleUpdate, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduleUpdate), args.Error(1)
}

func TestCompleteHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	nextDate := models.NewDate(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name           string
		scheduleID     string
		setupMock      func(*MockService)
		expectedStatus int
		checkBody      func(t *testing.T, body string)
	}{
		{
			name:       "повторяющийся график переносится вперёд",
			scheduleID: "5",
			setupMock: func(m *MockService) {
				m.On("Complete", mock.Anything, 5).Return(&models.ScheduleUpdate{
					ScheduleID:    5,
					UserID:        "user-1",
					Status:        models.StatusScheduled,
					NextDate:      &nextDate,
					FutureDates:   []string{"2025-09-01"},
					LastCompleted: models.NewDate(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)),
				}, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"status":"OK"`)
				assert.Contains(t, body, `"scheduled"`)
				// Даты отдаются строго как YYYY-MM-DD, без компоненты времени
				assert.Contains(t, body, `"next_date":"2025-08-01"`)
				assert.Contains(t, body, `"last_completed":"2025-07-01"`)
				assert.NotContains(t, body, "T00:00:00")
			},
		},
		{
			name:       "разовый график завершается",
			scheduleID: "6",
			setupMock: func(m *MockService) {
				m.On("Complete", mock.Anything, 6).Return(&models.ScheduleUpdate{
					ScheduleID:    6,
					UserID:        "user-1",
					Status:        models.StatusCompleted,
					LastCompleted: models.NewDate(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)),
				}, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"completed"`)
			},
		},
		{
			name:           "некорректный schedule_id",
			scheduleID:     "abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"status":"Error","error":"failed to decode schedule_id from url"}`, body)
			},
		},
		{
			name:       "график не найден",
			scheduleID: "99",
			setupMock: func(m *MockService) {
				m.On("Complete", mock.Anything, 99).Return(nil, repository.ErrScheduleNotFound)
			},
			expectedStatus: http.StatusNotFound,
			checkBody: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"status":"Error","error":"schedule not found"}`, body)
			},
		},
		{
			name:       "ошибка сервиса",
			scheduleID: "5",
			setupMock: func(m *MockService) {
				m.On("Complete", mock.Anything, 5).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			checkBody: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"status":"Error","error":"could not complete maintenance"}`, body)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/maintenance/complete/"+tt.scheduleID, nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("schedule_id", tt.scheduleID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.checkBody(t, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
