package create

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/glassrain/maintenance/internal/models"
	"github.com/glassrain/maintenance/internal/storage/repository"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, quoteID int) (*models.Schedule, error) {
	args := m.Called(ctx, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Schedule), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	nextDate := models.NewDate(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	schedule := &models.Schedule{
		ScheduleID:  123,
		QuoteID:     10,
		UserID:      "user-1",
		IsRecurring: true,
		Frequency:   "monthly",
		InitialDate: nextDate,
		NextDate:    &nextDate,
		Status:      models.StatusScheduled,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockService)
		expectedStatus int
		checkBody      func(t *testing.T, body string)
	}{
		{
			name:        "успешное создание графика",
			requestBody: models.DummyCreateRequest{QuoteID: 10},
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, 10).Return(schedule, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"status":"OK"`)
				assert.Contains(t, body, `"schedule_id":123`)
				// Даты визитов отдаются строго как YYYY-MM-DD
				assert.Contains(t, body, `"next_date":"2025-07-01"`)
				assert.Contains(t, body, `"initial_date":"2025-07-01"`)
			},
		},
		{
			name:           "невалидные данные",
			requestBody:    models.DummyCreateRequest{QuoteID: 0},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			checkBody: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"status":"Error","error":"field QuoteID is a required field"}`, body)
			},
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"status":"Error","error":"invalid request body"}`, body)
			},
		},
		{
			name:        "заявка не найдена",
			requestBody: models.DummyCreateRequest{QuoteID: 99},
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, 99).Return(nil, repository.ErrQuoteNotFound)
			},
			expectedStatus: http.StatusNotFound,
			checkBody: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"status":"Error","error":"quote not found"}`, body)
			},
		},
		{
			name:        "ошибка сервиса",
			requestBody: models.DummyCreateRequest{QuoteID: 10},
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, 10).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			checkBody: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"status":"Error","error":"could not create maintenance schedule"}`, body)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/maintenance/schedule", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.checkBody(t, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
