package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/ailab-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/token"
	"github.com/magabrotheeeer/ailab-portal/internal/models"
	"github.com/magabrotheeeer/ailab-portal/internal/services/environment"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, auth *token.AuthContext, req models.CreateEnvironmentRequest) (*models.Environment, error) {
	args := m.Called(ctx, auth, req)
	if res := args.Get(0); res != nil {
		return res.(*models.Environment), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	auth := &token.AuthContext{UserID: "user-1", TenantID: "tenant-a"}

	validBody := `{"subscriptionId":"7c9e6679-7425-40de-944b-e07fc1f90ae7","name":"coursework lab"}`

	tests := []struct {
		name           string
		body           string
		withAuth       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное создание окружения",
			body:     validBody,
			withAuth: true,
			setupMock: func(m *MockService) {
				env := &models.Environment{
					ID:       "env-1",
					TenantID: "tenant-a",
					Name:     "coursework lab",
					Status:   models.EnvironmentStatusActive,
				}
				m.On("Create", mock.Anything, auth, mock.Anything).Return(env, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"status":"Active"`,
		},
		{
			name:           "без авторизации",
			body:           validBody,
			withAuth:       false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:           "subscriptionId не uuid",
			body:           `{"subscriptionId":"not-a-uuid","name":"lab"}`,
			withAuth:       true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field SubscriptionID can contain only uuid`,
		},
		{
			name:     "неактивная подписка",
			body:     validBody,
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, auth, mock.Anything).Return(nil, environment.ErrSubscriptionNotActive)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"subscription not found or not active"`,
		},
		{
			name:     "превышена квота тарифа",
			body:     validBody,
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, auth, mock.Anything).Return(nil, environment.ErrQuotaExceeded)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"max environments reached for this tier"`,
		},
		{
			name:     "ошибка сервиса",
			body:     validBody,
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, auth, mock.Anything).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not create environment"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/environments", strings.NewReader(tt.body))
			if tt.withAuth {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.Auth, auth))
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
