package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/ailab-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/token"
	"github.com/magabrotheeeer/ailab-portal/internal/services/environment"
)

// MockService реализует интерфейс remove.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Remove(ctx context.Context, auth *token.AuthContext, id string) error {
	args := m.Called(ctx, auth, id)
	return args.Error(0)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	auth := &token.AuthContext{UserID: "user-1", TenantID: "tenant-a"}

	tests := []struct {
		name           string
		envID          string
		withAuth       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное удаление окружения",
			envID:    "env-1",
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, auth, "env-1").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"success":true`,
		},
		{
			name:           "без авторизации",
			envID:          "env-1",
			withAuth:       false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:     "повторное удаление возвращает 404",
			envID:    "env-1",
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, auth, "env-1").Return(environment.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"environment not found"`,
		},
		{
			name:     "чужое окружение",
			envID:    "env-2",
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, auth, "env-2").Return(environment.ErrTenantMismatch)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"forbidden"`,
		},
		{
			name:     "ошибка сервиса",
			envID:    "env-1",
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, auth, "env-1").Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not delete environment"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodDelete, "/environments/"+tt.envID, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.envID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
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
