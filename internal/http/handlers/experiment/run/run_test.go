package run

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
	"github.com/magabrotheeeer/ailab-portal/internal/models"
	"github.com/magabrotheeeer/ailab-portal/internal/services/experiment"
)

// MockService реализует интерфейс run.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Run(ctx context.Context, auth *token.AuthContext, experimentID string, req models.RunExperimentRequest) (*models.RunExperimentResult, error) {
	args := m.Called(ctx, auth, experimentID, req)
	if res := args.Get(0); res != nil {
		return res.(*models.RunExperimentResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRunHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	auth := &token.AuthContext{UserID: "user-1", TenantID: "tenant-a"}

	validBody := `{"environmentId":"7c9e6679-7425-40de-944b-e07fc1f90ae7","messages":[{"role":"user","content":"Explain this query"}]}`

	tests := []struct {
		name           string
		body           string
		withAuth       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное выполнение эксперимента",
			body:     validBody,
			withAuth: true,
			setupMock: func(m *MockService) {
				result := &models.RunExperimentResult{
					Reply:            "The query selects all rows",
					ApproxTokensUsed: 100,
					CreditsRemaining: 90,
				}
				m.On("Run", mock.Anything, auth, "exp-1", mock.Anything).Return(result, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"creditsRemaining":90`,
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
			name:           "недопустимая роль в диалоге",
			body:           `{"environmentId":"7c9e6679-7425-40de-944b-e07fc1f90ae7","messages":[{"role":"system","content":"hack"}]}`,
			withAuth:       true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Role must be one of`,
		},
		{
			name:     "эксперимент не найден",
			body:     validBody,
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Run", mock.Anything, auth, "exp-1", mock.Anything).Return(nil, experiment.ErrExperimentNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"experiment not found"`,
		},
		{
			name:     "окружение не найдено или чужое",
			body:     validBody,
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Run", mock.Anything, auth, "exp-1", mock.Anything).Return(nil, experiment.ErrEnvironmentNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"environment not found"`,
		},
		{
			name:     "кредиты закончились",
			body:     validBody,
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Run", mock.Anything, auth, "exp-1", mock.Anything).Return(nil, experiment.ErrNoCredits)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"no credits remaining"`,
		},
		{
			name:     "ошибка провайдера",
			body:     validBody,
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Run", mock.Anything, auth, "exp-1", mock.Anything).Return(nil, errors.New("provider unavailable"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not run experiment"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/experiments/exp-1/run", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "exp-1")
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
